package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/guvvyapp/guvvy-backend/api/responses"
	"github.com/guvvyapp/guvvy-backend/internal/identity"
	"github.com/guvvyapp/guvvy-backend/pkg/db/models"
	pkgerrors "github.com/guvvyapp/guvvy-backend/pkg/errors"
	"github.com/guvvyapp/guvvy-backend/pkg/logger"
)

// UserResolver maps verified claims onto a local user record.
type UserResolver interface {
	Resolve(ctx context.Context, claims *identity.Claims) (*models.User, error)
}

// bearerToken pulls the token out of the Authorization header. A missing
// header or prefix means "no credentials", not a malformed request.
func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[7:])
}

// RequireClaims validates the bearer token and seeds the request context with
// the verified claims. It does not touch the user store, so handlers behind it
// can act before a local record exists.
func RequireClaims(verifier identity.TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifyRequest(r, verifier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			if logg != nil {
				ctx = logg.WithFirebaseUID(ctx, claims.Subject)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser chains token verification with identity resolution: the caller's
// local record is found or created and seeded into the context. This is the
// gate every profile operation passes through.
func RequireUser(verifier identity.TokenVerifier, resolver UserResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, claims, err := authenticateRequest(r, verifier, resolver)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = WithUser(ctx, user)
			if logg != nil {
				ctx = logg.WithFirebaseUID(ctx, user.FirebaseUID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalUser runs the same chain as RequireUser but never rejects: requests
// without valid credentials continue anonymously.
func OptionalUser(verifier identity.TokenVerifier, resolver UserResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, claims, err := authenticateRequest(r, verifier, resolver)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = WithUser(ctx, user)
			if logg != nil {
				ctx = logg.WithFirebaseUID(ctx, user.FirebaseUID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyRequest(r *http.Request, verifier identity.TokenVerifier) (*identity.Claims, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	return claims, nil
}

func authenticateRequest(r *http.Request, verifier identity.TokenVerifier, resolver UserResolver) (*models.User, *identity.Claims, error) {
	claims, err := verifyRequest(r, verifier)
	if err != nil {
		return nil, nil, err
	}

	user, err := resolver.Resolve(r.Context(), claims)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, nil, typed
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "resolve identity")
	}
	return user, claims, nil
}
