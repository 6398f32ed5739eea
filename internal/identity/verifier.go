package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/guvvyapp/guvvy-backend/pkg/config"
	pkgerrors "github.com/guvvyapp/guvvy-backend/pkg/errors"
)

// Claims are the verified attributes the identity provider asserts about a
// caller. Email and Name may be empty depending on the sign-in method.
type Claims struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// TokenVerifier exchanges a bearer token for verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// FirebaseVerifier verifies ID tokens against the Firebase Admin SDK. It is
// constructed once at startup and passed by reference to the middleware; the
// SDK client carries its own singleton state internally.
type FirebaseVerifier struct {
	auth *firebaseauth.Client
}

// NewFirebaseVerifier builds the verifier from the configured service-account
// credentials file.
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseVerifier, error) {
	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth client: %w", err)
	}

	return &FirebaseVerifier{auth: client}, nil
}

// Verify delegates signature, expiry and issuer checks to the SDK. The SDK
// error is kept on the chain for diagnostics but never drives control flow.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	decoded, err := v.auth.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid authentication credentials")
	}

	claims := &Claims{Subject: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		claims.Name = name
	}
	if verified, ok := decoded.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = verified
	}
	return claims, nil
}
