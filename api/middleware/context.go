package middleware

import (
	"context"

	"github.com/guvvyapp/guvvy-backend/internal/identity"
	"github.com/guvvyapp/guvvy-backend/pkg/db/models"
)

type contextKey string

const (
	ctxUser   contextKey = "current_user"
	ctxClaims contextKey = "verified_claims"
)

// CurrentUser returns the resolved user seeded by RequireUser, or nil.
func CurrentUser(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	if u, ok := ctx.Value(ctxUser).(*models.User); ok {
		return u
	}
	return nil
}

// CurrentClaims returns the verified claims seeded by RequireClaims or
// RequireUser, or nil.
func CurrentClaims(ctx context.Context) *identity.Claims {
	if ctx == nil {
		return nil
	}
	if c, ok := ctx.Value(ctxClaims).(*identity.Claims); ok {
		return c
	}
	return nil
}

// WithUser injects a resolved user into the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUser, user)
}

// WithClaims injects verified claims into the context.
func WithClaims(ctx context.Context, claims *identity.Claims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}
