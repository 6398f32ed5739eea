package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/guvvyapp/guvvy-backend/internal/users"
	"github.com/guvvyapp/guvvy-backend/pkg/db"
	"github.com/guvvyapp/guvvy-backend/pkg/db/models"
	pkgerrors "github.com/guvvyapp/guvvy-backend/pkg/errors"
)

// fallbackDisplayName is used when claims carry neither a name nor an email.
const fallbackDisplayName = "User"

type userStore interface {
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// Resolver maps verified claims onto a local user record, creating the record
// on first sight of a subject.
type Resolver struct {
	users userStore
}

func NewResolver(store userStore) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("user store is required")
	}
	return &Resolver{users: store}, nil
}

// Resolve returns the user for the claims' subject. Existing records come back
// unmodified. A miss synthesizes a new record from the claims; losing the
// insert race to a concurrent first request is resolved by re-fetching the
// winner's record, bounded to a single retry.
func (r *Resolver) Resolve(ctx context.Context, claims *Claims) (*models.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing subject claim")
	}

	user, err := r.users.FindByFirebaseUID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	created, err := r.users.Create(ctx, users.CreateUserDTO{
		FirebaseUID: claims.Subject,
		Email:       claims.Email,
		DisplayName: displayNameFromClaims(claims),
		IsVerified:  claims.EmailVerified,
	})
	if err == nil {
		return created, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	// Another request created the record between our lookup and insert.
	user, err = r.users.FindByFirebaseUID(ctx, claims.Subject)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refetch user after insert race")
	}
	return user, nil
}

func displayNameFromClaims(claims *Claims) *string {
	if claims.Name != "" {
		name := claims.Name
		return &name
	}
	if claims.Email != "" {
		local := claims.Email
		if at := strings.Index(local, "@"); at >= 0 {
			local = local[:at]
		}
		return &local
	}
	name := fallbackDisplayName
	return &name
}
