package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/guvvyapp/guvvy-backend/pkg/db"
	dbtypes "github.com/guvvyapp/guvvy-backend/pkg/db/types"
	pkgerrors "github.com/guvvyapp/guvvy-backend/pkg/errors"
)

// Service is the ownership-scoped profile API. Every operation checks that the
// caller acts on their own record before touching storage, so cross-user
// probes answer identically whether the target exists or not.
type Service interface {
	Create(ctx context.Context, callerUID string, req CreateUserRequest) (*UserDTO, error)
	Get(ctx context.Context, callerUID, targetUID string) (*UserDTO, error)
	Update(ctx context.Context, callerUID, targetUID string, req UpdateUserRequest) (*UserDTO, error)
	UpdateAddress(ctx context.Context, callerUID, targetUID string, req AddressRequest) (*UserDTO, error)
	Delete(ctx context.Context, callerUID, targetUID string) error
	TouchLogin(ctx context.Context, callerUID, targetUID string) (*UserDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs the profile service over the given repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, callerUID string, req CreateUserRequest) (*UserDTO, error) {
	if req.FirebaseUID != callerUID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only create a record for yourself")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		FirebaseUID: req.FirebaseUID,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, callerUID, targetUID string) (*UserDTO, error) {
	if err := requireSelf(callerUID, targetUID); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByFirebaseUID(ctx, targetUID)
	if err != nil {
		return nil, mapLookupError(err, "lookup user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, callerUID, targetUID string, req UpdateUserRequest) (*UserDTO, error) {
	if err := requireSelf(callerUID, targetUID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.DisplayName != nil {
		fields["display_name"] = *req.DisplayName
	}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Address != nil {
		addr := req.Address.toAddress()
		fields["address"] = &addr
	}
	if req.DistrictIDs != nil {
		fields["district_ids"] = dbtypes.StringArray(*req.DistrictIDs)
	}

	user, err := s.repo.UpdateFields(ctx, targetUID, fields)
	if err != nil {
		return nil, mapLookupError(err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateAddress(ctx context.Context, callerUID, targetUID string, req AddressRequest) (*UserDTO, error) {
	if err := requireSelf(callerUID, targetUID); err != nil {
		return nil, err
	}

	user, err := s.repo.ReplaceAddress(ctx, targetUID, req.toAddress())
	if err != nil {
		return nil, mapLookupError(err, "update address")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, callerUID, targetUID string) error {
	if err := requireSelf(callerUID, targetUID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, targetUID); err != nil {
		return mapLookupError(err, "delete user")
	}
	return nil
}

func (s *service) TouchLogin(ctx context.Context, callerUID, targetUID string) (*UserDTO, error) {
	if err := requireSelf(callerUID, targetUID); err != nil {
		return nil, err
	}

	user, err := s.repo.TouchLastLogin(ctx, targetUID, time.Now().UTC())
	if err != nil {
		return nil, mapLookupError(err, "touch login")
	}
	return FromModel(user), nil
}

// requireSelf runs before any storage access; a mismatch is forbidden
// regardless of whether the target record exists.
func requireSelf(callerUID, targetUID string) error {
	if callerUID == "" || callerUID != targetUID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you can only access your own record")
	}
	return nil
}

func mapLookupError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
