package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/guvvyapp/guvvy-backend/pkg/db/models"
	dbtypes "github.com/guvvyapp/guvvy-backend/pkg/db/types"
	"github.com/guvvyapp/guvvy-backend/pkg/types"
)

// UserDTO is the transport shape of a profile record.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	FirebaseUID string         `json:"firebase_uid"`
	Email       string         `json:"email"`
	DisplayName *string        `json:"display_name,omitempty"`
	FirstName   *string        `json:"first_name,omitempty"`
	LastName    *string        `json:"last_name,omitempty"`
	Address     *types.Address `json:"address,omitempty"`
	DistrictIDs []string       `json:"district_ids"`
	IsActive    bool           `json:"is_active"`
	IsVerified  bool           `json:"is_verified"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	LastLoginAt time.Time      `json:"last_login_at"`
}

// CreateUserDTO holds the data the repo needs to persist a new user.
type CreateUserDTO struct {
	FirebaseUID string
	Email       string
	DisplayName *string
	FirstName   *string
	LastName    *string
	IsVerified  bool
}

// CreateUserRequest is the explicit-creation payload. The firebase_uid must
// match the authenticated caller.
type CreateUserRequest struct {
	FirebaseUID string  `json:"firebase_uid" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
}

// UpdateUserRequest carries partial-update fields; nil means "leave untouched".
type UpdateUserRequest struct {
	DisplayName *string         `json:"display_name,omitempty"`
	FirstName   *string         `json:"first_name,omitempty"`
	LastName    *string         `json:"last_name,omitempty"`
	Address     *AddressRequest `json:"address,omitempty"`
	DistrictIDs *[]string       `json:"district_ids,omitempty"`
}

// AddressRequest replaces the stored address atomically.
type AddressRequest struct {
	Street      string             `json:"street" validate:"required"`
	City        string             `json:"city" validate:"required"`
	State       string             `json:"state" validate:"required"`
	ZipCode     string             `json:"zip_code" validate:"required"`
	Coordinates *types.Coordinates `json:"coordinates,omitempty"`
}

func (a AddressRequest) toAddress() types.Address {
	return types.Address{
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		ZipCode:     a.ZipCode,
		Coordinates: a.Coordinates,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		FirebaseUID: u.FirebaseUID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Address:     u.Address,
		DistrictIDs: append([]string{}, []string(u.DistrictIDs)...),
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		FirebaseUID: c.FirebaseUID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DistrictIDs: dbtypes.StringArray{},
		IsActive:    true,
		IsVerified:  c.IsVerified,
	}
}
