package models

import (
	"time"

	"github.com/google/uuid"
	dbtypes "github.com/guvvyapp/guvvy-backend/pkg/db/types"
	"github.com/guvvyapp/guvvy-backend/pkg/types"
	"gorm.io/gorm"
)

// User is the canonical profile entity. FirebaseUID is the provider-issued
// subject identifier and, like email, is unique and immutable after creation.
type User struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	FirebaseUID string              `gorm:"column:firebase_uid;type:text;not null;uniqueIndex:idx_users_firebase_uid"`
	Email       string              `gorm:"type:text;not null;uniqueIndex:idx_users_email"`
	DisplayName *string             `gorm:"column:display_name"`
	FirstName   *string             `gorm:"column:first_name"`
	LastName    *string             `gorm:"column:last_name"`
	Address     *types.Address      `gorm:"type:jsonb"`
	DistrictIDs dbtypes.StringArray `gorm:"type:jsonb;column:district_ids;not null;default:'[]'"`
	IsActive    bool                `gorm:"column:is_active;not null;default:true"`
	IsVerified  bool                `gorm:"column:is_verified;not null;default:false"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	LastLoginAt time.Time           `gorm:"column:last_login_at;not null"`
}

// BeforeCreate assigns the primary key client-side so the model works against
// both Postgres and the sqlite test driver.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.LastLoginAt.IsZero() {
		u.LastLoginAt = time.Now().UTC()
	}
	return nil
}
