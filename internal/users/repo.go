package users

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/guvvyapp/guvvy-backend/internal/repo"
	"github.com/guvvyapp/guvvy-backend/pkg/db/models"
	"github.com/guvvyapp/guvvy-backend/pkg/types"
)

// Repository exposes user persistence keyed by the provider-issued UID.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model. Unique-index
// violations surface unwrapped so callers can distinguish lost races.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByFirebaseUID retrieves the user matching the provider subject.
func (r *Repository) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFields applies a partial update and returns the refreshed record.
// updated_at is always included in the write.
func (r *Repository) UpdateFields(ctx context.Context, firebaseUID string, fields map[string]any) (*models.User, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["updated_at"] = time.Now().UTC()

	res := r.DB(ctx).
		Model(&models.User{}).
		Where("firebase_uid = ?", firebaseUID).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByFirebaseUID(ctx, firebaseUID)
}

// ReplaceAddress swaps the whole address value and refreshes updated_at.
func (r *Repository) ReplaceAddress(ctx context.Context, firebaseUID string, addr types.Address) (*models.User, error) {
	return r.UpdateFields(ctx, firebaseUID, map[string]any{"address": &addr})
}

// TouchLastLogin refreshes only last_login_at; updated_at is left alone.
func (r *Repository) TouchLastLogin(ctx context.Context, firebaseUID string, at time.Time) (*models.User, error) {
	res := r.DB(ctx).
		Model(&models.User{}).
		Where("firebase_uid = ?", firebaseUID).
		UpdateColumn("last_login_at", at)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByFirebaseUID(ctx, firebaseUID)
}

// Delete removes the record permanently.
func (r *Repository) Delete(ctx context.Context, firebaseUID string) error {
	res := r.DB(ctx).Where("firebase_uid = ?", firebaseUID).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
