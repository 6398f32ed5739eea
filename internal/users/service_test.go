package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/guvvyapp/guvvy-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(setupUsersTestDB(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestServiceCreateEnforcesOwnership(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Create(context.Background(), "caller-uid", CreateUserRequest{
		FirebaseUID: "other-uid",
		Email:       "other@example.com",
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	// A forbidden create must not leave a record behind.
	_, err = repo.FindByFirebaseUID(context.Background(), "other-uid")
	require.Error(t, err)
}

func TestServiceCreateConflictOnDuplicate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "uid-1", CreateUserRequest{
		FirebaseUID: "uid-1",
		Email:       "ada@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "uid-1", CreateUserRequest{
		FirebaseUID: "uid-1",
		Email:       "ada@example.com",
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceGetForbiddenBeforeExistence(t *testing.T) {
	svc, _ := newTestService(t)

	// Target does not exist: still forbidden, never 404.
	_, err := svc.Get(context.Background(), "uid-1", "uid-2")
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.Create(context.Background(), "uid-2", CreateUserRequest{
		FirebaseUID: "uid-2",
		Email:       "b@example.com",
	})
	require.NoError(t, err)

	// Target exists now: same answer.
	_, err = svc.Get(context.Background(), "uid-1", "uid-2")
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestServiceGetSelf(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "uid-1", CreateUserRequest{
		FirebaseUID: "uid-1",
		Email:       "ada@example.com",
	})
	require.NoError(t, err)

	dto, err := svc.Get(context.Background(), "uid-1", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", dto.Email)

	_, err = svc.Get(context.Background(), "ghost", "ghost")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceUpdateIsPartialMerge(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "uid-1", CreateUserRequest{
		FirebaseUID: "uid-1",
		Email:       "ada@example.com",
		FirstName:   strPtr("Ada"),
		LastName:    strPtr("Lovelace"),
	})
	require.NoError(t, err)

	districts := []string{"ok-5", "ok-governor"}
	dto, err := svc.Update(context.Background(), "uid-1", "uid-1", UpdateUserRequest{
		DistrictIDs: &districts,
	})
	require.NoError(t, err)
	assert.Equal(t, districts, dto.DistrictIDs)
	require.NotNil(t, dto.FirstName)
	assert.Equal(t, "Ada", *dto.FirstName)
	require.NotNil(t, dto.LastName)
	assert.Equal(t, "Lovelace", *dto.LastName)

	dto, err = svc.Update(context.Background(), "uid-1", "uid-1", UpdateUserRequest{
		FirstName: strPtr("Grace"),
	})
	require.NoError(t, err)
	require.NotNil(t, dto.FirstName)
	assert.Equal(t, "Grace", *dto.FirstName)
	assert.Equal(t, districts, dto.DistrictIDs, "untouched fields must survive the merge")
}

func TestServiceUpdateAddressReplacesWhole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "uid-1", CreateUserRequest{
		FirebaseUID: "uid-1",
		Email:       "ada@example.com",
	})
	require.NoError(t, err)

	dto, err := svc.UpdateAddress(context.Background(), "uid-1", "uid-1", AddressRequest{
		Street:  "1 First Ave",
		City:    "Tulsa",
		State:   "OK",
		ZipCode: "74103",
	})
	require.NoError(t, err)
	require.NotNil(t, dto.Address)
	assert.Equal(t, "Tulsa", dto.Address.City)

	dto, err = svc.UpdateAddress(context.Background(), "uid-1", "uid-1", AddressRequest{
		Street:  "2 Second St",
		City:    "Norman",
		State:   "OK",
		ZipCode: "73019",
	})
	require.NoError(t, err)
	require.NotNil(t, dto.Address)
	assert.Equal(t, "Norman", dto.Address.City)
	assert.Nil(t, dto.Address.Coordinates, "replace must not merge the old value")
}

func TestServiceDeleteThenGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "uid-1", CreateUserRequest{
		FirebaseUID: "uid-1",
		Email:       "ada@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "uid-1", "uid-1"))

	_, err = svc.Get(context.Background(), "uid-1", "uid-1")
	assertCode(t, err, pkgerrors.CodeNotFound)

	err = svc.Delete(context.Background(), "uid-1", "uid-1")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceTouchLoginOnlyMovesLastLogin(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), "uid-1", CreateUserRequest{
		FirebaseUID: "uid-1",
		Email:       "ada@example.com",
		FirstName:   strPtr("Ada"),
	})
	require.NoError(t, err)

	first, err := svc.TouchLogin(context.Background(), "uid-1", "uid-1")
	require.NoError(t, err)
	assert.False(t, first.LastLoginAt.Before(created.LastLoginAt))
	require.NotNil(t, first.FirstName)
	assert.Equal(t, "Ada", *first.FirstName)

	second, err := svc.TouchLogin(context.Background(), "uid-1", "uid-1")
	require.NoError(t, err)
	assert.False(t, second.LastLoginAt.Before(first.LastLoginAt), "last_login_at must move monotonically")
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "touch must not refresh updated_at")

	_, err = svc.TouchLogin(context.Background(), "ghost", "ghost")
	assertCode(t, err, pkgerrors.CodeNotFound)
}
