package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/guvvyapp/guvvy-backend/internal/users"
	"github.com/guvvyapp/guvvy-backend/pkg/db/models"
	pkgerrors "github.com/guvvyapp/guvvy-backend/pkg/errors"
)

func newTestRepo(t *testing.T) *users.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return users.NewRepository(conn)
}

func TestResolveCreatesOnFirstSight(t *testing.T) {
	resolver, err := NewResolver(newTestRepo(t))
	require.NoError(t, err)

	user, err := resolver.Resolve(context.Background(), &Claims{
		Subject:       "uid-1",
		Email:         "a@x.com",
		EmailVerified: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "uid-1", user.FirebaseUID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.IsVerified)
	require.NotNil(t, user.DisplayName)
	assert.Equal(t, "a", *user.DisplayName, "display name falls back to the email local part")
	assert.Empty(t, []string(user.DistrictIDs))
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver, err := NewResolver(newTestRepo(t))
	require.NoError(t, err)

	claims := &Claims{Subject: "uid-1", Email: "a@x.com", Name: "Ada"}

	first, err := resolver.Resolve(context.Background(), claims)
	require.NoError(t, err)

	second, err := resolver.Resolve(context.Background(), claims)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "resolve must not drift timestamps")
	assert.Equal(t, first.LastLoginAt, second.LastLoginAt)
}

func TestResolveDisplayNamePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   string
	}{
		{name: "claims name wins", claims: Claims{Subject: "u1", Email: "a@x.com", Name: "Ada L"}, want: "Ada L"},
		{name: "email local part", claims: Claims{Subject: "u2", Email: "grace@navy.mil"}, want: "grace"},
		{name: "fixed fallback", claims: Claims{Subject: "u3"}, want: "User"},
	}

	resolver, err := NewResolver(newTestRepo(t))
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := resolver.Resolve(context.Background(), &tt.claims)
			require.NoError(t, err)
			require.NotNil(t, user.DisplayName)
			assert.Equal(t, tt.want, *user.DisplayName)
		})
	}
}

func TestResolveRejectsMissingSubject(t *testing.T) {
	resolver, err := NewResolver(newTestRepo(t))
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	_, err = resolver.Resolve(context.Background(), &Claims{})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

// raceStore simulates losing the insert race: the first lookup misses, the
// insert trips the unique index, and the second lookup sees the winner.
type raceStore struct {
	winner      *models.User
	findCalls   int
	createCalls int
}

func (s *raceStore) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	s.findCalls++
	if s.findCalls == 1 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.winner, nil
}

func (s *raceStore) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	s.createCalls++
	return nil, errors.New("UNIQUE constraint failed: users.firebase_uid")
}

func TestResolveLostRaceRefetchesWinner(t *testing.T) {
	winner := &models.User{FirebaseUID: "uid-1", Email: "a@x.com"}
	store := &raceStore{winner: winner}

	resolver, err := NewResolver(store)
	require.NoError(t, err)

	user, err := resolver.Resolve(context.Background(), &Claims{Subject: "uid-1", Email: "a@x.com"})
	require.NoError(t, err)

	assert.Same(t, winner, user, "loser must resolve to the winner's record")
	assert.Equal(t, 1, store.createCalls, "retry is bounded to a single refetch")
	assert.Equal(t, 2, store.findCalls)
}

// failingStore returns a non-unique error from Create.
type failingStore struct{}

func (failingStore) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (failingStore) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	return nil, errors.New("connection reset by peer")
}

func TestResolvePropagatesNonUniqueCreateErrors(t *testing.T) {
	resolver, err := NewResolver(failingStore{})
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), &Claims{Subject: "uid-1"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
}
