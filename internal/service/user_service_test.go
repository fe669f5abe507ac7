package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/attendance-api/internal/models"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[int64]*models.User
	nextID     int64
	revokedFor []int64
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) ExistsByUniqueID(ctx context.Context, uniqueID string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.UniqueID, uniqueID) && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[int64]*models.User)
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID int64) error {
	m.revokedFor = append(m.revokedFor, userID)
	return nil
}

func testUserService(repo *mockUserRepo) *UserService {
	return NewUserService(repo, validator.New(), zap.NewNop())
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := testUserService(repo)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		UniqueID: "S-3001",
		Name:     "Alice",
		Password: "password1",
		Role:     models.RoleStaff,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "password1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password1")))
	assert.Equal(t, models.StatusActive, user.Status)
}

func TestCreateUserDuplicateUniqueID(t *testing.T) {
	repo := &mockUserRepo{users: map[int64]*models.User{
		1: {ID: 1, UniqueID: "S-3001"},
	}}
	svc := testUserService(repo)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		UniqueID: "s-3001",
		Name:     "Alice",
		Password: "password1",
		Role:     models.RoleStaff,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := testUserService(&mockUserRepo{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		UniqueID: "S-3001",
		Name:     "Alice",
		Password: "password1",
		Role:     models.UserRole("superuser"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateUserDeactivationRevokesSessions(t *testing.T) {
	repo := &mockUserRepo{users: map[int64]*models.User{
		1: {ID: 1, UniqueID: "S-3001", Name: "Alice", Role: models.RoleStaff, Status: models.StatusActive},
	}}
	svc := testUserService(repo)

	updated, err := svc.Update(context.Background(), 1, UpdateUserRequest{
		UniqueID: "S-3001",
		Name:     "Alice",
		Role:     models.RoleStaff,
		Status:   models.StatusSuspended,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, updated.Status)
	assert.Contains(t, repo.revokedFor, int64(1))
}

func TestDeleteMissingUser(t *testing.T) {
	svc := testUserService(&mockUserRepo{})

	err := svc.Delete(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
