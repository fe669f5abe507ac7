package service

import (
	"context"
	"database/sql"
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

type mockAuthRepo struct {
	user          *models.User
	refreshTokens map[string]*models.RefreshToken
	revokedAll    bool
}

func (m *mockAuthRepo) FindByUniqueID(ctx context.Context, uniqueID string) (*models.User, error) {
	if m.user == nil || m.user.UniqueID != uniqueID {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	if token.ID == "" {
		token.ID = token.Token
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID int64) error {
	m.revokedAll = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	if m.user != nil && m.user.ID == id {
		m.user.PasswordHash = passwordHash
	}
	return nil
}

func testAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "attendance-api",
	})
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &models.User{ID: 1, UniqueID: "A-1001", Name: "Alice", PasswordHash: string(hash), Role: models.RoleAdmin, Status: models.StatusActive}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "password1")}
	svc := testAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{UniqueID: "A-1001", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.NotEmpty(t, repo.refreshTokens)
}

func TestAuthServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "password1")}
	svc := testAuthService(repo)

	cases := map[string]models.LoginRequest{
		"unknown id":     {UniqueID: "nobody", Password: "password1"},
		"wrong password": {UniqueID: "A-1001", Password: "wrong"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestAuthServiceLoginSuspendedUser(t *testing.T) {
	user := activeUser(t, "password1")
	user.Status = models.StatusSuspended
	svc := testAuthService(&mockAuthRepo{user: user})

	_, err := svc.Login(context.Background(), models.LoginRequest{UniqueID: "A-1001", Password: "password1"})
	require.Error(t, err)
	// Same generic error as a bad password. Account state must not leak.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "password1"), refreshTokens: map[string]*models.RefreshToken{}}
	repo.refreshTokens["old-token"] = &models.RefreshToken{ID: "rt1", UserID: 1, Token: "old-token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := testAuthService(repo)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "old-token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["old-token"].Revoked)
}

func TestAuthServiceRefreshRejectsRevokedToken(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "password1"), refreshTokens: map[string]*models.RefreshToken{}}
	repo.refreshTokens["old-token"] = &models.RefreshToken{ID: "rt1", UserID: 1, Token: "old-token", ExpiresAt: time.Now().Add(time.Hour), Revoked: true}
	svc := testAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutIsIdempotent(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "password1"), refreshTokens: map[string]*models.RefreshToken{}}
	repo.refreshTokens["token"] = &models.RefreshToken{ID: "rt1", UserID: 1, Token: "token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := testAuthService(repo)

	require.NoError(t, svc.Logout(context.Background(), 1, "token"))
	assert.True(t, repo.refreshTokens["token"].Revoked)

	// Second logout with the same token and a logout with an unknown
	// token both succeed.
	require.NoError(t, svc.Logout(context.Background(), 1, "token"))
	require.NoError(t, svc.Logout(context.Background(), 1, "missing"))
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "oldpassword")}
	oldHash := repo.user.PasswordHash
	svc := testAuthService(repo)

	err := svc.ChangePassword(context.Background(), 1, models.ChangePasswordRequest{OldPassword: "oldpassword", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, repo.user.PasswordHash)
	assert.True(t, repo.revokedAll)
}

func TestValidateToken(t *testing.T) {
	svc := testAuthService(&mockAuthRepo{})
	user := activeUser(t, "password1")

	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Role, claims.Role)
}
