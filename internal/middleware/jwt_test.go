package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/service"
)

const testSecret = "test-secret"

func newTestAuthService() *service.AuthService {
	return service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: testSecret,
		AccessTokenExpiry: time.Minute,
		Issuer:            "attendance-api-test",
	})
}

func signTestToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID:   5,
		UniqueID: "T-1001",
		Role:     models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Second)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func serveProtected(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *models.JWTClaims) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen *models.JWTClaims
	r := gin.New()
	r.GET("/protected", JWT(newTestAuthService()), func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		seen, _ = value.(*models.JWTClaims)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWTAcceptsValidToken(t *testing.T) {
	rec, claims := serveProtected(t, "Bearer "+signTestToken(t, time.Minute))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	rec, _ := serveProtected(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	rec, _ := serveProtected(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	rec, _ := serveProtected(t, "Bearer "+signTestToken(t, -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
