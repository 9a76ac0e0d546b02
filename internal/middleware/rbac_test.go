package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/service"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, role models.UserRole) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: "u1",
		Role:   role,
		Email:  "user@escola.edu.br",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newProtectedRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authService := service.NewAuthService(nil, nil, nil, service.AuthConfig{TokenSecret: testSecret})
	router := gin.New()
	group := router.Group("/", JWT(authService), RequireRoles(roles...))
	group.DELETE("/alunos/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Error.Code
}

func TestRequireRolesAllowsAdmin(t *testing.T) {
	router := newProtectedRouter(models.RoleAdmin)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/alunos/s1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleAdmin))
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRequireRolesRejectsSecretaria(t *testing.T) {
	router := newProtectedRouter(models.RoleAdmin)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/alunos/s1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleSecretaria))
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, recorder.Body.Bytes()))
}

func TestRequireRolesAllowsEitherStaffRole(t *testing.T) {
	router := newProtectedRouter(models.RoleAdmin, models.RoleSecretaria)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/alunos/s1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleSecretaria))
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	router := newProtectedRouter(models.RoleAdmin)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/alunos/s1", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, recorder.Body.Bytes()))
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	router := newProtectedRouter(models.RoleAdmin)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/alunos/s1", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	claims := &models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	router := newProtectedRouter(models.RoleAdmin)
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/alunos/s1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, recorder.Body.Bytes()))
}
