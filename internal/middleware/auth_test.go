package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthTestRouter(jwtService *services.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwtService)

	router := gin.New()
	router.GET("/protected", m.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":         GetUserID(c),
			"organization_id": GetOrganizationID(c),
			"role":            GetUserRole(c),
		})
	})
	router.GET("/admin", m.AuthRequired(), m.AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/optional", m.AuthOptional(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": IsAuthenticated(c)})
	})
	return router
}

func get(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	jwtService := services.NewJWTService("test-secret", time.Hour, 24*time.Hour, 15*time.Minute)
	router := newAuthTestRouter(jwtService)

	t.Run("valid token populates the user context", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(7, 3, "jordan@acme.test", models.RoleUser)
		require.NoError(t, err)

		w := get(router, "/protected", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
		assert.Contains(t, w.Body.String(), `"organization_id":3`)
	})

	t.Run("missing header", func(t *testing.T) {
		w := get(router, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := get(router, "/protected", "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := get(router, "/protected", "Bearer not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := services.NewJWTService("other-secret", time.Hour, 24*time.Hour, 15*time.Minute)
		token, err := other.GenerateAccessToken(7, 3, "jordan@acme.test", models.RoleUser)
		require.NoError(t, err)

		w := get(router, "/protected", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer is case-insensitive", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(7, 3, "jordan@acme.test", models.RoleUser)
		require.NoError(t, err)

		w := get(router, "/protected", "bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := services.NewJWTService("test-secret", time.Hour, 24*time.Hour, 15*time.Minute)
	router := newAuthTestRouter(jwtService)

	t.Run("admin passes", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(1, 1, "admin@acme.test", models.RoleAdmin)
		require.NoError(t, err)

		w := get(router, "/admin", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(2, 1, "user@acme.test", models.RoleUser)
		require.NoError(t, err)

		w := get(router, "/admin", "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(3, 1, "viewer@acme.test", models.RoleViewer)
		require.NoError(t, err)

		w := get(router, "/admin", "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAuthOptional(t *testing.T) {
	jwtService := services.NewJWTService("test-secret", time.Hour, 24*time.Hour, 15*time.Minute)
	router := newAuthTestRouter(jwtService)

	t.Run("anonymous passes through", func(t *testing.T) {
		w := get(router, "/optional", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("valid token is recognized", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(5, 1, "jordan@acme.test", models.RoleUser)
		require.NoError(t, err)

		w := get(router, "/optional", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":true`)
	})

	t.Run("invalid token stays anonymous", func(t *testing.T) {
		w := get(router, "/optional", "Bearer junk")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})
}
