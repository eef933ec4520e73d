package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// AuthMiddleware validates dashboard access tokens.
type AuthMiddleware struct {
	jwtService *services.JWTService
}

func NewAuthMiddleware(jwtService *services.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// AuthRequired rejects requests without a valid bearer token.
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			utils.Unauthorized(c, "authorization header is required")
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(token)
		if err != nil {
			utils.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		setUserContext(c, claims)
		c.Next()
	}
}

// AuthOptional validates a bearer token when present but never rejects.
func (m *AuthMiddleware) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		if claims, err := m.jwtService.ValidateAccessToken(token); err == nil {
			setUserContext(c, claims)
		}
		c.Next()
	}
}

// RequireRole rejects authenticated users below the required role.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := GetUserRole(c)
		if userRole == "" {
			utils.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		if !roleAtLeast(userRole, role) {
			utils.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminRequired is shorthand for RequireRole(admin).
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return m.RequireRole(models.RoleAdmin)
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func setUserContext(c *gin.Context, claims *services.AccessClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("organization_id", claims.OrganizationID)
	c.Set("user_email", claims.Email)
	c.Set("user_role", claims.Role)
}

var roleRank = map[string]int{
	models.RoleAdmin:  100,
	models.RoleUser:   10,
	models.RoleViewer: 1,
}

func roleAtLeast(userRole, requiredRole string) bool {
	userLevel, ok1 := roleRank[userRole]
	requiredLevel, ok2 := roleRank[requiredRole]
	if !ok1 || !ok2 {
		return userRole == requiredRole
	}
	return userLevel >= requiredLevel
}

// GetUserID returns the authenticated user's ID, zero when anonymous.
func GetUserID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetOrganizationID returns the authenticated user's organization ID.
func GetOrganizationID(c *gin.Context) uint {
	if v, exists := c.Get("organization_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func GetUserRole(c *gin.Context) string {
	if v, exists := c.Get("user_role"); exists {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != 0
}
