package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// TenantMiddleware enforces organization isolation on dashboard routes.
type TenantMiddleware struct {
	orgService *services.OrganizationService
}

func NewTenantMiddleware(orgService *services.OrganizationService) *TenantMiddleware {
	return &TenantMiddleware{orgService: orgService}
}

// RequireTenant rejects requests whose token carries no organization.
func (m *TenantMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetOrganizationID(c) == 0 {
			utils.Forbidden(c, "organization context required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ValidateTenantAccess re-checks the user's membership against the
// database, catching tokens issued before a deactivation.
func (m *TenantMiddleware) ValidateTenantAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		orgID := GetOrganizationID(c)
		if userID == 0 || orgID == 0 {
			utils.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		hasAccess, err := m.orgService.UserHasAccess(c.Request.Context(), userID, orgID)
		if err != nil {
			utils.InternalServerError(c, "failed to validate organization access")
			c.Abort()
			return
		}
		if !hasAccess {
			utils.Forbidden(c, "access denied to organization")
			c.Abort()
			return
		}

		c.Next()
	}
}

// EnforceTenantIsolation rejects path organization IDs that differ from
// the token's organization.
func (m *TenantMiddleware) EnforceTenantIsolation() gin.HandlerFunc {
	return func(c *gin.Context) {
		param := c.Param("org_id")
		if param == "" {
			c.Next()
			return
		}

		pathOrgID, err := strconv.ParseUint(param, 10, 32)
		if err != nil {
			utils.BadRequest(c, "invalid organization id")
			c.Abort()
			return
		}

		if uint(pathOrgID) != GetOrganizationID(c) {
			utils.Forbidden(c, "access denied to organization")
			c.Abort()
			return
		}

		c.Next()
	}
}
