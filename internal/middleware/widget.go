package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// WidgetMiddleware validates widget session tokens on public chat
// routes.
type WidgetMiddleware struct {
	widgetService *services.WidgetService
}

func NewWidgetMiddleware(widgetService *services.WidgetService) *WidgetMiddleware {
	return &WidgetMiddleware{widgetService: widgetService}
}

// SessionRequired rejects requests without a valid widget session token.
func (m *WidgetMiddleware) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			utils.Unauthorized(c, "widget session token is required")
			c.Abort()
			return
		}

		claims, err := m.widgetService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			utils.Unauthorized(c, "invalid or expired widget session")
			c.Abort()
			return
		}

		c.Set("widget_agent_uuid", claims.AgentUUID)
		c.Set("widget_domain", claims.Domain)
		c.Set("widget_session_id", claims.SessionID)
		c.Next()
	}
}

// GetWidgetSession returns the validated widget session details.
func GetWidgetSession(c *gin.Context) (agentUUID, domain, sessionID string) {
	return c.GetString("widget_agent_uuid"),
		c.GetString("widget_domain"),
		c.GetString("widget_session_id")
}
