package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/middleware"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// WidgetHandler serves the public endpoints the embedded widget calls
// from customer storefronts.
type WidgetHandler struct {
	widgetService *services.WidgetService
	chatService   *services.ChatService
}

func NewWidgetHandler(widgetService *services.WidgetService, chatService *services.ChatService) *WidgetHandler {
	return &WidgetHandler{
		widgetService: widgetService,
		chatService:   chatService,
	}
}

type widgetAuthRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
	Domain  string `json:"domain" binding:"required"`
}

// Auth validates the embedding domain against the agent's allowlist
// and issues a short-lived session token.
func (h *WidgetHandler) Auth(c *gin.Context) {
	var req widgetAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "agent_id and domain are required")
		return
	}

	session, err := h.widgetService.Authenticate(c.Request.Context(), req.AgentID, req.Domain)
	if err != nil {
		// Allowlist rejections present as forbidden, not validation.
		if appErr, ok := services.AsAppError(err); ok &&
			appErr.Kind == services.KindValidation &&
			strings.Contains(appErr.Message, "allowlist") {
			utils.Forbidden(c, appErr.Message)
			return
		}
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, session)
}

// Config returns the widget appearance settings for an agent. Public,
// cacheable, credential-free.
func (h *WidgetHandler) Config(c *gin.Context) {
	agentUUID := c.Query("agent_id")
	if agentUUID == "" {
		utils.BadRequest(c, "agent_id is required")
		return
	}

	cfg, err := h.widgetService.GetPublicConfig(c.Request.Context(), agentUUID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.SetCacheHeaders(c, 300)
	utils.OK(c, cfg)
}

type widgetChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat processes one visitor message within an authenticated widget
// session.
func (h *WidgetHandler) Chat(c *gin.Context) {
	var req widgetChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "message is required")
		return
	}

	agentUUID, domain, sessionID := middleware.GetWidgetSession(c)

	reply, err := h.chatService.SendMessage(c.Request.Context(), agentUUID, sessionID, domain, req.Message)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, reply)
}

// Logout revokes the widget session server-side when a session store
// is configured.
func (h *WidgetHandler) Logout(c *gin.Context) {
	_, _, sessionID := middleware.GetWidgetSession(c)
	if err := h.widgetService.RevokeSession(c.Request.Context(), sessionID); err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, gin.H{"message": "session revoked"})
}
