package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/middleware"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type ConversationHandler struct {
	conversationService *services.ConversationService
}

func NewConversationHandler(conversationService *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List returns the organization's conversations, optionally filtered
// by agent.
func (h *ConversationHandler) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	var agentID uint
	if raw := c.Query("agent_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.BadRequest(c, "invalid agent_id")
			return
		}
		agentID = uint(parsed)
	}

	convs, total, err := h.conversationService.List(c.Request.Context(), middleware.GetOrganizationID(c), agentID, limit, offset)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Paginated(c, convs, page, limit, total)
}

func (h *ConversationHandler) Get(c *gin.Context) {
	conversationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	conv, err := h.conversationService.Get(c.Request.Context(), middleware.GetOrganizationID(c), conversationID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, conv)
}

// Messages returns a conversation transcript oldest-first.
func (h *ConversationHandler) Messages(c *gin.Context) {
	conversationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.conversationService.Messages(c.Request.Context(), middleware.GetOrganizationID(c), conversationID, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, messages)
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	conversationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.conversationService.Delete(c.Request.Context(), middleware.GetOrganizationID(c), conversationID); err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}
