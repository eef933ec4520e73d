package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/middleware"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type AgentHandler struct {
	agentService  *services.AgentService
	widgetService *services.WidgetService
}

func NewAgentHandler(agentService *services.AgentService, widgetService *services.WidgetService) *AgentHandler {
	return &AgentHandler{
		agentService:  agentService,
		widgetService: widgetService,
	}
}

type createAgentRequest struct {
	Name         string      `json:"name" binding:"required"`
	Instructions string      `json:"instructions"`
	Model        string      `json:"model"`
	Temperature  *float32    `json:"temperature"`
	MaxTokens    int         `json:"max_tokens"`
	Settings     models.JSON `json:"settings"`
}

func (h *AgentHandler) Create(c *gin.Context) {
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "name is required")
		return
	}

	agent := models.Agent{
		OrganizationID: middleware.GetOrganizationID(c),
		Name:           req.Name,
		Instructions:   req.Instructions,
		Model:          req.Model,
		MaxTokens:      req.MaxTokens,
		Settings:       req.Settings,
		IsActive:       true,
	}
	if req.Temperature != nil {
		agent.Temperature = *req.Temperature
	} else {
		agent.Temperature = 0.7
	}

	if err := h.agentService.Create(c.Request.Context(), &agent); err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Created(c, agent)
}

func (h *AgentHandler) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	agents, total, err := h.agentService.List(c.Request.Context(), middleware.GetOrganizationID(c), limit, offset)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Paginated(c, agents, page, limit, total)
}

func (h *AgentHandler) Get(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	agent, err := h.agentService.Get(c.Request.Context(), middleware.GetOrganizationID(c), agentID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, agent)
}

func (h *AgentHandler) Update(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	agent, err := h.agentService.Update(c.Request.Context(), middleware.GetOrganizationID(c), agentID, updates)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, agent)
}

func (h *AgentHandler) Delete(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.agentService.Delete(c.Request.Context(), middleware.GetOrganizationID(c), agentID); err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

type attachIntegrationRequest struct {
	IntegrationID uint     `json:"integration_id" binding:"required"`
	SelectedTools []string `json:"selected_tools"`
}

// AttachIntegration links an integration to an agent. Duplicate links
// return a conflict.
func (h *AgentHandler) AttachIntegration(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req attachIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "integration_id is required")
		return
	}

	link, err := h.agentService.AttachIntegration(
		c.Request.Context(),
		middleware.GetOrganizationID(c),
		agentID,
		req.IntegrationID,
		req.SelectedTools,
	)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Created(c, link)
}

func (h *AgentHandler) ListIntegrations(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	links, err := h.agentService.ListIntegrations(c.Request.Context(), middleware.GetOrganizationID(c), agentID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, links)
}

func (h *AgentHandler) UpdateIntegration(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	integrationID, ok := parseUintParam(c, "integration_id")
	if !ok {
		return
	}

	var req struct {
		SelectedTools []string `json:"selected_tools"`
		IsEnabled     *bool    `json:"is_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	link, err := h.agentService.UpdateIntegration(
		c.Request.Context(),
		middleware.GetOrganizationID(c),
		agentID,
		integrationID,
		req.SelectedTools,
		req.IsEnabled,
	)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, link)
}

func (h *AgentHandler) DetachIntegration(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	integrationID, ok := parseUintParam(c, "integration_id")
	if !ok {
		return
	}

	err := h.agentService.DetachIntegration(
		c.Request.Context(),
		middleware.GetOrganizationID(c),
		agentID,
		integrationID,
	)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

// GetWidgetConfig returns the agent's widget configuration including
// the domain allowlist. Dashboard only.
func (h *AgentHandler) GetWidgetConfig(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	cfg, err := h.widgetService.GetConfig(c.Request.Context(), middleware.GetOrganizationID(c), agentID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, cfg)
}

type widgetConfigRequest struct {
	Title              string   `json:"title"`
	Greeting           string   `json:"greeting"`
	PrimaryColor       string   `json:"primary_color"`
	Position           string   `json:"position"`
	AllowedDomains     []string `json:"allowed_domains"`
	RequireDomainMatch *bool    `json:"require_domain_match"`
	IsEnabled          *bool    `json:"is_enabled"`
}

func (h *AgentHandler) UpsertWidgetConfig(c *gin.Context) {
	agentID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req widgetConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	input := models.WidgetConfig{
		Title:              req.Title,
		Greeting:           req.Greeting,
		PrimaryColor:       req.PrimaryColor,
		Position:           req.Position,
		AllowedDomains:     req.AllowedDomains,
		RequireDomainMatch: true,
		IsEnabled:          true,
	}
	if req.RequireDomainMatch != nil {
		input.RequireDomainMatch = *req.RequireDomainMatch
	}
	if req.IsEnabled != nil {
		input.IsEnabled = *req.IsEnabled
	}

	cfg, err := h.widgetService.UpsertConfig(c.Request.Context(), middleware.GetOrganizationID(c), agentID, &input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, cfg)
}
