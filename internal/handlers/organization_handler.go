package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/middleware"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

type createOrganizationRequest struct {
	Name     string      `json:"name" binding:"required"`
	Slug     string      `json:"slug" binding:"required"`
	Settings models.JSON `json:"settings"`
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "name and slug are required")
		return
	}

	org := models.Organization{
		Name:     req.Name,
		Slug:     req.Slug,
		Settings: req.Settings,
	}
	if err := h.orgService.Create(c.Request.Context(), &org); err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Created(c, org)
}

// Get returns the caller's own organization.
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.orgService.Get(c.Request.Context(), middleware.GetOrganizationID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, org)
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	org, err := h.orgService.Update(c.Request.Context(), middleware.GetOrganizationID(c), updates)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, org)
}
