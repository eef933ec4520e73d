package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/middleware"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type IntegrationHandler struct {
	integrationService *services.IntegrationService
	shopifyClient      *services.ShopifyClient
	jwtService         *services.JWTService
}

func NewIntegrationHandler(
	integrationService *services.IntegrationService,
	shopifyClient *services.ShopifyClient,
	jwtService *services.JWTService,
) *IntegrationHandler {
	return &IntegrationHandler{
		integrationService: integrationService,
		shopifyClient:      shopifyClient,
		jwtService:         jwtService,
	}
}

type createIntegrationRequest struct {
	Type        string                 `json:"type" binding:"required"`
	Name        string                 `json:"name" binding:"required"`
	Credentials map[string]interface{} `json:"credentials"`
	Settings    models.JSON            `json:"settings"`
}

func (h *IntegrationHandler) Create(c *gin.Context) {
	var req createIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "type and name are required")
		return
	}

	integration, err := h.integrationService.Create(c.Request.Context(), &services.CreateIntegrationInput{
		OrganizationID: middleware.GetOrganizationID(c),
		Type:           models.IntegrationType(req.Type),
		Name:           req.Name,
		Credentials:    req.Credentials,
		Settings:       req.Settings,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Created(c, integration)
}

func (h *IntegrationHandler) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	integrations, total, err := h.integrationService.List(c.Request.Context(), middleware.GetOrganizationID(c), limit, offset)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Paginated(c, integrations, page, limit, total)
}

func (h *IntegrationHandler) Get(c *gin.Context) {
	integrationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	integration, err := h.integrationService.Get(c.Request.Context(), middleware.GetOrganizationID(c), integrationID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, integration)
}

func (h *IntegrationHandler) Update(c *gin.Context) {
	integrationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	integration, err := h.integrationService.Update(c.Request.Context(), middleware.GetOrganizationID(c), integrationID, updates)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, integration)
}

func (h *IntegrationHandler) Delete(c *gin.Context) {
	integrationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.integrationService.Delete(c.Request.Context(), middleware.GetOrganizationID(c), integrationID); err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

// Test pings the integration's upstream API with the stored
// credentials.
func (h *IntegrationHandler) Test(c *gin.Context) {
	integrationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	integration, err := h.integrationService.Get(c.Request.Context(), middleware.GetOrganizationID(c), integrationID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	if integration.Type != models.IntegrationTypeShopify {
		utils.OK(c, gin.H{"status": "ok", "message": "no connectivity test for this integration type"})
		return
	}

	var creds models.ShopifyCredentials
	if err := h.integrationService.DecryptCredentials(integration, &creds); err != nil {
		HandleServiceError(c, err)
		return
	}

	if err := h.shopifyClient.Ping(c.Request.Context(), &creds); err != nil {
		utils.OK(c, gin.H{"status": "failed", "message": err.Error()})
		return
	}

	utils.OK(c, gin.H{"status": "ok", "shop_domain": creds.ShopDomain})
}

// ShopifyInstall starts the OAuth install flow for a merchant shop,
// identified by the ?shop query parameter.
func (h *IntegrationHandler) ShopifyInstall(c *gin.Context) {
	shop := c.Query("shop")
	if shop == "" {
		utils.BadRequest(c, "shop query parameter is required")
		return
	}

	if err := utils.ValidateShopDomain(shop); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	state, err := h.jwtService.GenerateStateToken(middleware.GetOrganizationID(c), shop)
	if err != nil {
		utils.InternalServerError(c, "failed to start install flow")
		return
	}

	utils.OK(c, gin.H{
		"install_url": h.shopifyClient.InstallURL(shop, state),
	})
}

// ShopifyCallback completes the OAuth flow. Shopify redirects the
// merchant here with a code and our signed state.
func (h *IntegrationHandler) ShopifyCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	shop := c.Query("shop")
	if code == "" || state == "" {
		utils.BadRequest(c, "code and state are required")
		return
	}

	claims, err := h.jwtService.ValidateStateToken(state)
	if err != nil {
		utils.BadRequest(c, "invalid or expired state")
		return
	}
	if shop != "" && shop != claims.Shop {
		utils.BadRequest(c, "shop does not match install request")
		return
	}

	creds, err := h.shopifyClient.ExchangeCode(c.Request.Context(), claims.Shop, code)
	if err != nil {
		utils.GetLogger().Error("shopify code exchange failed", err, utils.LogFields{
			"shop": claims.Shop,
		})
		utils.BadRequest(c, "failed to complete installation")
		return
	}

	integration, err := h.integrationService.StoreShopifyCredentials(c.Request.Context(), claims.OrganizationID, creds)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, integration)
}
