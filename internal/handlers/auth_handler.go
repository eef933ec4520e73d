package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/middleware"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type syncRequest struct {
	Token string `json:"token" binding:"required"`
}

// Login exchanges email/password for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "email and password are required")
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Credential failures all present the same way.
		if services.IsValidation(err) || services.IsNotFound(err) {
			utils.Unauthorized(c, "invalid credentials")
			return
		}
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, pair)
}

// Sync accepts an identity-provider token and returns our token pair.
func (h *AuthHandler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "token is required")
		return
	}

	pair, err := h.authService.SyncExternal(c.Request.Context(), req.Token)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, pair)
}

// Refresh exchanges a refresh token for a fresh pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "refresh_token is required")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if services.IsValidation(err) || services.IsNotFound(err) {
			utils.Unauthorized(c, "invalid refresh token")
			return
		}
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, pair)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orgID := middleware.GetOrganizationID(c)

	user, err := h.userService.Get(c.Request.Context(), orgID, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, user)
}

// Logout is stateless on the server; tokens simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	utils.OK(c, gin.H{"message": "logged out"})
}
