package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/middleware"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "email and password are required")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user, err := h.userService.Create(c.Request.Context(), &services.CreateUserInput{
		OrganizationID: middleware.GetOrganizationID(c),
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           role,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Created(c, user)
}

func (h *UserHandler) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	users, total, err := h.userService.List(c.Request.Context(), middleware.GetOrganizationID(c), limit, offset)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.Paginated(c, users, page, limit, total)
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), middleware.GetOrganizationID(c), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.GetOrganizationID(c), userID, updates)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.OK(c, user)
}

// Deactivate soft-disables a user; records are never deleted.
func (h *UserHandler) Deactivate(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if userID == middleware.GetUserID(c) {
		utils.BadRequest(c, "cannot deactivate your own account")
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), middleware.GetOrganizationID(c), userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}
