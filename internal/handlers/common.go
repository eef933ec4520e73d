package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// HandleServiceError maps the service error taxonomy onto HTTP
// statuses. Database errors are logged but never leak their cause.
func HandleServiceError(c *gin.Context, err error) {
	appErr, ok := services.AsAppError(err)
	if !ok {
		utils.GetLogger().Error("unexpected error", err, utils.LogFields{
			"path": c.Request.URL.Path,
		})
		utils.InternalServerError(c, "internal server error")
		return
	}

	switch appErr.Kind {
	case services.KindValidation:
		utils.BadRequest(c, appErr.Message)
	case services.KindNotFound:
		utils.NotFound(c, appErr.Message)
	case services.KindConflict:
		utils.Conflict(c, appErr.Message)
	default:
		utils.GetLogger().Error("database error", appErr.Err, utils.LogFields{
			"path": c.Request.URL.Path,
		})
		utils.InternalServerError(c, "internal server error")
	}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads page/limit query parameters with sane bounds.
func parsePagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return page, limit, (page - 1) * limit
}

// parseUintParam reads a numeric path parameter.
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(value), true
}
