package utils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response body: exactly one of Data or Error
// is set.
type Envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
	Meta  interface{} `json:"meta,omitempty"`
}

// ErrorBody carries the application error code and message.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PaginationMeta describes a paginated list response.
type PaginationMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Respond sends a {data} envelope.
func Respond(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Envelope{Data: data})
}

// Created sends a 201 {data} envelope.
func Created(c *gin.Context, data interface{}) {
	Respond(c, http.StatusCreated, data)
}

// OK sends a 200 {data} envelope.
func OK(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated sends a {data, meta} envelope for list endpoints.
func Paginated(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, Envelope{
		Data: data,
		Meta: PaginationMeta{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// RespondError sends an {error} envelope.
func RespondError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Envelope{
		Error: &ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// RespondErrorDetails sends an {error} envelope with extra details,
// typically field-level validation failures.
func RespondErrorDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, Envelope{
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// BadRequest sends a 400 validation error envelope.
func BadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, "validation_error", message)
}

// Unauthorized sends a 401 error envelope.
func Unauthorized(c *gin.Context, message string) {
	RespondError(c, http.StatusUnauthorized, "unauthorized", message)
}

// Forbidden sends a 403 error envelope.
func Forbidden(c *gin.Context, message string) {
	RespondError(c, http.StatusForbidden, "forbidden", message)
}

// NotFound sends a 404 error envelope.
func NotFound(c *gin.Context, message string) {
	RespondError(c, http.StatusNotFound, "not_found", message)
}

// Conflict sends a 409 error envelope.
func Conflict(c *gin.Context, message string) {
	RespondError(c, http.StatusConflict, "conflict", message)
}

// InternalServerError sends a 500 error envelope.
func InternalServerError(c *gin.Context, message string) {
	RespondError(c, http.StatusInternalServerError, "internal_error", message)
}

// TooManyRequests sends a 429 error envelope.
func TooManyRequests(c *gin.Context, message string) {
	RespondError(c, http.StatusTooManyRequests, "rate_limited", message)
}

// HealthCheck sends a bare (non-enveloped) health payload so probes
// stay simple.
func HealthCheck(c *gin.Context, status string, services map[string]interface{}) {
	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	})
}

// SetSecurityHeaders sets common security headers
func SetSecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
}

// SetCacheHeaders sets cache control headers
func SetCacheHeaders(c *gin.Context, maxAge int) {
	if maxAge > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	} else {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
	}
}
