package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/infrastructure/logger"
	"github.com/ecom/backend/internal/interfaces/http/dto"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMessage sends a 200 response with a message
func (h *BaseHandler) SuccessWithMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message, data))
}

// Created sends a 201 response with a message
func (h *BaseHandler) Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, dto.NewMessageResponse(message, data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationError sends a 400 response naming the offending fields
func (h *BaseHandler) ValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("", getRequestID(c), fields))
}

// BindError answers a failed request binding
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleBindError(c, err)
}

// HandleError translates an error into an HTTP response.
// Domain errors keep their message; anything else is logged and answered
// with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if code == dto.ErrCodeValidation && domainErr.Field != "" {
			h.ValidationError(c, map[string]string{domainErr.Field: domainErr.Message})
			return
		}
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.FromContextOr(c.Request.Context(), logger.GetGinLogger(c)).
		Error("Request failed", zap.Error(err))
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// parseID parses a positive integer identifier from a path or query value
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pathID parses the named path parameter and answers 400 when it is not a
// positive integer
func (h *BaseHandler) pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := parseID(c.Param(name))
	if !ok {
		h.ValidationError(c, map[string]string{name: "Must be a positive integer"})
	}
	return id, ok
}

// queryID parses the named query parameter and answers 400 when it is absent
// or not a positive integer
func (h *BaseHandler) queryID(c *gin.Context, name string) (uint, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		h.ValidationError(c, map[string]string{name: "This field is required"})
		return 0, false
	}
	id, ok := parseID(raw)
	if !ok {
		h.ValidationError(c, map[string]string{name: "Must be a positive integer"})
	}
	return id, ok
}
