package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// Actor headers set by the identity layer in front of this service
const (
	HeaderStoreID = "X-Store-ID"
	HeaderBuyerID = "X-Buyer-ID"
	HeaderAdminID = "X-Admin-ID"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// parseUUIDParam parses a UUID path parameter
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// getActingStore extracts the acting store ID from the request headers
func getActingStore(c *gin.Context) (uuid.UUID, error) {
	value := c.GetHeader(HeaderStoreID)
	if value == "" {
		return uuid.Nil, errors.New("missing " + HeaderStoreID + " header")
	}
	return uuid.Parse(value)
}

// getAdminID extracts the acting admin ID from the request headers
func getAdminID(c *gin.Context) (string, error) {
	value := c.GetHeader(HeaderAdminID)
	if value == "" {
		return "", errors.New("missing " + HeaderAdminID + " header")
	}
	return value, nil
}

// buildFilter converts list query parameters to a repository filter
func buildFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if t, err := time.Parse("2006-01-02", req.StartDate); err == nil && req.StartDate != "" {
		filter.Filters["start_date"] = t
	}
	if t, err := time.Parse("2006-01-02", req.EndDate); err == nil && req.EndDate != "" {
		filter.Filters["end_date"] = t
	}
	return filter
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, filter shared.Filter, count int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, filter.Page, filter.PageSize, count))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, message))
}

// HandleError converts domain errors to HTTP responses. Unknown error
// types come back as 500 without leaking internals.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
	))
}
