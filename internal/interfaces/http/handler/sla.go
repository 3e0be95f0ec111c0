package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	slaapp "github.com/marketplace/backend/internal/application/sla"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// SlaHandler handles SLA configuration and reporting endpoints
type SlaHandler struct {
	BaseHandler
	service *slaapp.SlaService
}

// NewSlaHandler creates a new SlaHandler
func NewSlaHandler(service *slaapp.SlaService) *SlaHandler {
	return &SlaHandler{service: service}
}

// CreateConfiguration handles POST /sla/configurations
func (h *SlaHandler) CreateConfiguration(c *gin.Context) {
	var req slaapp.CreateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	config, err := h.service.CreateConfiguration(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, config)
}

// DeactivateConfiguration handles DELETE /sla/configurations/:id.
// Configurations are never deleted, only deactivated, so existing
// tracking records keep their snapshotted targets.
func (h *SlaHandler) DeactivateConfiguration(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid configuration ID")
		return
	}

	if err := h.service.DeactivateConfiguration(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListConfigurations handles GET /sla/configurations
func (h *SlaHandler) ListConfigurations(c *gin.Context) {
	configs, err := h.service.ListActiveConfigurations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, configs)
}

// GetTracking handles GET /cases/:id/sla
func (h *SlaHandler) GetTracking(c *gin.Context) {
	caseID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid case ID")
		return
	}

	tracking, err := h.service.GetTrackingByCase(c.Request.Context(), caseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tracking)
}

// StoreStatistics handles GET /stores/:storeId/sla-statistics
func (h *SlaHandler) StoreStatistics(c *gin.Context) {
	storeID, err := parseUUIDParam(c, "storeId")
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	var rangeReq dto.DateRangeRequest
	if err := c.ShouldBindQuery(&rangeReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	from, err := time.Parse("2006-01-02", rangeReq.From)
	if err != nil {
		h.BadRequest(c, "invalid from date")
		return
	}
	to, err := time.Parse("2006-01-02", rangeReq.To)
	if err != nil {
		h.BadRequest(c, "invalid to date")
		return
	}

	stats, err := h.service.GetStoreStatistics(c.Request.Context(), storeID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListBreached handles GET /sla/breached. Returns open cases that have
// already blown a target, optionally scoped to one store.
func (h *SlaHandler) ListBreached(c *gin.Context) {
	var storeID *uuid.UUID
	if value := c.Query("store_id"); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			h.BadRequest(c, "invalid store_id")
			return
		}
		storeID = &id
	}

	limit := 50
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > 500 {
			h.BadRequest(c, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	records, err := h.service.ListBreachedOpen(c.Request.Context(), storeID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}
