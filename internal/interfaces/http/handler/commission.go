package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	commissionapp "github.com/marketplace/backend/internal/application/commission"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// CommissionHandler handles commission ledger endpoints
type CommissionHandler struct {
	BaseHandler
	service   *commissionapp.CommissionService
	directory cache.StoreDirectory
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(service *commissionapp.CommissionService, directory cache.StoreDirectory) *CommissionHandler {
	return &CommissionHandler{service: service, directory: directory}
}

// GetBySubOrder handles GET /sub-orders/:id/commission
func (h *CommissionHandler) GetBySubOrder(c *gin.Context) {
	subOrderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sub-order ID")
		return
	}

	record, err := h.service.GetBySubOrder(c.Request.Context(), subOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// SellerSummary handles GET /stores/:storeId/commission-summary.
// The store name comes from the directory cache and degrades to
// "Unknown Seller" rather than failing the report.
func (h *CommissionHandler) SellerSummary(c *gin.Context) {
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

	summary, err := h.service.GetSellerSummary(c.Request.Context(), storeID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	summary.StoreName = h.directory.GetStoreName(c.Request.Context(), storeID)
	h.Success(c, summary)
}
