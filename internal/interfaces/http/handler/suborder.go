package handler

import (
	"github.com/gin-gonic/gin"
	fulfillmentapp "github.com/marketplace/backend/internal/application/fulfillment"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// SubOrderHandler handles seller sub-order endpoints
type SubOrderHandler struct {
	BaseHandler
	service   *fulfillmentapp.SubOrderService
	directory cache.StoreDirectory
}

// NewSubOrderHandler creates a new SubOrderHandler
func NewSubOrderHandler(service *fulfillmentapp.SubOrderService, directory cache.StoreDirectory) *SubOrderHandler {
	return &SubOrderHandler{service: service, directory: directory}
}

// Get handles GET /sub-orders/:id
func (h *SubOrderHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sub-order ID")
		return
	}

	subOrder, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	subOrder.StoreName = h.directory.GetStoreName(c.Request.Context(), subOrder.StoreID)
	h.Success(c, subOrder)
}

// List handles GET /sub-orders. The store comes from the identity headers.
func (h *SubOrderHandler) List(c *gin.Context) {
	storeID, err := getActingStore(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(req)
	subOrders, err := h.service.ListByStore(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, subOrders, filter, len(subOrders))
}

// Transition handles POST /sub-orders/:id/transition.
// Only the owning store may move its own sub-order.
func (h *SubOrderHandler) Transition(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sub-order ID")
		return
	}

	storeID, err := getActingStore(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req fulfillmentapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subOrder, err := h.service.Transition(c.Request.Context(), id, storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subOrder)
}

// Override handles POST /sub-orders/:id/override. Admin-only escape hatch
// that bypasses the transition graph; the actor is recorded in history.
func (h *SubOrderHandler) Override(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sub-order ID")
		return
	}

	adminID, err := getAdminID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req fulfillmentapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subOrder, err := h.service.OverrideTransition(c.Request.Context(), id, adminID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subOrder)
}

// TransitionItem handles POST /sub-orders/:id/items/:itemId/transition
func (h *SubOrderHandler) TransitionItem(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sub-order ID")
		return
	}

	itemID, err := parseUUIDParam(c, "itemId")
	if err != nil {
		h.BadRequest(c, "invalid item ID")
		return
	}

	storeID, err := getActingStore(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req fulfillmentapp.TransitionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subOrder, err := h.service.TransitionItem(c.Request.Context(), id, itemID, storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subOrder)
}

// ShippingHistory handles GET /sub-orders/:id/shipping-history
func (h *SubOrderHandler) ShippingHistory(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sub-order ID")
		return
	}

	history, err := h.service.GetShippingHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}
