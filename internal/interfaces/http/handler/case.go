package handler

import (
	"github.com/gin-gonic/gin"
	disputeapp "github.com/marketplace/backend/internal/application/dispute"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// CaseHandler handles return and complaint case endpoints
type CaseHandler struct {
	BaseHandler
	service *disputeapp.CaseService
}

// NewCaseHandler creates a new CaseHandler
func NewCaseHandler(service *disputeapp.CaseService) *CaseHandler {
	return &CaseHandler{service: service}
}

// Create handles POST /cases
func (h *CaseHandler) Create(c *gin.Context) {
	var req disputeapp.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Get handles GET /cases/:id. The response carries the SLA projection
// alongside the case itself.
func (h *CaseHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid case ID")
		return
	}

	caseResp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, caseResp)
}

// Transition handles POST /cases/:id/transition
func (h *CaseHandler) Transition(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid case ID")
		return
	}

	var req disputeapp.TransitionCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	caseResp, err := h.service.Transition(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, caseResp)
}

// AddMessage handles POST /cases/:id/messages
func (h *CaseHandler) AddMessage(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid case ID")
		return
	}

	var req disputeapp.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	message, err := h.service.AddMessage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, message)
}

// List handles GET /cases. A store header scopes the list to cases
// against that store; otherwise the buyer header scopes it to the
// buyer's own cases.
func (h *CaseHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(req)
	if caseType := c.Query("type"); caseType != "" {
		filter.Filters["type"] = caseType
	}

	ctx := c.Request.Context()
	if storeID, err := getActingStore(c); err == nil {
		cases, err := h.service.ListByStore(ctx, storeID, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.SuccessWithMeta(c, cases, filter, len(cases))
		return
	}

	buyerID, err := getBuyerID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cases, err := h.service.ListByBuyer(ctx, buyerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, cases, filter, len(cases))
}
