package dispute

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/sla"
	"github.com/shopspring/decimal"
)

// ItemSelectionRequest picks one sub-order item and quantity for a case
type ItemSelectionRequest struct {
	SubOrderItemID uuid.UUID       `json:"sub_order_item_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateCaseRequest opens a return or complaint case against a sub-order
type CreateCaseRequest struct {
	SubOrderID uuid.UUID              `json:"sub_order_id" binding:"required"`
	BuyerID    uuid.UUID              `json:"buyer_id" binding:"required"`
	Type       string                 `json:"type" binding:"required"`
	Reason     string                 `json:"reason"`
	Category   string                 `json:"category"`
	Items      []ItemSelectionRequest `json:"items" binding:"required,min=1"`
}

// TransitionCaseRequest moves a case to a target status
type TransitionCaseRequest struct {
	Target  string     `json:"target" binding:"required"`
	Actor   string     `json:"actor" binding:"required"`
	StoreID *uuid.UUID `json:"store_id"`
	Note    string     `json:"note"`
}

// AddMessageRequest appends a thread message to a case
type AddMessageRequest struct {
	AuthorID uuid.UUID `json:"author_id" binding:"required"`
	Author   string    `json:"author" binding:"required"`
	Body     string    `json:"body" binding:"required"`
}

// CaseItemResponse represents a covered item in API responses
type CaseItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	SubOrderItemID uuid.UUID       `json:"sub_order_item_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ReturnQuantity decimal.Decimal `json:"return_quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
}

// CaseHistoryResponse represents one status change
type CaseHistoryResponse struct {
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Actor          string    `json:"actor"`
	Note           string    `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// CaseMessageResponse represents one thread message
type CaseMessageResponse struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// SlaInfoResponse is the SLA projection embedded in case responses
type SlaInfoResponse struct {
	ResponseTargetHours   *int       `json:"response_target_hours"`
	ResolutionTargetHours *int       `json:"resolution_target_hours"`
	FirstResponseAt       *time.Time `json:"first_response_at,omitempty"`
	ResolvedAt            *time.Time `json:"resolved_at,omitempty"`
	IsFirstResponseBreach bool       `json:"is_first_response_breach"`
	IsResolutionBreach    bool       `json:"is_resolution_breach"`
	ResolvedWithinTarget  bool       `json:"resolved_within_target"`
}

// CaseResponse represents a case in API responses
type CaseResponse struct {
	ID              uuid.UUID             `json:"id"`
	CaseNumber      string                `json:"case_number"`
	SubOrderID      uuid.UUID             `json:"sub_order_id"`
	OrderID         uuid.UUID             `json:"order_id"`
	StoreID         uuid.UUID             `json:"store_id"`
	BuyerID         uuid.UUID             `json:"buyer_id"`
	Type            string                `json:"type"`
	Status          string                `json:"status"`
	Reason          string                `json:"reason,omitempty"`
	Category        string                `json:"category,omitempty"`
	Items           []CaseItemResponse    `json:"items"`
	RefundTotal     decimal.Decimal       `json:"refund_total"`
	StatusHistory   []CaseHistoryResponse `json:"status_history,omitempty"`
	Messages        []CaseMessageResponse `json:"messages,omitempty"`
	FirstResponseAt *time.Time            `json:"first_response_at,omitempty"`
	ResolvedAt      *time.Time            `json:"resolved_at,omitempty"`
	Sla             *SlaInfoResponse      `json:"sla,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// ToCaseResponse converts a domain Case to a response DTO
func ToCaseResponse(c *dispute.Case) CaseResponse {
	items := make([]CaseItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = CaseItemResponse{
			ID:             item.ID,
			SubOrderItemID: item.SubOrderItemID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ReturnQuantity: item.ReturnQuantity,
			UnitPrice:      item.UnitPrice,
			RefundAmount:   item.RefundAmount,
		}
	}

	history := make([]CaseHistoryResponse, len(c.StatusHistory))
	for i, entry := range c.StatusHistory {
		history[i] = CaseHistoryResponse{
			PreviousStatus: entry.PreviousStatus.String(),
			NewStatus:      entry.NewStatus.String(),
			Actor:          entry.Actor,
			Note:           entry.Note,
			OccurredAt:     entry.OccurredAt,
		}
	}

	messages := make([]CaseMessageResponse, len(c.Messages))
	for i, msg := range c.Messages {
		messages[i] = CaseMessageResponse{
			ID:        msg.ID,
			AuthorID:  msg.AuthorID,
			Author:    msg.Author,
			Body:      msg.Body,
			CreatedAt: msg.CreatedAt,
		}
	}

	return CaseResponse{
		ID:              c.ID,
		CaseNumber:      c.CaseNumber,
		SubOrderID:      c.SubOrderID,
		OrderID:         c.OrderID,
		StoreID:         c.StoreID,
		BuyerID:         c.BuyerID,
		Type:            string(c.Type),
		Status:          c.Status.String(),
		Reason:          c.Reason,
		Category:        c.Category,
		Items:           items,
		RefundTotal:     c.RefundTotal,
		StatusHistory:   history,
		Messages:        messages,
		FirstResponseAt: c.FirstResponseAt,
		ResolvedAt:      c.ResolvedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

// ToSlaInfoResponse converts a tracking record to the embedded projection
func ToSlaInfoResponse(r *sla.TrackingRecord) *SlaInfoResponse {
	if r == nil {
		return nil
	}
	return &SlaInfoResponse{
		ResponseTargetHours:   r.ResponseTargetHours,
		ResolutionTargetHours: r.ResolutionTargetHours,
		FirstResponseAt:       r.FirstResponseAt,
		ResolvedAt:            r.ResolvedAt,
		IsFirstResponseBreach: r.IsFirstResponseBreach,
		IsResolutionBreach:    r.IsResolutionBreach,
		ResolvedWithinTarget:  r.ResolvedWithinTarget(),
	}
}

// ToCaseListResponses converts cases without nested detail
func ToCaseListResponses(cases []dispute.Case) []CaseResponse {
	responses := make([]CaseResponse, len(cases))
	for i := range cases {
		responses[i] = ToCaseResponse(&cases[i])
		responses[i].StatusHistory = nil
		responses[i].Messages = nil
	}
	return responses
}
