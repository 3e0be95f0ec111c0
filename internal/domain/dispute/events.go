package dispute

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Case
const AggregateTypeCase = "Case"

// Event type constants for Case
const (
	EventTypeCaseCreated        = "CaseCreated"
	EventTypeCaseFirstResponded = "CaseFirstResponded"
	EventTypeCaseApproved       = "CaseApproved"
	EventTypeCaseRejected       = "CaseRejected"
	EventTypeCaseClosed         = "CaseClosed"
)

// CaseItemInfo summarizes a covered item for events
type CaseItemInfo struct {
	SubOrderItemID uuid.UUID       `json:"sub_order_item_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ReturnQuantity decimal.Decimal `json:"return_quantity"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
}

func caseItemInfos(c *Case) []CaseItemInfo {
	infos := make([]CaseItemInfo, len(c.Items))
	for i, item := range c.Items {
		infos[i] = CaseItemInfo{
			SubOrderItemID: item.SubOrderItemID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ReturnQuantity: item.ReturnQuantity,
			RefundAmount:   item.RefundAmount,
		}
	}
	return infos
}

// CaseCreatedEvent is raised when a buyer opens a case
type CaseCreatedEvent struct {
	shared.BaseDomainEvent
	CaseID     uuid.UUID      `json:"case_id"`
	CaseNumber string         `json:"case_number"`
	CaseType   CaseType       `json:"case_type"`
	SubOrderID uuid.UUID      `json:"sub_order_id"`
	StoreID    uuid.UUID      `json:"store_id"`
	BuyerID    uuid.UUID      `json:"buyer_id"`
	Items      []CaseItemInfo `json:"items"`
}

// NewCaseCreatedEvent creates a new CaseCreatedEvent
func NewCaseCreatedEvent(c *Case) *CaseCreatedEvent {
	return &CaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaseCreated, AggregateTypeCase, c.ID),
		CaseID:          c.ID,
		CaseNumber:      c.CaseNumber,
		CaseType:        c.Type,
		SubOrderID:      c.SubOrderID,
		StoreID:         c.StoreID,
		BuyerID:         c.BuyerID,
		Items:           caseItemInfos(c),
	}
}

// EventType returns the event type name
func (e *CaseCreatedEvent) EventType() string {
	return EventTypeCaseCreated
}

// CaseFirstRespondedEvent is raised on the first entry into UnderReview
type CaseFirstRespondedEvent struct {
	shared.BaseDomainEvent
	CaseID     uuid.UUID `json:"case_id"`
	CaseNumber string    `json:"case_number"`
}

// NewCaseFirstRespondedEvent creates a new CaseFirstRespondedEvent
func NewCaseFirstRespondedEvent(c *Case) *CaseFirstRespondedEvent {
	return &CaseFirstRespondedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaseFirstResponded, AggregateTypeCase, c.ID),
		CaseID:          c.ID,
		CaseNumber:      c.CaseNumber,
	}
}

// EventType returns the event type name
func (e *CaseFirstRespondedEvent) EventType() string {
	return EventTypeCaseFirstResponded
}

// CaseApprovedEvent is raised when a case is approved. It finalizes the
// refund amount consumed by the commission ledger.
type CaseApprovedEvent struct {
	shared.BaseDomainEvent
	CaseID       uuid.UUID       `json:"case_id"`
	CaseNumber   string          `json:"case_number"`
	CaseType     CaseType        `json:"case_type"`
	SubOrderID   uuid.UUID       `json:"sub_order_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	StoreID      uuid.UUID       `json:"store_id"`
	BuyerID      uuid.UUID       `json:"buyer_id"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Items        []CaseItemInfo  `json:"items"`
}

// NewCaseApprovedEvent creates a new CaseApprovedEvent
func NewCaseApprovedEvent(c *Case) *CaseApprovedEvent {
	return &CaseApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaseApproved, AggregateTypeCase, c.ID),
		CaseID:          c.ID,
		CaseNumber:      c.CaseNumber,
		CaseType:        c.Type,
		SubOrderID:      c.SubOrderID,
		OrderID:         c.OrderID,
		StoreID:         c.StoreID,
		BuyerID:         c.BuyerID,
		RefundAmount:    c.RefundTotal,
		Items:           caseItemInfos(c),
	}
}

// EventType returns the event type name
func (e *CaseApprovedEvent) EventType() string {
	return EventTypeCaseApproved
}

// CaseRejectedEvent is raised when a case is rejected
type CaseRejectedEvent struct {
	shared.BaseDomainEvent
	CaseID     uuid.UUID `json:"case_id"`
	CaseNumber string    `json:"case_number"`
	SubOrderID uuid.UUID `json:"sub_order_id"`
}

// NewCaseRejectedEvent creates a new CaseRejectedEvent
func NewCaseRejectedEvent(c *Case) *CaseRejectedEvent {
	return &CaseRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaseRejected, AggregateTypeCase, c.ID),
		CaseID:          c.ID,
		CaseNumber:      c.CaseNumber,
		SubOrderID:      c.SubOrderID,
	}
}

// EventType returns the event type name
func (e *CaseRejectedEvent) EventType() string {
	return EventTypeCaseRejected
}

// CaseClosedEvent is raised when a case reaches its terminal status
type CaseClosedEvent struct {
	shared.BaseDomainEvent
	CaseID      uuid.UUID `json:"case_id"`
	CaseNumber  string    `json:"case_number"`
	WasApproved bool      `json:"was_approved"`
}

// NewCaseClosedEvent creates a new CaseClosedEvent
func NewCaseClosedEvent(c *Case) *CaseClosedEvent {
	wasApproved := false
	for _, entry := range c.StatusHistory {
		if entry.NewStatus == CaseStatusApproved {
			wasApproved = true
			break
		}
	}
	return &CaseClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaseClosed, AggregateTypeCase, c.ID),
		CaseID:          c.ID,
		CaseNumber:      c.CaseNumber,
		WasApproved:     wasApproved,
	}
}

// EventType returns the event type name
func (e *CaseClosedEvent) EventType() string {
	return EventTypeCaseClosed
}
