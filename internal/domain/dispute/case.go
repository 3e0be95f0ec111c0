package dispute

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CaseType distinguishes buyer-initiated returns from complaints
type CaseType string

const (
	CaseTypeReturn    CaseType = "RETURN"
	CaseTypeComplaint CaseType = "COMPLAINT"
)

// IsValid checks if the case type is known
func (t CaseType) IsValid() bool {
	return t == CaseTypeReturn || t == CaseTypeComplaint
}

// CaseStatus represents the lifecycle status of a case
type CaseStatus string

const (
	CaseStatusRequested   CaseStatus = "REQUESTED"
	CaseStatusUnderReview CaseStatus = "UNDER_REVIEW"
	CaseStatusApproved    CaseStatus = "APPROVED"
	CaseStatusRejected    CaseStatus = "REJECTED"
	CaseStatusClosed      CaseStatus = "CLOSED"
)

// IsValid checks if the status is a valid CaseStatus
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusRequested, CaseStatusUnderReview, CaseStatusApproved, CaseStatusRejected, CaseStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of CaseStatus
func (s CaseStatus) String() string {
	return string(s)
}

// IsOpen reports whether a case in this status still blocks its items.
// Open = {Requested, UnderReview, Approved}: an approved case keeps its
// items reserved until the refund settles and the case is closed.
func (s CaseStatus) IsOpen() bool {
	return s == CaseStatusRequested || s == CaseStatusUnderReview || s == CaseStatusApproved
}

// CanTransitionTo checks if the status can transition to the target status
func (s CaseStatus) CanTransitionTo(target CaseStatus) bool {
	switch s {
	case CaseStatusRequested:
		return target == CaseStatusUnderReview
	case CaseStatusUnderReview:
		return target == CaseStatusApproved || target == CaseStatusRejected
	case CaseStatusApproved, CaseStatusRejected:
		return target == CaseStatusClosed
	case CaseStatusClosed:
		return false // Terminal
	}
	return false
}

// OpenCaseStatuses returns the statuses under which a case holds its
// items exclusively
func OpenCaseStatuses() []CaseStatus {
	return []CaseStatus{CaseStatusRequested, CaseStatusUnderReview, CaseStatusApproved}
}

// CaseItem references one sub-order line item covered by the case
type CaseItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	CaseID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubOrderItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	ReturnQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RefundAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // ReturnQuantity * UnitPrice
}

// TableName returns the table name for GORM
func (CaseItem) TableName() string {
	return "case_items"
}

// CaseStatusHistoryEntry is an append-only record of a case transition
type CaseStatusHistoryEntry struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	CaseID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	PreviousStatus CaseStatus `gorm:"type:varchar(20);not null"`
	NewStatus      CaseStatus `gorm:"type:varchar(20);not null"`
	Actor          string     `gorm:"type:varchar(100);not null"`
	Note           string     `gorm:"type:varchar(500)"`
	OccurredAt     time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CaseStatusHistoryEntry) TableName() string {
	return "case_status_history"
}

// CaseMessage is a free-form thread entry, independent of the state machine
type CaseMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CaseID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Author    string    `gorm:"type:varchar(20);not null"` // "buyer", "seller", "admin"
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CaseMessage) TableName() string {
	return "case_messages"
}

// ItemSelection is the buyer's pick of items and quantities for a new case
type ItemSelection struct {
	SubOrderItemID uuid.UUID
	Quantity       decimal.Decimal
}

// Case represents a buyer-initiated return or complaint against a
// delivered seller sub-order
type Case struct {
	shared.BaseAggregateRoot
	CaseNumber      string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	SubOrderID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	StoreID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	OrderID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	BuyerID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	Type            CaseType                 `gorm:"type:varchar(20);not null"`
	Status          CaseStatus               `gorm:"type:varchar(20);not null;default:'REQUESTED';index"`
	Reason          string                   `gorm:"type:varchar(500)"`
	Category        string                   `gorm:"type:varchar(100)"` // product category used for SLA target resolution
	Items           []CaseItem               `gorm:"foreignKey:CaseID;references:ID"`
	RefundTotal     decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	StatusHistory   []CaseStatusHistoryEntry `gorm:"foreignKey:CaseID;references:ID"`
	Messages        []CaseMessage            `gorm:"foreignKey:CaseID;references:ID"`
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
}

// TableName returns the table name for GORM
func (Case) TableName() string {
	return "cases"
}

// CanInitiateReturn reports whether a buyer may open a case against the
// sub-order. A non-empty blocked reason explains a false result.
func CanInitiateReturn(subOrder *fulfillment.SellerSubOrder, buyerOwnsOrder bool, now time.Time, returnWindowDays int) (bool, string) {
	if subOrder == nil {
		return false, "sub-order not found"
	}
	if !buyerOwnsOrder {
		return false, "sub-order does not belong to this buyer"
	}
	if !subOrder.IsDelivered() {
		return false, fmt.Sprintf("sub-order is %s, not delivered", subOrder.Status)
	}
	if subOrder.DeliveredAt == nil {
		return false, "sub-order has no delivery timestamp"
	}
	if now.Sub(*subOrder.DeliveredAt) > time.Duration(returnWindowDays)*24*time.Hour {
		return false, "return window expired"
	}
	return true, ""
}

// NewCase creates a case against a delivered sub-order. Item-level
// exclusivity against other open cases is checked by the caller against
// the live open-case index; this constructor validates everything local
// to the sub-order.
func NewCase(caseNumber string, subOrder *fulfillment.SellerSubOrder, buyerID uuid.UUID, caseType CaseType, reason string, selections []ItemSelection) (*Case, error) {
	if caseNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Case number cannot be empty")
	}
	if subOrder == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Sub-order cannot be nil")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Buyer ID cannot be empty")
	}
	if !caseType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown case type %s", caseType))
	}
	if len(selections) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS_SELECTED", "A case must cover at least one item")
	}

	c := &Case{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CaseNumber:        caseNumber,
		SubOrderID:        subOrder.ID,
		StoreID:           subOrder.StoreID,
		OrderID:           subOrder.OrderID,
		BuyerID:           buyerID,
		Type:              caseType,
		Status:            CaseStatusRequested,
		Reason:            reason,
		Items:             make([]CaseItem, 0, len(selections)),
		RefundTotal:       decimal.Zero,
	}

	seen := make(map[uuid.UUID]bool, len(selections))
	for _, sel := range selections {
		if seen[sel.SubOrderItemID] {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Item selected more than once")
		}
		seen[sel.SubOrderItemID] = true

		orderItem := subOrder.GetItem(sel.SubOrderItemID)
		if orderItem == nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Item %s does not belong to the sub-order", sel.SubOrderItemID))
		}
		if sel.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Return quantity must be positive")
		}
		if sel.Quantity.GreaterThan(orderItem.Quantity) {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Return quantity cannot exceed ordered quantity")
		}

		refund := sel.Quantity.Mul(orderItem.UnitPrice)
		c.Items = append(c.Items, CaseItem{
			ID:             uuid.New(),
			CaseID:         c.ID,
			SubOrderItemID: orderItem.ID,
			ProductID:      orderItem.ProductID,
			ProductName:    orderItem.ProductName,
			ReturnQuantity: sel.Quantity,
			UnitPrice:      orderItem.UnitPrice,
			RefundAmount:   refund,
		})
		c.RefundTotal = c.RefundTotal.Add(refund)
	}

	c.AddDomainEvent(NewCaseCreatedEvent(c))

	return c, nil
}

// SetCategory records the product category the case is filed under
func (c *Case) SetCategory(category string) {
	c.Category = category
}

// Transition moves the case to the target status, appending a status
// history entry. FirstResponseAt is captured on the first entry into
// UnderReview only; ResolvedAt is captured when the case closes.
func (c *Case) Transition(target CaseStatus, actor, note string) error {
	if c.Status == CaseStatusClosed {
		return shared.NewDomainError("CASE_CLOSED", "Case is closed and cannot be acted on")
	}
	if !target.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown case status %s", target))
	}
	if !c.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition case from %s to %s", c.Status, target))
	}

	now := time.Now()
	c.StatusHistory = append(c.StatusHistory, CaseStatusHistoryEntry{
		ID:             uuid.New(),
		CaseID:         c.ID,
		PreviousStatus: c.Status,
		NewStatus:      target,
		Actor:          actor,
		Note:           note,
		OccurredAt:     now,
	})

	c.Status = target
	c.UpdatedAt = now

	switch target {
	case CaseStatusUnderReview:
		if c.FirstResponseAt == nil {
			c.FirstResponseAt = &now
			c.AddDomainEvent(NewCaseFirstRespondedEvent(c))
		}
	case CaseStatusApproved:
		c.AddDomainEvent(NewCaseApprovedEvent(c))
	case CaseStatusRejected:
		c.AddDomainEvent(NewCaseRejectedEvent(c))
	case CaseStatusClosed:
		c.ResolvedAt = &now
		c.AddDomainEvent(NewCaseClosedEvent(c))
	}

	return nil
}

// AddMessage appends a thread message. Allowed in any non-Closed status;
// messages never alter the state machine.
func (c *Case) AddMessage(authorID uuid.UUID, author, body string) (*CaseMessage, error) {
	if c.Status == CaseStatusClosed {
		return nil, shared.NewDomainError("CASE_CLOSED", "Cannot message a closed case")
	}
	if body == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Message body cannot be empty")
	}

	msg := CaseMessage{
		ID:        uuid.New(),
		CaseID:    c.ID,
		AuthorID:  authorID,
		Author:    author,
		Body:      body,
		CreatedAt: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = msg.CreatedAt

	return &msg, nil
}

// IsOpen reports whether the case still blocks its items
func (c *Case) IsOpen() bool {
	return c.Status.IsOpen()
}

// IsApproved returns true if the case has been approved
func (c *Case) IsApproved() bool {
	return c.Status == CaseStatusApproved
}

// ItemIDs returns the sub-order item IDs covered by the case
func (c *Case) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.SubOrderItemID
	}
	return ids
}
