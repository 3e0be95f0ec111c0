package fulfillment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SubOrderStatus represents the fulfillment status of a seller sub-order
type SubOrderStatus string

const (
	SubOrderStatusNew       SubOrderStatus = "NEW"
	SubOrderStatusPaid      SubOrderStatus = "PAID"
	SubOrderStatusPreparing SubOrderStatus = "PREPARING"
	SubOrderStatusShipped   SubOrderStatus = "SHIPPED"
	SubOrderStatusDelivered SubOrderStatus = "DELIVERED"
	SubOrderStatusCancelled SubOrderStatus = "CANCELLED"
	SubOrderStatusRefunded  SubOrderStatus = "REFUNDED"
)

// forwardRank orders the linear fulfillment path. Cancelled and Refunded
// are terminal branches and carry no rank.
var subOrderForwardRank = map[SubOrderStatus]int{
	SubOrderStatusNew:       0,
	SubOrderStatusPaid:      1,
	SubOrderStatusPreparing: 2,
	SubOrderStatusShipped:   3,
	SubOrderStatusDelivered: 4,
}

// IsValid checks if the status is a valid SubOrderStatus
func (s SubOrderStatus) IsValid() bool {
	switch s {
	case SubOrderStatusNew, SubOrderStatusPaid, SubOrderStatusPreparing,
		SubOrderStatusShipped, SubOrderStatusDelivered, SubOrderStatusCancelled, SubOrderStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of SubOrderStatus
func (s SubOrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for terminal statuses
func (s SubOrderStatus) IsTerminal() bool {
	return s == SubOrderStatusDelivered || s == SubOrderStatusCancelled || s == SubOrderStatusRefunded
}

// CanTransitionTo checks if the status can transition to the target status.
// The forward path is strictly linear; Cancelled is reachable from any
// non-terminal status; Refunded is handled separately because it depends
// on payment capture state.
func (s SubOrderStatus) CanTransitionTo(target SubOrderStatus) bool {
	if target == SubOrderStatusCancelled {
		return !s.IsTerminal()
	}
	if target == SubOrderStatusRefunded {
		return s == SubOrderStatusDelivered || s == SubOrderStatusCancelled
	}
	from, okFrom := subOrderForwardRank[s]
	to, okTo := subOrderForwardRank[target]
	if !okFrom || !okTo {
		return false
	}
	return to == from+1
}

// ItemStatus represents the coarser per-item fulfillment status.
// It deliberately has no Paid or Refunded state: refunds are tracked
// financially through cases and the commission ledger so that a partial
// item refund never needs an extra item state.
type ItemStatus string

const (
	ItemStatusNew       ItemStatus = "NEW"
	ItemStatusPreparing ItemStatus = "PREPARING"
	ItemStatusShipped   ItemStatus = "SHIPPED"
	ItemStatusDelivered ItemStatus = "DELIVERED"
	ItemStatusCancelled ItemStatus = "CANCELLED"
)

var itemForwardRank = map[ItemStatus]int{
	ItemStatusNew:       0,
	ItemStatusPreparing: 1,
	ItemStatusShipped:   2,
	ItemStatusDelivered: 3,
}

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusNew, ItemStatusPreparing, ItemStatusShipped, ItemStatusDelivered, ItemStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// IsTerminal returns true for terminal statuses
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusDelivered || s == ItemStatusCancelled
}

// CanTransitionTo checks if the item status can transition to the target
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	if target == ItemStatusCancelled {
		return !s.IsTerminal()
	}
	from, okFrom := itemForwardRank[s]
	to, okTo := itemForwardRank[target]
	if !okFrom || !okTo {
		return false
	}
	return to == from+1
}

// SubOrderItem represents a line item in a seller sub-order
type SubOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SubOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	Status      ItemStatus      `gorm:"type:varchar(20);not null;default:'NEW'"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SubOrderItem) TableName() string {
	return "sub_order_items"
}

// newSubOrderItem validates and builds a line item
func newSubOrderItem(subOrderID uuid.UUID, spec ItemSpec) (*SubOrderItem, error) {
	if spec.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID cannot be empty")
	}
	if spec.ProductName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if spec.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if spec.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price cannot be negative")
	}

	now := time.Now()
	return &SubOrderItem{
		ID:          uuid.New(),
		SubOrderID:  subOrderID,
		ProductID:   spec.ProductID,
		ProductName: spec.ProductName,
		Quantity:    spec.Quantity,
		UnitPrice:   spec.UnitPrice,
		LineTotal:   spec.Quantity.Mul(spec.UnitPrice),
		Status:      ItemStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Transition moves the item to the target status
func (i *SubOrderItem) Transition(target ItemStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown item status %s", target))
	}
	if !i.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition item from %s to %s", i.Status, target))
	}

	i.Status = target
	i.UpdatedAt = time.Now()

	return nil
}

// ShippingStatusEntry is an append-only record of a sub-order status change
type ShippingStatusEntry struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key"`
	SubOrderID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	PreviousStatus SubOrderStatus `gorm:"type:varchar(20);not null"`
	NewStatus      SubOrderStatus `gorm:"type:varchar(20);not null"`
	Actor          string         `gorm:"type:varchar(100);not null"`
	Carrier        string         `gorm:"type:varchar(100)"`
	TrackingNumber string         `gorm:"type:varchar(100)"`
	Note           string         `gorm:"type:varchar(500)"`
	OccurredAt     time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ShippingStatusEntry) TableName() string {
	return "shipping_status_entries"
}

// ShippingInfo carries optional carrier details for a transition
type ShippingInfo struct {
	Carrier        string
	TrackingNumber string
	Note           string
}

// SellerSubOrder represents the per-seller portion of a buyer order,
// fulfilled and tracked independently of its siblings.
type SellerSubOrder struct {
	shared.BaseAggregateRoot
	SubOrderNumber  string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	StoreID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	Items           []SubOrderItem        `gorm:"foreignKey:SubOrderID;references:ID"`
	ItemsTotal      decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"` // Sum of line totals
	ShippingFee     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Status          SubOrderStatus        `gorm:"type:varchar(20);not null;default:'NEW';index"`
	PaymentCaptured bool                  `gorm:"not null;default:false"`
	StatusHistory   []ShippingStatusEntry `gorm:"foreignKey:SubOrderID;references:ID"`
	DeliveredAt     *time.Time
}

// TableName returns the table name for GORM
func (SellerSubOrder) TableName() string {
	return "seller_sub_orders"
}

// Transition moves the sub-order to the target status and appends a
// shipping history entry. Skipped or backward transitions are rejected.
func (so *SellerSubOrder) Transition(target SubOrderStatus, actor string, info ShippingInfo) error {
	if !target.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown sub-order status %s", target))
	}
	if !so.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition sub-order from %s to %s", so.Status, target))
	}
	if target == SubOrderStatusRefunded && so.Status == SubOrderStatusCancelled && !so.PaymentCaptured {
		return shared.NewDomainError("INVALID_TRANSITION", "Cancelled sub-order has no captured payment to refund")
	}

	so.applyStatus(target, actor, info)

	return nil
}

// OverrideTransition is the administrative escape hatch: it may skip
// intermediate statuses but must still move monotonically forward along
// the fulfillment path, or to Cancelled.
func (so *SellerSubOrder) OverrideTransition(target SubOrderStatus, actor string, info ShippingInfo) error {
	if !target.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown sub-order status %s", target))
	}
	if target == SubOrderStatusCancelled {
		if so.Status.IsTerminal() {
			return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot cancel sub-order in terminal status %s", so.Status))
		}
		so.applyStatus(target, actor, info)
		return nil
	}

	from, okFrom := subOrderForwardRank[so.Status]
	to, okTo := subOrderForwardRank[target]
	if !okFrom || !okTo || to <= from {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Override from %s to %s is not monotonic-forward", so.Status, target))
	}

	so.applyStatus(target, actor, info)

	return nil
}

// MarkRefunded transitions the sub-order to Refunded. Reached from
// Delivered only through an approved case, or from Cancelled when a
// payment was captured.
func (so *SellerSubOrder) MarkRefunded(actor string) error {
	return so.Transition(SubOrderStatusRefunded, actor, ShippingInfo{Note: "refund finalized"})
}

// applyStatus commits a validated status change and records history
func (so *SellerSubOrder) applyStatus(target SubOrderStatus, actor string, info ShippingInfo) {
	now := time.Now()
	so.StatusHistory = append(so.StatusHistory, ShippingStatusEntry{
		ID:             uuid.New(),
		SubOrderID:     so.ID,
		PreviousStatus: so.Status,
		NewStatus:      target,
		Actor:          actor,
		Carrier:        info.Carrier,
		TrackingNumber: info.TrackingNumber,
		Note:           info.Note,
		OccurredAt:     now,
	})

	previous := so.Status
	so.Status = target
	so.UpdatedAt = now

	switch target {
	case SubOrderStatusPaid:
		so.PaymentCaptured = true
	case SubOrderStatusDelivered:
		so.DeliveredAt = &now
	}

	so.AddDomainEvent(NewSubOrderStatusChangedEvent(so, previous, actor))
}

// TransitionItem moves a single line item to the target status
func (so *SellerSubOrder) TransitionItem(itemID uuid.UUID, target ItemStatus) error {
	for idx := range so.Items {
		if so.Items[idx].ID == itemID {
			if err := so.Items[idx].Transition(target); err != nil {
				return err
			}
			so.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Sub-order item not found")
}

// GetItem returns a line item by its ID
func (so *SellerSubOrder) GetItem(itemID uuid.UUID) *SubOrderItem {
	for idx := range so.Items {
		if so.Items[idx].ID == itemID {
			return &so.Items[idx]
		}
	}
	return nil
}

// IsDelivered returns true if the sub-order has been delivered
func (so *SellerSubOrder) IsDelivered() bool {
	return so.Status == SubOrderStatusDelivered
}

// BelongsToStore checks seller ownership
func (so *SellerSubOrder) BelongsToStore(storeID uuid.UUID) bool {
	return so.StoreID == storeID
}

// Total returns items total plus shipping fee
func (so *SellerSubOrder) Total() decimal.Decimal {
	return so.ItemsTotal.Add(so.ShippingFee)
}
