package fulfillment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the overall status of a buyer order.
// It is settable independently of the per-seller sub-order statuses and is
// never derived from them automatically.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusConfirmed, OrderStatusPaid, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPaid || target == OrderStatusCancelled
	case OrderStatusPaid:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// DeliveryAddress is the address snapshot taken at order confirmation.
// Later edits to the buyer's address book never change a placed order.
type DeliveryAddress struct {
	Recipient  string `json:"recipient" gorm:"type:varchar(100)"`
	Phone      string `json:"phone" gorm:"type:varchar(30)"`
	Line1      string `json:"line1" gorm:"type:varchar(200)"`
	Line2      string `json:"line2" gorm:"type:varchar(200)"`
	City       string `json:"city" gorm:"type:varchar(100)"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(20)"`
	Country    string `json:"country" gorm:"type:varchar(2)"`
}

// Order represents a buyer order aggregate root.
// A multi-seller order is decomposed into SellerSubOrders at payment
// capture; the Order itself only tracks buyer-facing aggregate state.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BuyerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemsSubtotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Sum of all line totals across sellers
	ShippingTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Sum of per-sub-order shipping fees
	GrandTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // ItemsSubtotal + ShippingTotal
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'CREATED';index"`
	DeliveryAddress DeliveryAddress `gorm:"embedded;embeddedPrefix:address_"`
	PaymentTxnRef   string          `gorm:"type:varchar(100)"` // Reference handed back by the payment gateway
	ConfirmedAt     *time.Time
	PaidAt          *time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new buyer order
func NewOrder(orderNumber string, buyerID uuid.UUID, itemsSubtotal, shippingTotal decimal.Decimal, address DeliveryAddress) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order number cannot be empty")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Buyer ID cannot be empty")
	}
	if itemsSubtotal.IsNegative() || shippingTotal.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order amounts cannot be negative")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		BuyerID:           buyerID,
		ItemsSubtotal:     itemsSubtotal,
		ShippingTotal:     shippingTotal,
		GrandTotal:        itemsSubtotal.Add(shippingTotal),
		Status:            OrderStatusCreated,
		DeliveryAddress:   address,
	}, nil
}

// Confirm marks the order as confirmed by the buyer
func (o *Order) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now

	return nil
}

// MarkPaid records the payment capture against the order
func (o *Order) MarkPaid(paymentTxnRef string) error {
	if !o.Status.CanTransitionTo(OrderStatusPaid) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot mark order paid in %s status", o.Status))
	}
	if paymentTxnRef == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment transaction reference is required")
	}

	now := time.Now()
	o.Status = OrderStatusPaid
	o.PaymentTxnRef = paymentTxnRef
	o.PaidAt = &now
	o.UpdatedAt = now

	return nil
}

// Complete marks the order as completed
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now

	return nil
}

// Cancel cancels the order
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	return nil
}

// IsPaid returns true if payment has been captured
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusCompleted
}

// IsTerminal returns true if the order is completed or cancelled
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}
