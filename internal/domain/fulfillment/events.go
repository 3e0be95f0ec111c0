package fulfillment

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeOrder          = "Order"
	AggregateTypeSellerSubOrder = "SellerSubOrder"
)

// Event type constants
const (
	EventTypeOrderDecomposed       = "OrderDecomposed"
	EventTypeSubOrderStatusChanged = "SubOrderStatusChanged"
)

// DecomposedSubOrderInfo summarizes one created sub-order for events
type DecomposedSubOrderInfo struct {
	SubOrderID     uuid.UUID       `json:"sub_order_id"`
	SubOrderNumber string          `json:"sub_order_number"`
	StoreID        uuid.UUID       `json:"store_id"`
	ItemsTotal     decimal.Decimal `json:"items_total"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	ItemCount      int             `json:"item_count"`
}

// OrderDecomposedEvent is raised when an order is split into per-seller
// sub-orders at payment capture
type OrderDecomposedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID                `json:"order_id"`
	OrderNumber   string                   `json:"order_number"`
	BuyerID       uuid.UUID                `json:"buyer_id"`
	ItemsSubtotal decimal.Decimal          `json:"items_subtotal"`
	SubOrders     []DecomposedSubOrderInfo `json:"sub_orders"`
}

// NewOrderDecomposedEvent creates a new OrderDecomposedEvent
func NewOrderDecomposedEvent(order *Order, subOrders []*SellerSubOrder) *OrderDecomposedEvent {
	infos := make([]DecomposedSubOrderInfo, len(subOrders))
	for i, so := range subOrders {
		infos[i] = DecomposedSubOrderInfo{
			SubOrderID:     so.ID,
			SubOrderNumber: so.SubOrderNumber,
			StoreID:        so.StoreID,
			ItemsTotal:     so.ItemsTotal,
			ShippingFee:    so.ShippingFee,
			ItemCount:      len(so.Items),
		}
	}

	return &OrderDecomposedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDecomposed, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		ItemsSubtotal:   order.ItemsSubtotal,
		SubOrders:       infos,
	}
}

// EventType returns the event type name
func (e *OrderDecomposedEvent) EventType() string {
	return EventTypeOrderDecomposed
}

// SubOrderStatusChangedEvent is raised on every sub-order status change
type SubOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	SubOrderID     uuid.UUID      `json:"sub_order_id"`
	SubOrderNumber string         `json:"sub_order_number"`
	OrderID        uuid.UUID      `json:"order_id"`
	StoreID        uuid.UUID      `json:"store_id"`
	PreviousStatus SubOrderStatus `json:"previous_status"`
	NewStatus      SubOrderStatus `json:"new_status"`
	Actor          string         `json:"actor"`
}

// NewSubOrderStatusChangedEvent creates a new SubOrderStatusChangedEvent
func NewSubOrderStatusChangedEvent(so *SellerSubOrder, previous SubOrderStatus, actor string) *SubOrderStatusChangedEvent {
	return &SubOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubOrderStatusChanged, AggregateTypeSellerSubOrder, so.ID),
		SubOrderID:      so.ID,
		SubOrderNumber:  so.SubOrderNumber,
		OrderID:         so.OrderID,
		StoreID:         so.StoreID,
		PreviousStatus:  previous,
		NewStatus:       so.Status,
		Actor:           actor,
	}
}

// EventType returns the event type name
func (e *SubOrderStatusChangedEvent) EventType() string {
	return EventTypeSubOrderStatusChanged
}
