package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
)

// DeliveryAddressRequest carries the address snapshot for a new order
type DeliveryAddressRequest struct {
	Recipient  string `json:"recipient" binding:"required"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country" binding:"required"`
}

// OrderItemRequest is one line of a store group in a new order
type OrderItemRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// StoreGroupRequest groups the items bought from one store
type StoreGroupRequest struct {
	StoreID     uuid.UUID          `json:"store_id" binding:"required"`
	ShippingFee decimal.Decimal    `json:"shipping_fee"`
	Items       []OrderItemRequest `json:"items" binding:"required,min=1"`
}

// CreateOrderRequest creates a buyer order
type CreateOrderRequest struct {
	BuyerID uuid.UUID              `json:"buyer_id" binding:"required"`
	Address DeliveryAddressRequest `json:"address" binding:"required"`
	ByStore []StoreGroupRequest    `json:"by_store" binding:"required,min=1"`
}

// CapturePaymentRequest records a payment capture against an order
type CapturePaymentRequest struct {
	PaymentTxnRef string `json:"payment_txn_ref" binding:"required"`
}

// CancelOrderRequest cancels an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransitionRequest moves a sub-order to a target status
type TransitionRequest struct {
	Target         string `json:"target" binding:"required"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
	Note           string `json:"note"`
}

// TransitionItemRequest moves a single line item to a target status
type TransitionItemRequest struct {
	Target string `json:"target" binding:"required"`
}

// SubOrderItemResponse represents a sub-order line item in API responses
type SubOrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Status      string          `json:"status"`
}

// SubOrderResponse represents a seller sub-order in API responses
type SubOrderResponse struct {
	ID              uuid.UUID              `json:"id"`
	SubOrderNumber  string                 `json:"sub_order_number"`
	OrderID         uuid.UUID              `json:"order_id"`
	StoreID         uuid.UUID              `json:"store_id"`
	StoreName       string                 `json:"store_name,omitempty"`
	Items           []SubOrderItemResponse `json:"items"`
	ItemsTotal      decimal.Decimal        `json:"items_total"`
	ShippingFee     decimal.Decimal        `json:"shipping_fee"`
	Total           decimal.Decimal        `json:"total"`
	Status          string                 `json:"status"`
	PaymentCaptured bool                   `json:"payment_captured"`
	DeliveredAt     *time.Time             `json:"delivered_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Version         int                    `json:"version"`
}

// OrderResponse represents a buyer order in API responses
type OrderResponse struct {
	ID            uuid.UUID                  `json:"id"`
	OrderNumber   string                     `json:"order_number"`
	BuyerID       uuid.UUID                  `json:"buyer_id"`
	ItemsSubtotal decimal.Decimal            `json:"items_subtotal"`
	ShippingTotal decimal.Decimal            `json:"shipping_total"`
	GrandTotal    decimal.Decimal            `json:"grand_total"`
	Status        string                     `json:"status"`
	Address       fulfillment.DeliveryAddress `json:"address"`
	PaymentTxnRef string                     `json:"payment_txn_ref,omitempty"`
	SubOrders     []SubOrderResponse         `json:"sub_orders,omitempty"`
	ConfirmedAt   *time.Time                 `json:"confirmed_at,omitempty"`
	PaidAt        *time.Time                 `json:"paid_at,omitempty"`
	CompletedAt   *time.Time                 `json:"completed_at,omitempty"`
	CancelledAt   *time.Time                 `json:"cancelled_at,omitempty"`
	CancelReason  string                     `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
	Version       int                        `json:"version"`
}

// ShippingHistoryResponse represents one shipping status change
type ShippingHistoryResponse struct {
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Actor          string    `json:"actor"`
	Carrier        string    `json:"carrier,omitempty"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	Note           string    `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ToOrderResponse converts a domain Order to a response DTO
func ToOrderResponse(order *fulfillment.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		BuyerID:       order.BuyerID,
		ItemsSubtotal: order.ItemsSubtotal,
		ShippingTotal: order.ShippingTotal,
		GrandTotal:    order.GrandTotal,
		Status:        order.Status.String(),
		Address:       order.DeliveryAddress,
		PaymentTxnRef: order.PaymentTxnRef,
		ConfirmedAt:   order.ConfirmedAt,
		PaidAt:        order.PaidAt,
		CompletedAt:   order.CompletedAt,
		CancelledAt:   order.CancelledAt,
		CancelReason:  order.CancelReason,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		Version:       order.Version,
	}
}

// ToSubOrderResponse converts a domain SellerSubOrder to a response DTO
func ToSubOrderResponse(so *fulfillment.SellerSubOrder) SubOrderResponse {
	items := make([]SubOrderItemResponse, len(so.Items))
	for i, item := range so.Items {
		items[i] = SubOrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			Status:      item.Status.String(),
		}
	}

	return SubOrderResponse{
		ID:              so.ID,
		SubOrderNumber:  so.SubOrderNumber,
		OrderID:         so.OrderID,
		StoreID:         so.StoreID,
		Items:           items,
		ItemsTotal:      so.ItemsTotal,
		ShippingFee:     so.ShippingFee,
		Total:           so.Total(),
		Status:          so.Status.String(),
		PaymentCaptured: so.PaymentCaptured,
		DeliveredAt:     so.DeliveredAt,
		CreatedAt:       so.CreatedAt,
		UpdatedAt:       so.UpdatedAt,
		Version:         so.Version,
	}
}

// ToSubOrderResponses converts a slice of sub-orders
func ToSubOrderResponses(subOrders []fulfillment.SellerSubOrder) []SubOrderResponse {
	responses := make([]SubOrderResponse, len(subOrders))
	for i := range subOrders {
		responses[i] = ToSubOrderResponse(&subOrders[i])
	}
	return responses
}

// ToShippingHistoryResponses converts shipping history entries
func ToShippingHistoryResponses(entries []fulfillment.ShippingStatusEntry) []ShippingHistoryResponse {
	responses := make([]ShippingHistoryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ShippingHistoryResponse{
			PreviousStatus: e.PreviousStatus.String(),
			NewStatus:      e.NewStatus.String(),
			Actor:          e.Actor,
			Carrier:        e.Carrier,
			TrackingNumber: e.TrackingNumber,
			Note:           e.Note,
			OccurredAt:     e.OccurredAt,
		}
	}
	return responses
}
