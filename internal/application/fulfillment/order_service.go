package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderService handles buyer order business operations
type OrderService struct {
	orderRepo      fulfillment.OrderRepository
	subOrderRepo   fulfillment.SubOrderRepository
	eventPublisher shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo fulfillment.OrderRepository,
	subOrderRepo fulfillment.SubOrderRepository,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		subOrderRepo: subOrderRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a buyer order and decomposes it into per-seller
// sub-orders in one atomic write. Sub-orders start in NEW and advance to
// PAID at payment capture.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	itemsSubtotal := decimal.Zero
	shippingTotal := decimal.Zero
	itemsByStore := make([]fulfillment.StoreItems, 0, len(req.ByStore))
	for _, group := range req.ByStore {
		specs := make([]fulfillment.ItemSpec, 0, len(group.Items))
		for _, item := range group.Items {
			specs = append(specs, fulfillment.ItemSpec{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			})
			itemsSubtotal = itemsSubtotal.Add(item.Quantity.Mul(item.UnitPrice))
		}
		shippingTotal = shippingTotal.Add(group.ShippingFee)
		itemsByStore = append(itemsByStore, fulfillment.StoreItems{
			StoreID:     group.StoreID,
			ShippingFee: group.ShippingFee,
			Items:       specs,
		})
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := fulfillment.NewOrder(orderNumber, req.BuyerID, itemsSubtotal, shippingTotal, fulfillment.DeliveryAddress{
		Recipient:  req.Address.Recipient,
		Phone:      req.Address.Phone,
		Line1:      req.Address.Line1,
		Line2:      req.Address.Line2,
		City:       req.Address.City,
		PostalCode: req.Address.PostalCode,
		Country:    req.Address.Country,
	})
	if err != nil {
		return nil, err
	}

	subOrders, err := fulfillment.Decompose(order, itemsByStore)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveDecomposition(ctx, order, subOrders); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	for _, so := range subOrders {
		response.SubOrders = append(response.SubOrders, ToSubOrderResponse(so))
	}
	return &response, nil
}

// Confirm marks the order as confirmed by the buyer
func (s *OrderService) Confirm(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Confirm(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// CapturePayment records a payment capture and advances every sub-order
// to PAID. The resulting status events feed the commission ledger.
func (s *OrderService) CapturePayment(ctx context.Context, orderID uuid.UUID, req CapturePaymentRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.MarkPaid(req.PaymentTxnRef); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	subOrders, err := s.subOrderRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range subOrders {
		so := &subOrders[i]
		if err := so.Transition(fulfillment.SubOrderStatusPaid, "system", fulfillment.ShippingInfo{}); err != nil {
			return nil, err
		}
		if err := s.subOrderRepo.SaveWithLock(ctx, so); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, so)
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	response.SubOrders = ToSubOrderResponses(subOrders)
	return &response, nil
}

// Complete marks the order as completed
func (s *OrderService) Complete(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Complete(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// Cancel cancels the order
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order with its sub-orders
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	subOrders, err := s.subOrderRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	response.SubOrders = ToSubOrderResponses(subOrders)
	return &response, nil
}

// ListByBuyer retrieves a buyer's orders
func (s *OrderService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, nil
}

func (s *OrderService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
