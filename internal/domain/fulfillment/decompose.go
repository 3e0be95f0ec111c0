package fulfillment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemSpec describes one line of a store's portion of an order
type ItemSpec struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// StoreItems groups the lines and shipping fee belonging to one store
type StoreItems struct {
	StoreID     uuid.UUID
	ShippingFee decimal.Decimal
	Items       []ItemSpec
}

// Decompose splits a paid order into one SellerSubOrder per distinct
// store. The operation is all-or-nothing: any invalid line or a totals
// mismatch returns an error and no sub-orders.
//
// Invariant: the sum of sub-order item totals must equal the order's
// items subtotal. Shipping fees are tracked per sub-order and are not
// part of the reconciliation.
func Decompose(order *Order, itemsByStore []StoreItems) ([]*SellerSubOrder, error) {
	if order == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order cannot be nil")
	}
	if len(itemsByStore) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order has no store groups to decompose")
	}

	seen := make(map[uuid.UUID]bool, len(itemsByStore))
	subOrders := make([]*SellerSubOrder, 0, len(itemsByStore))
	runningTotal := decimal.Zero

	for idx, group := range itemsByStore {
		if group.StoreID == uuid.Nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Store ID cannot be empty")
		}
		if seen[group.StoreID] {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Store %s appears in more than one group", group.StoreID))
		}
		seen[group.StoreID] = true
		if len(group.Items) == 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Store group %s has no items", group.StoreID))
		}
		if group.ShippingFee.IsNegative() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Shipping fee cannot be negative")
		}

		so := &SellerSubOrder{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			SubOrderNumber:    fmt.Sprintf("%s-%02d", order.OrderNumber, idx+1),
			OrderID:           order.ID,
			StoreID:           group.StoreID,
			Items:             make([]SubOrderItem, 0, len(group.Items)),
			ItemsTotal:        decimal.Zero,
			ShippingFee:       group.ShippingFee,
			Status:            SubOrderStatusNew,
		}

		for _, spec := range group.Items {
			item, err := newSubOrderItem(so.ID, spec)
			if err != nil {
				return nil, err
			}
			so.Items = append(so.Items, *item)
			so.ItemsTotal = so.ItemsTotal.Add(item.LineTotal)
		}

		runningTotal = runningTotal.Add(so.ItemsTotal)
		subOrders = append(subOrders, so)
	}

	if !runningTotal.Equal(order.ItemsSubtotal) {
		return nil, shared.NewDomainError("DECOMPOSITION_MISMATCH",
			fmt.Sprintf("Sub-order totals %s do not reconcile with order items subtotal %s",
				runningTotal.String(), order.ItemsSubtotal.String()))
	}

	order.AddDomainEvent(NewOrderDecomposedEvent(order, subOrders))

	return subOrders, nil
}
