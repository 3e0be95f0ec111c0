package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// OrderRepository defines the interface for buyer-order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByBuyer finds orders belonging to a buyer
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// SaveDecomposition persists the order and its sub-orders atomically.
	// Either every sub-order is created or none are.
	SaveDecomposition(ctx context.Context, order *Order, subOrders []*SellerSubOrder) error

	// GenerateOrderNumber generates the next unique order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// SubOrderRepository defines the interface for seller sub-order persistence
type SubOrderRepository interface {
	// FindByID finds a sub-order by ID, items and history included
	FindByID(ctx context.Context, id uuid.UUID) (*SellerSubOrder, error)

	// FindByOrder finds all sub-orders of a buyer order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]SellerSubOrder, error)

	// FindByStore finds sub-orders belonging to a store
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]SellerSubOrder, error)

	// FindByItemID finds the sub-order owning a given line item
	FindByItemID(ctx context.Context, itemID uuid.UUID) (*SellerSubOrder, error)

	// Save creates or updates a sub-order
	Save(ctx context.Context, so *SellerSubOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, so *SellerSubOrder) error

	// GetShippingHistory returns the append-only status history, oldest first
	GetShippingHistory(ctx context.Context, subOrderID uuid.UUID) ([]ShippingStatusEntry, error)
}
