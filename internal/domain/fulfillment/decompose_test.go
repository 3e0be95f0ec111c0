package fulfillment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a test order
func createTestOrder(t *testing.T, itemsSubtotal, shippingTotal decimal.Decimal) *Order {
	order, err := NewOrder("ORD-20260301-001", uuid.New(), itemsSubtotal, shippingTotal, DeliveryAddress{
		Recipient:  "Test Buyer",
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	})
	require.NoError(t, err)
	return order
}

func itemSpec(name string, qty, price int64) ItemSpec {
	return ItemSpec{
		ProductID:   uuid.New(),
		ProductName: name,
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   decimal.NewFromInt(price),
	}
}

func TestDecompose(t *testing.T) {
	t.Run("splits order into one sub-order per store", func(t *testing.T) {
		// 2*100 + 5*20 = 300 for store A, 1*50 = 50 for store B
		order := createTestOrder(t, decimal.NewFromInt(350), decimal.NewFromInt(15))
		storeA := uuid.New()
		storeB := uuid.New()

		subOrders, err := Decompose(order, []StoreItems{
			{StoreID: storeA, ShippingFee: decimal.NewFromInt(10), Items: []ItemSpec{
				itemSpec("Widget", 2, 100),
				itemSpec("Gadget", 5, 20),
			}},
			{StoreID: storeB, ShippingFee: decimal.NewFromInt(5), Items: []ItemSpec{
				itemSpec("Gizmo", 1, 50),
			}},
		})
		require.NoError(t, err)
		require.Len(t, subOrders, 2)

		assert.Equal(t, "ORD-20260301-001-01", subOrders[0].SubOrderNumber)
		assert.Equal(t, "ORD-20260301-001-02", subOrders[1].SubOrderNumber)
		assert.Equal(t, storeA, subOrders[0].StoreID)
		assert.Equal(t, storeB, subOrders[1].StoreID)
		assert.Equal(t, SubOrderStatusNew, subOrders[0].Status)
		assert.True(t, subOrders[0].ItemsTotal.Equal(decimal.NewFromInt(300)))
		assert.True(t, subOrders[1].ItemsTotal.Equal(decimal.NewFromInt(50)))
		assert.True(t, subOrders[0].Total().Equal(decimal.NewFromInt(310)))

		for _, so := range subOrders {
			assert.Equal(t, order.ID, so.OrderID)
			for _, item := range so.Items {
				assert.Equal(t, ItemStatusNew, item.Status)
			}
		}
	})

	t.Run("sub-order totals reconcile with order subtotal", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(350), decimal.Zero)

		subOrders, err := Decompose(order, []StoreItems{
			{StoreID: uuid.New(), Items: []ItemSpec{itemSpec("Widget", 3, 100)}},
			{StoreID: uuid.New(), Items: []ItemSpec{itemSpec("Gizmo", 1, 50)}},
		})
		require.NoError(t, err)

		sum := decimal.Zero
		for _, so := range subOrders {
			sum = sum.Add(so.ItemsTotal)
		}
		assert.True(t, sum.Equal(order.ItemsSubtotal))
	})

	t.Run("fails when totals do not reconcile", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(400), decimal.Zero)

		subOrders, err := Decompose(order, []StoreItems{
			{StoreID: uuid.New(), Items: []ItemSpec{itemSpec("Widget", 3, 100)}},
		})
		assert.Nil(t, subOrders)
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "DECOMPOSITION_MISMATCH", derr.Code)
	})

	t.Run("fails when a store appears twice", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(150), decimal.Zero)
		storeID := uuid.New()

		subOrders, err := Decompose(order, []StoreItems{
			{StoreID: storeID, Items: []ItemSpec{itemSpec("Widget", 1, 100)}},
			{StoreID: storeID, Items: []ItemSpec{itemSpec("Gizmo", 1, 50)}},
		})
		assert.Nil(t, subOrders)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "more than one group")
	})

	t.Run("fails with empty store group", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(100), decimal.Zero)

		_, err := Decompose(order, []StoreItems{
			{StoreID: uuid.New(), Items: nil},
		})
		assert.Error(t, err)
	})

	t.Run("fails with no store groups", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(100), decimal.Zero)

		_, err := Decompose(order, nil)
		assert.Error(t, err)
	})

	t.Run("fails with invalid line item", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(100), decimal.Zero)

		_, err := Decompose(order, []StoreItems{
			{StoreID: uuid.New(), Items: []ItemSpec{
				{ProductID: uuid.New(), ProductName: "Widget", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(100)},
			}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Quantity must be positive")
	})

	t.Run("raises decomposition event on the order", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(100), decimal.Zero)

		_, err := Decompose(order, []StoreItems{
			{StoreID: uuid.New(), Items: []ItemSpec{itemSpec("Widget", 1, 100)}},
		})
		require.NoError(t, err)

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderDecomposed, events[0].EventType())
	})
}

func TestOrderLifecycle(t *testing.T) {
	t.Run("created order walks confirm, pay, complete", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(100), decimal.NewFromInt(10))
		assert.Equal(t, OrderStatusCreated, order.Status)
		assert.True(t, order.GrandTotal.Equal(decimal.NewFromInt(110)))

		require.NoError(t, order.Confirm())
		require.NoError(t, order.MarkPaid("txn-123"))
		assert.True(t, order.IsPaid())
		assert.Equal(t, "txn-123", order.PaymentTxnRef)
		require.NoError(t, order.Complete())
		assert.True(t, order.IsTerminal())
	})

	t.Run("cannot pay an unconfirmed order", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(100), decimal.Zero)

		err := order.MarkPaid("txn-123")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot mark order paid")
	})

	t.Run("cancel requires a reason and is terminal", func(t *testing.T) {
		order := createTestOrder(t, decimal.NewFromInt(100), decimal.Zero)

		assert.Error(t, order.Cancel(""))
		require.NoError(t, order.Cancel("buyer changed mind"))
		assert.Error(t, order.Confirm())
	})
}
