package fulfillment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a sub-order in New status
func createTestSubOrder(t *testing.T) *SellerSubOrder {
	order := createTestOrder(t, decimal.NewFromInt(300), decimal.NewFromInt(10))

	subOrders, err := Decompose(order, []StoreItems{
		{StoreID: uuid.New(), ShippingFee: decimal.NewFromInt(10), Items: []ItemSpec{
			itemSpec("Widget", 2, 100),
			itemSpec("Gadget", 5, 20),
		}},
	})
	require.NoError(t, err)
	require.Len(t, subOrders, 1)
	return subOrders[0]
}

// Helper to walk a sub-order forward to the given status
func advanceSubOrder(t *testing.T, so *SellerSubOrder, target SubOrderStatus) {
	path := []SubOrderStatus{SubOrderStatusPaid, SubOrderStatusPreparing, SubOrderStatusShipped, SubOrderStatusDelivered}
	for _, status := range path {
		require.NoError(t, so.Transition(status, "system", ShippingInfo{}))
		if status == target {
			return
		}
	}
}

func TestSubOrderTransition(t *testing.T) {
	t.Run("walks the linear fulfillment path", func(t *testing.T) {
		so := createTestSubOrder(t)

		require.NoError(t, so.Transition(SubOrderStatusPaid, "system", ShippingInfo{}))
		assert.True(t, so.PaymentCaptured)
		require.NoError(t, so.Transition(SubOrderStatusPreparing, "seller", ShippingInfo{}))
		require.NoError(t, so.Transition(SubOrderStatusShipped, "seller", ShippingInfo{Carrier: "UPS", TrackingNumber: "1Z999"}))
		require.NoError(t, so.Transition(SubOrderStatusDelivered, "carrier", ShippingInfo{}))

		assert.Equal(t, SubOrderStatusDelivered, so.Status)
		require.NotNil(t, so.DeliveredAt)
		require.Len(t, so.StatusHistory, 4)
		assert.Equal(t, SubOrderStatusShipped, so.StatusHistory[3].PreviousStatus)
		assert.Equal(t, "UPS", so.StatusHistory[2].Carrier)
	})

	t.Run("rejects skipping a status", func(t *testing.T) {
		so := createTestSubOrder(t)

		err := so.Transition(SubOrderStatusShipped, "seller", ShippingInfo{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot transition sub-order from NEW to SHIPPED")
		assert.Equal(t, SubOrderStatusNew, so.Status)
		assert.Empty(t, so.StatusHistory)
	})

	t.Run("rejects moving backward", func(t *testing.T) {
		so := createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusShipped)

		err := so.Transition(SubOrderStatusPreparing, "seller", ShippingInfo{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot transition sub-order")
	})

	t.Run("cancel allowed from any non-terminal status", func(t *testing.T) {
		for _, status := range []SubOrderStatus{SubOrderStatusNew, SubOrderStatusPaid, SubOrderStatusPreparing, SubOrderStatusShipped} {
			so := createTestSubOrder(t)
			if status != SubOrderStatusNew {
				advanceSubOrder(t, so, status)
			}
			require.NoError(t, so.Transition(SubOrderStatusCancelled, "admin", ShippingInfo{Note: "out of stock"}))
			assert.Equal(t, SubOrderStatusCancelled, so.Status)
		}
	})

	t.Run("cancel rejected after delivery", func(t *testing.T) {
		so := createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusDelivered)

		assert.Error(t, so.Transition(SubOrderStatusCancelled, "admin", ShippingInfo{}))
	})

	t.Run("refund allowed from delivered", func(t *testing.T) {
		so := createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusDelivered)

		require.NoError(t, so.MarkRefunded("system"))
		assert.Equal(t, SubOrderStatusRefunded, so.Status)
	})

	t.Run("refund from cancelled requires captured payment", func(t *testing.T) {
		// Cancelled before payment: nothing to refund
		so := createTestSubOrder(t)
		require.NoError(t, so.Transition(SubOrderStatusCancelled, "admin", ShippingInfo{}))
		err := so.MarkRefunded("system")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no captured payment")

		// Cancelled after payment: refund proceeds
		so = createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusPaid)
		require.NoError(t, so.Transition(SubOrderStatusCancelled, "admin", ShippingInfo{}))
		require.NoError(t, so.MarkRefunded("system"))
		assert.Equal(t, SubOrderStatusRefunded, so.Status)
	})

	t.Run("refund rejected before delivery", func(t *testing.T) {
		so := createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusShipped)

		assert.Error(t, so.Transition(SubOrderStatusRefunded, "system", ShippingInfo{}))
	})

	t.Run("raises status changed events", func(t *testing.T) {
		so := createTestSubOrder(t)
		so.ClearDomainEvents()

		require.NoError(t, so.Transition(SubOrderStatusPaid, "system", ShippingInfo{}))

		events := so.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSubOrderStatusChanged, events[0].EventType())
	})
}

func TestSubOrderOverrideTransition(t *testing.T) {
	t.Run("may skip forward along the path", func(t *testing.T) {
		so := createTestSubOrder(t)

		require.NoError(t, so.OverrideTransition(SubOrderStatusShipped, "admin", ShippingInfo{Note: "manual correction"}))
		assert.Equal(t, SubOrderStatusShipped, so.Status)
		require.Len(t, so.StatusHistory, 1)
		assert.Equal(t, SubOrderStatusNew, so.StatusHistory[0].PreviousStatus)
	})

	t.Run("rejects backward override", func(t *testing.T) {
		so := createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusShipped)

		err := so.OverrideTransition(SubOrderStatusPaid, "admin", ShippingInfo{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "monotonic")
	})

	t.Run("rejects override to the current status", func(t *testing.T) {
		so := createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusPaid)

		assert.Error(t, so.OverrideTransition(SubOrderStatusPaid, "admin", ShippingInfo{}))
	})

	t.Run("may cancel from any non-terminal status", func(t *testing.T) {
		so := createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusShipped)

		require.NoError(t, so.OverrideTransition(SubOrderStatusCancelled, "admin", ShippingInfo{}))
		assert.Equal(t, SubOrderStatusCancelled, so.Status)
	})

	t.Run("cannot override out of a terminal status", func(t *testing.T) {
		so := createTestSubOrder(t)
		advanceSubOrder(t, so, SubOrderStatusDelivered)

		assert.Error(t, so.OverrideTransition(SubOrderStatusCancelled, "admin", ShippingInfo{}))
	})
}

func TestSubOrderItemTransition(t *testing.T) {
	t.Run("item walks its own coarser path", func(t *testing.T) {
		so := createTestSubOrder(t)
		itemID := so.Items[0].ID

		require.NoError(t, so.TransitionItem(itemID, ItemStatusPreparing))
		require.NoError(t, so.TransitionItem(itemID, ItemStatusShipped))
		require.NoError(t, so.TransitionItem(itemID, ItemStatusDelivered))
		assert.Equal(t, ItemStatusDelivered, so.GetItem(itemID).Status)

		// Sibling item is untouched
		assert.Equal(t, ItemStatusNew, so.Items[1].Status)
	})

	t.Run("rejects skipping an item status", func(t *testing.T) {
		so := createTestSubOrder(t)

		err := so.TransitionItem(so.Items[0].ID, ItemStatusDelivered)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot transition item")
	})

	t.Run("fails for unknown item", func(t *testing.T) {
		so := createTestSubOrder(t)

		err := so.TransitionItem(uuid.New(), ItemStatusPreparing)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
