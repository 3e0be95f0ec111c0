package dispute

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/sla"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCaseRepository is a mock implementation of CaseRepository
type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispute.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.Case), args.Error(1)
}

func (m *MockCaseRepository) FindByCaseNumber(ctx context.Context, caseNumber string) (*dispute.Case, error) {
	args := m.Called(ctx, caseNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.Case), args.Error(1)
}

func (m *MockCaseRepository) FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]dispute.Case, error) {
	args := m.Called(ctx, subOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispute.Case), args.Error(1)
}

func (m *MockCaseRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]dispute.Case, error) {
	args := m.Called(ctx, buyerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispute.Case), args.Error(1)
}

func (m *MockCaseRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]dispute.Case, error) {
	args := m.Called(ctx, storeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispute.Case), args.Error(1)
}

func (m *MockCaseRepository) FindByStoreAndRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]dispute.Case, error) {
	args := m.Called(ctx, storeID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispute.Case), args.Error(1)
}

func (m *MockCaseRepository) FindOpenItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCaseRepository) Save(ctx context.Context, c *dispute.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) SaveWithLock(ctx context.Context, c *dispute.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) GenerateCaseNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockSubOrderRepository is a mock implementation of SubOrderRepository
type MockSubOrderRepository struct {
	mock.Mock
}

func (m *MockSubOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.SellerSubOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.SellerSubOrder), args.Error(1)
}

func (m *MockSubOrderRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]fulfillment.SellerSubOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.SellerSubOrder), args.Error(1)
}

func (m *MockSubOrderRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]fulfillment.SellerSubOrder, error) {
	args := m.Called(ctx, storeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.SellerSubOrder), args.Error(1)
}

func (m *MockSubOrderRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) (*fulfillment.SellerSubOrder, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.SellerSubOrder), args.Error(1)
}

func (m *MockSubOrderRepository) Save(ctx context.Context, so *fulfillment.SellerSubOrder) error {
	args := m.Called(ctx, so)
	return args.Error(0)
}

func (m *MockSubOrderRepository) SaveWithLock(ctx context.Context, so *fulfillment.SellerSubOrder) error {
	args := m.Called(ctx, so)
	return args.Error(0)
}

func (m *MockSubOrderRepository) GetShippingHistory(ctx context.Context, subOrderID uuid.UUID) ([]fulfillment.ShippingStatusEntry, error) {
	args := m.Called(ctx, subOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.ShippingStatusEntry), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*fulfillment.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	args := m.Called(ctx, buyerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveDecomposition(ctx context.Context, order *fulfillment.Order, subOrders []*fulfillment.SellerSubOrder) error {
	args := m.Called(ctx, order, subOrders)
	return args.Error(0)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockConfigurationRepository is a mock implementation of ConfigurationRepository
type MockConfigurationRepository struct {
	mock.Mock
}

func (m *MockConfigurationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sla.Configuration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sla.Configuration), args.Error(1)
}

func (m *MockConfigurationRepository) FindAllActive(ctx context.Context, now time.Time) ([]sla.Configuration, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sla.Configuration), args.Error(1)
}

func (m *MockConfigurationRepository) Save(ctx context.Context, c *sla.Configuration) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockConfigurationRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTrackingRepository is a mock implementation of TrackingRepository
type MockTrackingRepository struct {
	mock.Mock
}

func (m *MockTrackingRepository) FindByCase(ctx context.Context, caseID uuid.UUID) (*sla.TrackingRecord, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sla.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepository) FindByStoreAndRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]sla.TrackingRecord, error) {
	args := m.Called(ctx, storeID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sla.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepository) FindUnresolved(ctx context.Context, afterID uuid.UUID, limit int) ([]sla.TrackingRecord, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sla.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepository) FindBreachedUnresolved(ctx context.Context, storeID *uuid.UUID, limit int) ([]sla.TrackingRecord, error) {
	args := m.Called(ctx, storeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sla.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepository) Save(ctx context.Context, r *sla.TrackingRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockTrackingRepository) SaveWithLock(ctx context.Context, r *sla.TrackingRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// Test helpers

func deliveredSubOrder(t *testing.T, buyerID uuid.UUID) (*fulfillment.Order, *fulfillment.SellerSubOrder) {
	order, err := fulfillment.NewOrder("ORD-20260301-001", buyerID,
		decimal.NewFromInt(300), decimal.NewFromInt(10), fulfillment.DeliveryAddress{})
	require.NoError(t, err)

	subOrders, err := fulfillment.Decompose(order, []fulfillment.StoreItems{
		{StoreID: uuid.New(), ShippingFee: decimal.NewFromInt(10), Items: []fulfillment.ItemSpec{
			{ProductID: uuid.New(), ProductName: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
			{ProductID: uuid.New(), ProductName: "Gadget", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(20)},
		}},
	})
	require.NoError(t, err)
	so := subOrders[0]
	for _, status := range []fulfillment.SubOrderStatus{
		fulfillment.SubOrderStatusPaid, fulfillment.SubOrderStatusPreparing,
		fulfillment.SubOrderStatusShipped, fulfillment.SubOrderStatusDelivered,
	} {
		require.NoError(t, so.Transition(status, "system", fulfillment.ShippingInfo{}))
	}
	return order, so
}

type caseServiceMocks struct {
	caseRepo     *MockCaseRepository
	subOrderRepo *MockSubOrderRepository
	orderRepo    *MockOrderRepository
	configRepo   *MockConfigurationRepository
	trackingRepo *MockTrackingRepository
}

func newCaseService() (*CaseService, *caseServiceMocks) {
	mocks := &caseServiceMocks{
		caseRepo:     new(MockCaseRepository),
		subOrderRepo: new(MockSubOrderRepository),
		orderRepo:    new(MockOrderRepository),
		configRepo:   new(MockConfigurationRepository),
		trackingRepo: new(MockTrackingRepository),
	}
	service := NewCaseService(mocks.caseRepo, mocks.subOrderRepo, mocks.orderRepo,
		mocks.configRepo, mocks.trackingRepo, 14)
	return service, mocks
}

func TestCaseServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a case with snapshotted SLA targets", func(t *testing.T) {
		service, mocks := newCaseService()
		buyerID := uuid.New()
		order, so := deliveredSubOrder(t, buyerID)

		config, err := sla.NewConfiguration("default", nil, nil, 24, 72, 100, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		mocks.subOrderRepo.On("FindByID", ctx, so.ID).Return(so, nil)
		mocks.orderRepo.On("FindByID", ctx, so.OrderID).Return(order, nil)
		mocks.caseRepo.On("FindOpenItemIDs", ctx, mock.Anything).Return([]uuid.UUID{}, nil)
		mocks.caseRepo.On("GenerateCaseNumber", ctx).Return("CASE-20260301-001", nil)
		mocks.configRepo.On("FindAllActive", ctx, mock.Anything).Return([]sla.Configuration{*config}, nil)
		mocks.caseRepo.On("Save", ctx, mock.Anything).Return(nil)
		mocks.trackingRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := service.Create(ctx, CreateCaseRequest{
			SubOrderID: so.ID,
			BuyerID:    buyerID,
			Type:       "RETURN",
			Reason:     "damaged",
			Items: []ItemSelectionRequest{
				{SubOrderItemID: so.Items[0].ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "CASE-20260301-001", resp.CaseNumber)
		assert.Equal(t, "REQUESTED", resp.Status)
		require.NotNil(t, resp.Sla)
		assert.Equal(t, 24, *resp.Sla.ResponseTargetHours)
		assert.Equal(t, 72, *resp.Sla.ResolutionTargetHours)

		// A tracking record was paired with the case
		mocks.trackingRepo.AssertCalled(t, "Save", ctx, mock.Anything)
	})

	t.Run("rejects an item already held by an open case", func(t *testing.T) {
		service, mocks := newCaseService()
		buyerID := uuid.New()
		order, so := deliveredSubOrder(t, buyerID)
		heldItem := so.Items[0].ID

		mocks.subOrderRepo.On("FindByID", ctx, so.ID).Return(so, nil)
		mocks.orderRepo.On("FindByID", ctx, so.OrderID).Return(order, nil)
		mocks.caseRepo.On("FindOpenItemIDs", ctx, mock.Anything).Return([]uuid.UUID{heldItem}, nil)

		_, err := service.Create(ctx, CreateCaseRequest{
			SubOrderID: so.ID,
			BuyerID:    buyerID,
			Type:       "RETURN",
			Items: []ItemSelectionRequest{
				{SubOrderItemID: heldItem, Quantity: decimal.NewFromInt(1)},
				{SubOrderItemID: so.Items[1].ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "ITEM_ALREADY_IN_OPEN_CASE", derr.Code)

		mocks.caseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		mocks.trackingRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("opens without targets when no configuration applies", func(t *testing.T) {
		service, mocks := newCaseService()
		buyerID := uuid.New()
		order, so := deliveredSubOrder(t, buyerID)

		mocks.subOrderRepo.On("FindByID", ctx, so.ID).Return(so, nil)
		mocks.orderRepo.On("FindByID", ctx, so.OrderID).Return(order, nil)
		mocks.caseRepo.On("FindOpenItemIDs", ctx, mock.Anything).Return([]uuid.UUID{}, nil)
		mocks.caseRepo.On("GenerateCaseNumber", ctx).Return("CASE-20260301-002", nil)
		mocks.configRepo.On("FindAllActive", ctx, mock.Anything).Return([]sla.Configuration{}, nil)
		mocks.caseRepo.On("Save", ctx, mock.Anything).Return(nil)
		mocks.trackingRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := service.Create(ctx, CreateCaseRequest{
			SubOrderID: so.ID,
			BuyerID:    buyerID,
			Type:       "COMPLAINT",
			Items: []ItemSelectionRequest{
				{SubOrderItemID: so.Items[0].ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Sla)
		assert.Nil(t, resp.Sla.ResponseTargetHours)
		assert.Nil(t, resp.Sla.ResolutionTargetHours)
	})

	t.Run("rejects a case from a buyer who does not own the order", func(t *testing.T) {
		service, mocks := newCaseService()
		order, so := deliveredSubOrder(t, uuid.New())

		mocks.subOrderRepo.On("FindByID", ctx, so.ID).Return(so, nil)
		mocks.orderRepo.On("FindByID", ctx, so.OrderID).Return(order, nil)

		_, err := service.Create(ctx, CreateCaseRequest{
			SubOrderID: so.ID,
			BuyerID:    uuid.New(),
			Type:       "RETURN",
			Items: []ItemSelectionRequest{
				{SubOrderItemID: so.Items[0].ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "CASE_NOT_ALLOWED", derr.Code)
	})

	t.Run("rejects a case against an undelivered sub-order", func(t *testing.T) {
		service, mocks := newCaseService()
		buyerID := uuid.New()
		order, err := fulfillment.NewOrder("ORD-2", buyerID, decimal.NewFromInt(100), decimal.Zero, fulfillment.DeliveryAddress{})
		require.NoError(t, err)
		subOrders, err := fulfillment.Decompose(order, []fulfillment.StoreItems{
			{StoreID: uuid.New(), Items: []fulfillment.ItemSpec{
				{ProductID: uuid.New(), ProductName: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
			}},
		})
		require.NoError(t, err)
		so := subOrders[0]

		mocks.subOrderRepo.On("FindByID", ctx, so.ID).Return(so, nil)
		mocks.orderRepo.On("FindByID", ctx, so.OrderID).Return(order, nil)

		_, err = service.Create(ctx, CreateCaseRequest{
			SubOrderID: so.ID,
			BuyerID:    buyerID,
			Type:       "RETURN",
			Items: []ItemSelectionRequest{
				{SubOrderItemID: so.Items[0].ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "CASE_NOT_ALLOWED", derr.Code)
	})
}

func TestCaseServiceTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions a case and saves with lock", func(t *testing.T) {
		service, mocks := newCaseService()
		buyerID := uuid.New()
		_, so := deliveredSubOrder(t, buyerID)
		c, err := dispute.NewCase("CASE-1", so, buyerID, dispute.CaseTypeReturn, "damaged", []dispute.ItemSelection{
			{SubOrderItemID: so.Items[0].ID, Quantity: decimal.NewFromInt(1)},
		})
		require.NoError(t, err)

		mocks.caseRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		mocks.caseRepo.On("SaveWithLock", ctx, c).Return(nil)

		resp, err := service.Transition(ctx, c.ID, TransitionCaseRequest{
			Target: "UNDER_REVIEW",
			Actor:  "seller",
		})
		require.NoError(t, err)
		assert.Equal(t, "UNDER_REVIEW", resp.Status)
		assert.NotNil(t, resp.FirstResponseAt)
	})

	t.Run("rejects a transition from the wrong store", func(t *testing.T) {
		service, mocks := newCaseService()
		buyerID := uuid.New()
		_, so := deliveredSubOrder(t, buyerID)
		c, err := dispute.NewCase("CASE-1", so, buyerID, dispute.CaseTypeReturn, "damaged", []dispute.ItemSelection{
			{SubOrderItemID: so.Items[0].ID, Quantity: decimal.NewFromInt(1)},
		})
		require.NoError(t, err)

		mocks.caseRepo.On("FindByID", ctx, c.ID).Return(c, nil)

		otherStore := uuid.New()
		_, err = service.Transition(ctx, c.ID, TransitionCaseRequest{
			Target:  "UNDER_REVIEW",
			Actor:   "seller",
			StoreID: &otherStore,
		})
		assert.ErrorIs(t, err, shared.ErrNotAuthorized)
		mocks.caseRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
