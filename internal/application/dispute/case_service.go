package dispute

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/sla"
)

// CaseService handles case lifecycle business operations
type CaseService struct {
	caseRepo         dispute.CaseRepository
	subOrderRepo     fulfillment.SubOrderRepository
	orderRepo        fulfillment.OrderRepository
	configRepo       sla.ConfigurationRepository
	trackingRepo     sla.TrackingRepository
	eventPublisher   shared.EventPublisher
	returnWindowDays int
}

// NewCaseService creates a new CaseService
func NewCaseService(
	caseRepo dispute.CaseRepository,
	subOrderRepo fulfillment.SubOrderRepository,
	orderRepo fulfillment.OrderRepository,
	configRepo sla.ConfigurationRepository,
	trackingRepo sla.TrackingRepository,
	returnWindowDays int,
) *CaseService {
	return &CaseService{
		caseRepo:         caseRepo,
		subOrderRepo:     subOrderRepo,
		orderRepo:        orderRepo,
		configRepo:       configRepo,
		trackingRepo:     trackingRepo,
		returnWindowDays: returnWindowDays,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a case against a delivered sub-order. SLA targets are
// resolved and snapshotted onto a tracking record paired with the case.
func (s *CaseService) Create(ctx context.Context, req CreateCaseRequest) (*CaseResponse, error) {
	caseType := dispute.CaseType(req.Type)
	if !caseType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown case type: "+req.Type)
	}

	subOrder, err := s.subOrderRepo.FindByID(ctx, req.SubOrderID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, subOrder.OrderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if ok, reason := dispute.CanInitiateReturn(subOrder, order.BuyerID == req.BuyerID, now, s.returnWindowDays); !ok {
		return nil, shared.NewDomainError("CASE_NOT_ALLOWED", reason)
	}

	// Item exclusivity: an item held by another open case blocks the
	// whole request
	itemIDs := make([]uuid.UUID, len(req.Items))
	for i, sel := range req.Items {
		itemIDs[i] = sel.SubOrderItemID
	}
	held, err := s.caseRepo.FindOpenItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	if len(held) > 0 {
		return nil, shared.NewDomainError("ITEM_ALREADY_IN_OPEN_CASE",
			"Item "+held[0].String()+" is already covered by an open case")
	}

	caseNumber, err := s.caseRepo.GenerateCaseNumber(ctx)
	if err != nil {
		return nil, err
	}

	selections := make([]dispute.ItemSelection, len(req.Items))
	for i, sel := range req.Items {
		selections[i] = dispute.ItemSelection{
			SubOrderItemID: sel.SubOrderItemID,
			Quantity:       sel.Quantity,
		}
	}

	c, err := dispute.NewCase(caseNumber, subOrder, req.BuyerID, caseType, req.Reason, selections)
	if err != nil {
		return nil, err
	}
	if req.Category != "" {
		c.SetCategory(req.Category)
	}

	// Resolve and snapshot the SLA targets. A missing configuration is
	// soft: the case opens, breach computation stays deferred.
	configs, err := s.configRepo.FindAllActive(ctx, now)
	if err != nil {
		return nil, err
	}
	config := sla.ResolveConfiguration(configs, caseType, c.Category, now)

	tracking, err := sla.NewTrackingRecord(c.ID, c.StoreID, c.CreatedAt, config)
	if err != nil {
		return nil, err
	}

	if err := s.caseRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := s.trackingRepo.Save(ctx, tracking); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)

	response := ToCaseResponse(c)
	response.Sla = ToSlaInfoResponse(tracking)
	return &response, nil
}

// Transition moves a case along its lifecycle. Store-side transitions
// must come from the store the case is against.
func (s *CaseService) Transition(ctx context.Context, caseID uuid.UUID, req TransitionCaseRequest) (*CaseResponse, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if req.StoreID != nil && *req.StoreID != c.StoreID {
		return nil, shared.ErrNotAuthorized
	}

	if err := c.Transition(dispute.CaseStatus(req.Target), req.Actor, req.Note); err != nil {
		return nil, err
	}

	if err := s.caseRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)

	response := ToCaseResponse(c)
	return &response, nil
}

// AddMessage appends a thread message to an open case
func (s *CaseService) AddMessage(ctx context.Context, caseID uuid.UUID, req AddMessageRequest) (*CaseMessageResponse, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	msg, err := c.AddMessage(req.AuthorID, req.Author, req.Body)
	if err != nil {
		return nil, err
	}

	if err := s.caseRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	return &CaseMessageResponse{
		ID:        msg.ID,
		AuthorID:  msg.AuthorID,
		Author:    msg.Author,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
	}, nil
}

// GetByID retrieves a case with its SLA projection
func (s *CaseService) GetByID(ctx context.Context, caseID uuid.UUID) (*CaseResponse, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	response := ToCaseResponse(c)
	if tracking, err := s.trackingRepo.FindByCase(ctx, caseID); err == nil {
		response.Sla = ToSlaInfoResponse(tracking)
	}
	return &response, nil
}

// ListByBuyer retrieves a buyer's cases
func (s *CaseService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]CaseResponse, error) {
	cases, err := s.caseRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, err
	}
	return ToCaseListResponses(cases), nil
}

// ListByStore retrieves cases filed against a store
func (s *CaseService) ListByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]CaseResponse, error) {
	cases, err := s.caseRepo.FindByStore(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}
	return ToCaseListResponses(cases), nil
}

func (s *CaseService) publishEvents(ctx context.Context, c *dispute.Case) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range c.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	c.ClearDomainEvents()
}
