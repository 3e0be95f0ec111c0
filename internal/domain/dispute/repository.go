package dispute

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// CaseRepository defines the interface for case persistence
type CaseRepository interface {
	// FindByID finds a case by ID, items/history/messages included
	FindByID(ctx context.Context, id uuid.UUID) (*Case, error)

	// FindByCaseNumber finds a case by its case number
	FindByCaseNumber(ctx context.Context, caseNumber string) (*Case, error)

	// FindBySubOrder finds all cases raised against a sub-order
	FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]Case, error)

	// FindByBuyer finds cases opened by a buyer
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]Case, error)

	// FindByStore finds cases against a store
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Case, error)

	// FindByStoreAndRange finds cases against a store created inside [from, to)
	FindByStoreAndRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]Case, error)

	// FindOpenItemIDs returns, out of the given sub-order item IDs, those
	// already covered by an open case (Requested, UnderReview or Approved).
	// This is the live index behind the item-exclusivity invariant.
	FindOpenItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]uuid.UUID, error)

	// Save creates or updates a case
	Save(ctx context.Context, c *Case) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, c *Case) error

	// GenerateCaseNumber generates the next unique case number
	GenerateCaseNumber(ctx context.Context) (string, error)
}
