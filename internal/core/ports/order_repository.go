package ports

import (
	"context"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order. Code and verification token must be unique.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists screenshot, follow-up and sheet-sync changes of an existing order.
	// It never writes the status; decisions go through DecideIfPending. A pending
	// sheet sync is raised but never cleared by Update.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByCode retrieves an order by its customer-facing code.
	GetByCode(ctx context.Context, code order.Code) (*order.Order, error)

	// GetByToken retrieves an order by its verification token.
	GetByToken(ctx context.Context, token kernel.UUID) (*order.Order, error)

	// DecideIfPending writes the decided status of aggregate only if the stored
	// order is still pending. It reports whether the row changed; false means
	// another decision won the race.
	DecideIfPending(ctx context.Context, aggregate *order.Order) (bool, error)

	// ClearSheetSyncPending clears the pending sheet sync only if the stored
	// status equals the aggregate's. It reports whether the flag was cleared;
	// false means the order was decided after the exported snapshot was read.
	ClearSheetSyncPending(ctx context.Context, aggregate *order.Order) (bool, error)

	// GetSheetSyncPending returns up to limit orders whose spreadsheet row is stale,
	// oldest first.
	GetSheetSyncPending(ctx context.Context, limit int) ([]*order.Order, error)
}
