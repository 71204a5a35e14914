package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"orderbot/internal/core/ports"
	"orderbot/internal/pkg/errs"
)

// SyncSheetCommandHandler rewrites the full spreadsheet row of every order
// flagged sheet_sync_pending and clears the flag once the write succeeds.
// Orders are processed independently; one failing row does not stop the batch.
type SyncSheetCommandHandler struct {
	uowFactory OrderUoWFactory
	sheets     ports.SheetExporter
	rows       SheetRowBuilder
	logger     *slog.Logger
}

// NewSyncSheetCommandHandler creates a handler re-exporting orders with a pending sheet sync.
func NewSyncSheetCommandHandler(
	uowFactory OrderUoWFactory,
	sheets ports.SheetExporter,
	rows SheetRowBuilder,
	logger *slog.Logger,
) SyncSheetCommandHandler {
	return SyncSheetCommandHandler{
		uowFactory: uowFactory,
		sheets:     sheets,
		rows:       rows,
		logger:     logger.With("component", "sheet_sync"),
	}
}

// Handle processes the command and reports how many orders were synced.
// The returned error joins the failures of individual orders.
func (h SyncSheetCommandHandler) Handle(ctx context.Context, command SyncSheetCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	pending, err := repo.GetSheetSyncPending(ctx, command.BatchSize())
	if err != nil {
		return 0, err
	}

	var (
		synced   int
		failures []error
	)
	for _, o := range pending {
		if err := h.sheets.UpsertOrder(ctx, h.rows.Build(o)); err != nil {
			failures = append(failures, errs.NewIntegrationFailureError("sheets",
				fmt.Errorf("order %s: %w", o.Code(), err)))
			continue
		}
		cleared, err := repo.ClearSheetSyncPending(ctx, o)
		if err != nil {
			failures = append(failures, fmt.Errorf("order %s: %w", o.Code(), err))
			continue
		}
		if !cleared {
			h.logger.Info("order decided while exporting, kept for next sync", "order", o.Code().String())
			continue
		}
		o.MarkSheetSynced()
		synced++
	}

	if err := uow.Commit(ctx); err != nil {
		return 0, err
	}

	if synced > 0 || len(failures) > 0 {
		h.logger.Info("sheet sync finished", "synced", synced, "failed", len(failures))
	}
	return synced, errors.Join(failures...)
}
