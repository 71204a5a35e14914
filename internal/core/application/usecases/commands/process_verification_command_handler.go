package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderbot/internal/core/application/conversation"
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/core/ports"
	"orderbot/internal/pkg/errs"
)

// ProcessVerificationCommandHandler decides pending orders.
//
// The decision is written with a compare-and-set on the pending status, so of
// two concurrent decisions for one token exactly one succeeds. Every other
// outcome (unknown token, already decided, lost race) is an
// errs.VerificationConflictError with no mutation and no notification.
// After commit the customer is notified and the spreadsheet status is
// rewritten; both are best effort.
//
// Example:
//
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrVerificationConflict):
//	    // link already used
//	case err != nil:
//	    return err
//	}
type ProcessVerificationCommandHandler struct {
	uowFactory OrderUoWFactory
	messenger  ports.Messenger
	sheets     ports.SheetExporter
	now        func() time.Time
	logger     *slog.Logger
}

// NewProcessVerificationCommandHandler creates the handler. A nil clock means time.Now.
func NewProcessVerificationCommandHandler(
	uowFactory OrderUoWFactory,
	messenger ports.Messenger,
	sheets ports.SheetExporter,
	now func() time.Time,
	logger *slog.Logger,
) ProcessVerificationCommandHandler {
	if now == nil {
		now = time.Now
	}
	return ProcessVerificationCommandHandler{
		uowFactory: uowFactory,
		messenger:  messenger,
		sheets:     sheets,
		now:        now,
		logger:     logger.With("component", "verification_handler"),
	}
}

// Handle processes the command and returns the decided order.
func (h ProcessVerificationCommandHandler) Handle(
	ctx context.Context,
	command ProcessVerificationCommand,
) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	o, err := h.decide(ctx, command)
	if err != nil {
		return nil, err
	}

	h.logger.Info("order decided", "order", o.Code().String(), "status", o.Status().String())

	if err := h.messenger.Send(ctx, chat.Text(o.Phone(), conversation.VerificationResultText(o))); err != nil {
		h.logger.Error("failed to notify customer", "order", o.Code().String(), "error", err)
	}

	if err := h.sheets.UpdateStatus(ctx, o.Code().String(), o.Status().Label()); err != nil {
		h.logger.Error("failed to update sheet status", "order", o.Code().String(), "error", err)
		o.MarkSheetSyncPending()
		if err := h.save(ctx, o); err != nil {
			h.logger.Error("failed to mark sheet sync pending", "order", o.Code().String(), "error", err)
		}
	}

	return o, nil
}

func (h ProcessVerificationCommandHandler) decide(
	ctx context.Context,
	command ProcessVerificationCommand,
) (*order.Order, error) {
	token := command.Token().String()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()

	o, err := repo.GetByToken(ctx, command.Token())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, errs.NewVerificationConflictErrorWithCause(token, err)
	}
	if err != nil {
		return nil, err
	}

	if err = o.Decide(command.Decision(), h.now()); err != nil {
		return nil, errs.NewVerificationConflictErrorWithCause(token, err)
	}

	changed, err := repo.DecideIfPending(ctx, o)
	if err != nil {
		return nil, lostRace(token, err)
	}
	if !changed {
		return nil, errs.NewVerificationConflictError(token)
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, lostRace(token, err)
	}
	return o, nil
}

// lostRace reports a concurrent decision that committed first as a verification conflict.
func lostRace(token string, err error) error {
	if errors.Is(err, errs.ErrConcurrencyConflict) {
		return errs.NewVerificationConflictErrorWithCause(token, err)
	}
	return err
}

func (h ProcessVerificationCommandHandler) save(ctx context.Context, o *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
