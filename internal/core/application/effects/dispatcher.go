// Package effects delivers what a committed conversation turn produced:
// outbound messages in order, then the follow-ups that talk to external
// services (payment QR rendering, screenshot upload, spreadsheet export).
//
// Nothing here rolls back a turn. A failing integration flags the order
// for manual follow-up and the customer gets a fallback message instead.
package effects

import (
	"bytes"
	"context"
	"log/slog"

	"orderbot/internal/core/application/conversation"
	"orderbot/internal/core/application/usecases/commands"
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/core/ports"
)

const (
	reasonPaymentQR  = "payment QR rendering failed"
	reasonScreenshot = "payment screenshot upload failed"
	reasonSheet      = "sheet export failed"

	screenshotNamePrefix = "payment_"
)

// Dispatcher implements commands.EffectsDispatcher.
type Dispatcher struct {
	messenger  ports.Messenger
	media      ports.MediaFetcher
	artifacts  ports.ArtifactStore
	qr         ports.QRRenderer
	sheets     ports.SheetExporter
	rows       commands.SheetRowBuilder
	uowFactory commands.OrderUoWFactory
	upiID      string
	logger     *slog.Logger
}

// Dependencies groups the collaborators of a Dispatcher.
type Dependencies struct {
	Messenger  ports.Messenger
	Media      ports.MediaFetcher
	Artifacts  ports.ArtifactStore
	QR         ports.QRRenderer
	Sheets     ports.SheetExporter
	Rows       commands.SheetRowBuilder
	UoWFactory commands.OrderUoWFactory
	// UPIID is quoted in the fallback message when no QR code can be sent.
	UPIID  string
	Logger *slog.Logger
}

// NewDispatcher creates a Dispatcher from its dependencies.
func NewDispatcher(deps Dependencies) *Dispatcher {
	return &Dispatcher{
		messenger:  deps.Messenger,
		media:      deps.Media,
		artifacts:  deps.Artifacts,
		qr:         deps.QR,
		sheets:     deps.Sheets,
		rows:       deps.Rows,
		uowFactory: deps.UoWFactory,
		upiID:      deps.UPIID,
		logger:     deps.Logger.With("component", "effects"),
	}
}

// Dispatch sends outcome's messages in order and then runs its follow-ups.
// After the first failed send, later messages of the same outcome are
// dropped; follow-ups still update the order.
func (d *Dispatcher) Dispatch(ctx context.Context, outcome conversation.Outcome) {
	r := &run{d: d}
	for _, msg := range outcome.Messages {
		r.send(ctx, msg)
	}
	for _, f := range outcome.FollowUps {
		switch f.Kind {
		case conversation.FollowUpPaymentQR:
			r.paymentQR(ctx, f)
		case conversation.FollowUpScreenshot:
			r.screenshot(ctx, f)
		default:
			d.logger.Warn("unknown follow-up", "kind", f.Kind.String())
		}
	}
}

// run is one Dispatch call.
type run struct {
	d          *Dispatcher
	sendFailed bool
}

func (r *run) send(ctx context.Context, msg chat.OutboundMessage) {
	if r.sendFailed {
		r.d.logger.Warn("message dropped after earlier send failure", "message", msg.String())
		return
	}
	if err := r.d.messenger.Send(ctx, msg); err != nil {
		r.sendFailed = true
		r.d.logger.Error("failed to send message", "message", msg.String(), "error", err)
	}
}

func (r *run) paymentQR(ctx context.Context, f conversation.FollowUp) {
	o, err := r.d.load(ctx, f.OrderID)
	if err != nil {
		r.d.logger.Error("failed to load order for payment QR", "order_id", f.OrderID.String(), "error", err)
		return
	}

	url, err := r.d.qr.RenderPaymentQR(ctx, ports.PaymentIntent{OrderCode: o.Code(), Amount: o.Total()})
	if err != nil {
		r.d.logger.Error("failed to render payment QR", "order", o.Code().String(), "error", err)
		r.send(ctx, chat.Text(f.Phone, conversation.PaymentFallbackText(o, r.d.upiID)))
		o.FlagForFollowUp(reasonPaymentQR)
		r.d.save(ctx, o)
		return
	}

	r.send(ctx, chat.Image(f.Phone, url, conversation.PaymentQRCaption(o)))
}

func (r *run) screenshot(ctx context.Context, f conversation.FollowUp) {
	o, err := r.d.load(ctx, f.OrderID)
	if err != nil {
		r.d.logger.Error("failed to load order for screenshot", "order_id", f.OrderID.String(), "error", err)
		r.send(ctx, chat.Text(f.Phone, conversation.ProcessingText))
		return
	}

	stored := true
	ref, err := r.d.storeScreenshot(ctx, o, f.Media)
	if err == nil {
		err = o.AttachScreenshot(ref)
	}
	if err != nil {
		stored = false
		r.d.logger.Error("failed to store payment screenshot", "order", o.Code().String(), "error", err)
		o.FlagForFollowUp(reasonScreenshot)
	}

	if err := r.d.sheets.UpsertOrder(ctx, r.d.rows.Build(o)); err != nil {
		r.d.logger.Error("failed to export order", "order", o.Code().String(), "error", err)
		o.MarkSheetSyncPending()
		o.FlagForFollowUp(reasonSheet)
	}

	r.d.save(ctx, o)

	if stored {
		r.send(ctx, chat.Text(f.Phone, conversation.ConfirmationText(o)))
		return
	}
	r.send(ctx, chat.Text(f.Phone, conversation.ProcessingText))
}

func (d *Dispatcher) storeScreenshot(ctx context.Context, o *order.Order, media chat.Media) (string, error) {
	content, err := d.media.FetchMedia(ctx, media.ID)
	if err != nil {
		return "", err
	}
	return d.artifacts.Put(ctx, screenshotNamePrefix+o.Code().String(), bytes.NewReader(content.Data))
}

func (d *Dispatcher) load(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	uow := d.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()
	return uow.OrderRepository().Get(ctx, id)
}

func (d *Dispatcher) save(ctx context.Context, o *order.Order) {
	uow := d.uowFactory.Create()
	err := uow.Begin(ctx)
	if err == nil {
		defer func() {
			_ = uow.Rollback(ctx)
		}()
		err = uow.OrderRepository().Update(ctx, o)
	}
	if err == nil {
		err = uow.Commit(ctx)
	}
	if err != nil {
		d.logger.Error("failed to save order follow-up state", "order", o.Code().String(), "error", err)
	}
}
