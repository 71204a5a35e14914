package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderbot/internal/core/application/conversation"
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/session"
	"orderbot/internal/core/ports"
	"orderbot/internal/pkg/errs"
	"orderbot/internal/pkg/keylock"

	lru "github.com/hashicorp/golang-lru/v2"
)

// recentMessageIDs is how many handled message ids are remembered for dedupe.
const recentMessageIDs = 4096

// ErrTurnPanicked wraps a panic recovered while handling an inbound event.
var ErrTurnPanicked = errors.New("conversation turn panicked")

// EffectsDispatcher delivers the messages and side effects of a committed turn.
type EffectsDispatcher interface {
	Dispatch(ctx context.Context, outcome conversation.Outcome)
}

// HandleInboundEventCommandHandler runs one conversation turn per inbound event.
//
// Turns of the same phone are serialized with a keyed lock. The session save
// and any order created by the turn are committed together; a lost optimistic
// race is retried once and then answered with a transient-failure message.
// Fatal errors and panics are answered with an apology and nothing is saved.
// Outbound messages and follow-ups are dispatched only after commit.
// A message id that was already handled is ignored, so a redelivered
// webhook does not advance the dialogue twice.
//
// Example:
//
//	handler := NewHandleInboundEventCommandHandler(uowFactory, machine, locks, messenger, dispatcher, time.Now, logger)
//	cmd, _ := NewHandleInboundEventCommand(event)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    logger.Error("turn failed", "error", err)
//	}
type HandleInboundEventCommandHandler struct {
	uowFactory ConversationUoWFactory
	machine    *conversation.StateMachine
	locks      *keylock.KeyedMutex
	messenger  ports.Messenger
	effects    EffectsDispatcher
	handled    *lru.Cache[string, struct{}]
	now        func() time.Time
	logger     *slog.Logger
}

// NewHandleInboundEventCommandHandler creates the handler. A nil clock means time.Now.
func NewHandleInboundEventCommandHandler(
	uowFactory ConversationUoWFactory,
	machine *conversation.StateMachine,
	locks *keylock.KeyedMutex,
	messenger ports.Messenger,
	effects EffectsDispatcher,
	now func() time.Time,
	logger *slog.Logger,
) HandleInboundEventCommandHandler {
	if now == nil {
		now = time.Now
	}
	handled, err := lru.New[string, struct{}](recentMessageIDs)
	if err != nil {
		panic(fmt.Sprintf("message id cache: %v", err))
	}
	return HandleInboundEventCommandHandler{
		uowFactory: uowFactory,
		machine:    machine,
		locks:      locks,
		messenger:  messenger,
		effects:    effects,
		handled:    handled,
		now:        now,
		logger:     logger.With("component", "inbound_event_handler"),
	}
}

// Handle processes the command. Rejected input is not an error; the returned
// error reports a turn that was answered with the apology or transient message.
func (h HandleInboundEventCommandHandler) Handle(ctx context.Context, command HandleInboundEventCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	event := command.Event()
	unlock := h.locks.Lock(event.Phone.String())
	defer unlock()

	key := event.Phone.String() + "/" + event.MessageID
	if event.MessageID != "" && h.handled.Contains(key) {
		h.logger.Info("ignoring redelivered message", "phone", event.Phone.String(), "message_id", event.MessageID)
		return nil
	}

	outcome, err := h.turn(ctx, event)
	if errors.Is(err, errs.ErrConcurrencyConflict) {
		h.logger.Warn("session changed concurrently, retrying", "phone", event.Phone.String())
		outcome, err = h.turn(ctx, event)
	}

	switch {
	case errors.Is(err, errs.ErrConcurrencyConflict):
		h.reply(ctx, chat.Text(event.Phone, conversation.TransientFailureText))
		return err
	case err != nil:
		h.logger.Error("conversation turn failed",
			"phone", event.Phone.String(), "message_id", event.MessageID, "error", err)
		h.reply(ctx, chat.Text(event.Phone, conversation.ApologyText))
		return err
	}

	if event.MessageID != "" {
		h.handled.Add(key, struct{}{})
	}

	if outcome.Rejection != nil {
		h.logger.Debug("input rejected",
			"phone", event.Phone.String(), "step", outcome.Session.Step().String(), "reason", outcome.Rejection)
	}

	h.effects.Dispatch(ctx, outcome)
	return nil
}

func (h HandleInboundEventCommandHandler) turn(
	ctx context.Context,
	event chat.InboundEvent,
) (outcome conversation.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, err = conversation.Outcome{}, fmt.Errorf("%w: %v", ErrTurnPanicked, r)
		}
	}()

	now := h.now()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return conversation.Outcome{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	sessions := uow.SessionRepository()
	sess, err := sessions.Get(ctx, event.Phone)
	if errors.Is(err, errs.ErrObjectNotFound) {
		sess, err = session.NewSession(event.Phone, now)
	}
	if err != nil {
		return conversation.Outcome{}, err
	}

	outcome, err = h.machine.Handle(sess, event, now)
	if err != nil {
		return conversation.Outcome{}, err
	}

	if outcome.NewOrder != nil {
		if err = uow.OrderRepository().Add(ctx, outcome.NewOrder); err != nil {
			return conversation.Outcome{}, err
		}
	}

	if err = sessions.Save(ctx, outcome.Session); err != nil {
		return conversation.Outcome{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return conversation.Outcome{}, err
	}

	return outcome, nil
}

func (h HandleInboundEventCommandHandler) reply(ctx context.Context, msg chat.OutboundMessage) {
	if err := h.messenger.Send(ctx, msg); err != nil {
		h.logger.Error("failed to send reply", "to", msg.To.String(), "error", err)
	}
}
