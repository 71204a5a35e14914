package commands_test

import (
	"errors"
	"testing"

	"orderbot/internal/core/application/conversation"
	"orderbot/internal/core/application/usecases/commands"
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/session"
	"orderbot/internal/pkg/errs"
	"orderbot/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type inboundMocks struct {
	factory   *MockConversationUoWFactory
	uow       *MockUoW
	sessions  *MockSessionRepository
	orders    *MockOrderRepository
	messenger *MockMessenger
	effects   *MockEffects
	handler   commands.HandleInboundEventCommandHandler
}

func newInboundMocks(t *testing.T) inboundMocks {
	m := inboundMocks{
		factory:   new(MockConversationUoWFactory),
		uow:       new(MockUoW),
		sessions:  new(MockSessionRepository),
		orders:    new(MockOrderRepository),
		messenger: new(MockMessenger),
		effects:   new(MockEffects),
	}
	m.handler = commands.NewHandleInboundEventCommandHandler(
		m.factory, newMachine(t, newCatalog(t)), keylock.New(), m.messenger, m.effects, clock, discardLogger())
	return m
}

func (m inboundMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.messenger.AssertExpectations(t)
	m.effects.AssertExpectations(t)
}

func textCommand(t *testing.T, body string) commands.HandleInboundEventCommand {
	cmd, err := commands.NewHandleInboundEventCommand(chat.InboundEvent{Phone: testPhone, Type: chat.EventText, Text: body})
	require.NoError(t, err)
	return cmd
}

func TestHandleInboundEventCommandHandler_Handle_NewSession(t *testing.T) {
	ctx := t.Context()
	m := newInboundMocks(t)

	firstTurn := mock.MatchedBy(func(o conversation.Outcome) bool {
		return o.Session.Step() == session.StepDateSelection && len(o.Messages) == 1 && o.NewOrder == nil
	})

	mock.InOrder(
		m.factory.On("Create").Return(m.uow).Once(),
		m.uow.On("Begin", ctx).Return(nil).Once(),
		m.uow.On("SessionRepository").Return(m.sessions).Once(),
		m.sessions.On("Get", ctx, testPhone).Return(nil, errs.NewObjectNotFoundError("phone", testPhone.String())).Once(),
		m.sessions.On("Save", ctx, mock.AnythingOfType("*session.Session")).Return(nil).Once(),
		m.uow.On("Commit", ctx).Return(nil).Once(),
		m.uow.On("Rollback", ctx).Return(nil).Once(),
		m.effects.On("Dispatch", ctx, firstTurn).Return().Once(),
	)

	err := m.handler.Handle(ctx, textCommand(t, "hello"))

	require.NoError(t, err)
	m.assertExpectations(t)
	m.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleInboundEventCommandHandler_Handle_RetriesOnceOnConflict(t *testing.T) {
	ctx := t.Context()
	m := newInboundMocks(t)

	m.factory.On("Create").Return(m.uow).Twice()
	m.uow.On("Begin", ctx).Return(nil).Twice()
	m.uow.On("SessionRepository").Return(m.sessions).Twice()
	m.uow.On("Rollback", ctx).Return(nil).Twice()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.sessions.On("Get", ctx, testPhone).Return(nil, errs.NewObjectNotFoundError("phone", testPhone.String())).Twice()
	m.sessions.On("Save", ctx, mock.Anything).Return(errs.NewVersionIsInvalidError("session")).Once()
	m.sessions.On("Save", ctx, mock.Anything).Return(nil).Once()
	m.effects.On("Dispatch", ctx, mock.Anything).Return().Once()

	err := m.handler.Handle(ctx, textCommand(t, "hello"))

	require.NoError(t, err)
	m.assertExpectations(t)
}

func TestHandleInboundEventCommandHandler_Handle_SecondConflictSendsTransientMessage(t *testing.T) {
	ctx := t.Context()
	m := newInboundMocks(t)

	m.factory.On("Create").Return(m.uow).Twice()
	m.uow.On("Begin", ctx).Return(nil).Twice()
	m.uow.On("SessionRepository").Return(m.sessions).Twice()
	m.uow.On("Rollback", ctx).Return(nil).Twice()
	m.sessions.On("Get", ctx, testPhone).Return(nil, errs.NewObjectNotFoundError("phone", testPhone.String())).Twice()
	m.sessions.On("Save", ctx, mock.Anything).Return(errs.NewVersionIsInvalidError("session")).Twice()
	m.messenger.On("Send", ctx, chat.Text(testPhone, conversation.TransientFailureText)).Return(nil).Once()

	err := m.handler.Handle(ctx, textCommand(t, "hello"))

	require.ErrorIs(t, err, errs.ErrConcurrencyConflict)
	m.assertExpectations(t)
	m.uow.AssertNotCalled(t, "Commit", mock.Anything)
	m.effects.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestHandleInboundEventCommandHandler_Handle_FatalErrorApologizes(t *testing.T) {
	ctx := t.Context()
	m := newInboundMocks(t)
	dbErr := errors.New("connection reset")

	mock.InOrder(
		m.factory.On("Create").Return(m.uow).Once(),
		m.uow.On("Begin", ctx).Return(nil).Once(),
		m.uow.On("SessionRepository").Return(m.sessions).Once(),
		m.sessions.On("Get", ctx, testPhone).Return(nil, dbErr).Once(),
		m.uow.On("Rollback", ctx).Return(nil).Once(),
		m.messenger.On("Send", ctx, chat.Text(testPhone, conversation.ApologyText)).Return(nil).Once(),
	)

	err := m.handler.Handle(ctx, textCommand(t, "hello"))

	require.ErrorIs(t, err, dbErr)
	m.assertExpectations(t)
	m.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.effects.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestHandleInboundEventCommandHandler_Handle_PanicApologizes(t *testing.T) {
	ctx := t.Context()
	m := newInboundMocks(t)

	m.factory.On("Create").Return(m.uow).Once()
	m.uow.On("Begin", ctx).Return(nil).Once()
	m.uow.On("SessionRepository").Return(m.sessions).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()
	m.sessions.On("Get", ctx, testPhone).Run(func(mock.Arguments) { panic("boom") }).Once()
	m.messenger.On("Send", ctx, chat.Text(testPhone, conversation.ApologyText)).Return(nil).Once()

	err := m.handler.Handle(ctx, textCommand(t, "hello"))

	require.ErrorIs(t, err, commands.ErrTurnPanicked)
	m.assertExpectations(t)
}

func TestHandleInboundEventCommandHandler_Handle_ZeroCommand(t *testing.T) {
	m := newInboundMocks(t)

	err := m.handler.Handle(t.Context(), commands.HandleInboundEventCommand{})

	require.ErrorIs(t, err, commands.ErrHandleInboundEventCommandIsNotConstructed)
	assert.Empty(t, m.factory.Calls)
}

func TestHandleInboundEventCommandHandler_Handle_IgnoresRedeliveredMessage(t *testing.T) {
	ctx := t.Context()
	m := newInboundMocks(t)

	m.factory.On("Create").Return(m.uow).Once()
	m.uow.On("Begin", ctx).Return(nil).Once()
	m.uow.On("SessionRepository").Return(m.sessions).Once()
	m.sessions.On("Get", ctx, testPhone).Return(nil, errs.NewObjectNotFoundError("phone", testPhone.String())).Once()
	m.sessions.On("Save", ctx, mock.Anything).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()
	m.effects.On("Dispatch", ctx, mock.Anything).Return().Once()

	cmd, err := commands.NewHandleInboundEventCommand(chat.InboundEvent{
		MessageID: "wamid.1", Phone: testPhone, Type: chat.EventText, Text: "hello",
	})
	require.NoError(t, err)

	require.NoError(t, m.handler.Handle(ctx, cmd))
	require.NoError(t, m.handler.Handle(ctx, cmd))

	m.assertExpectations(t)
}

func TestHandleInboundEventCommandHandler_Handle_FailedTurnIsNotRemembered(t *testing.T) {
	ctx := t.Context()
	m := newInboundMocks(t)
	dbErr := errors.New("connection reset")

	m.factory.On("Create").Return(m.uow).Twice()
	m.uow.On("Begin", ctx).Return(nil).Twice()
	m.uow.On("SessionRepository").Return(m.sessions).Twice()
	m.uow.On("Rollback", ctx).Return(nil).Twice()
	m.sessions.On("Get", ctx, testPhone).Return(nil, dbErr).Once()
	m.sessions.On("Get", ctx, testPhone).Return(nil, errs.NewObjectNotFoundError("phone", testPhone.String())).Once()
	m.sessions.On("Save", ctx, mock.Anything).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.messenger.On("Send", ctx, chat.Text(testPhone, conversation.ApologyText)).Return(nil).Once()
	m.effects.On("Dispatch", ctx, mock.Anything).Return().Once()

	cmd, err := commands.NewHandleInboundEventCommand(chat.InboundEvent{
		MessageID: "wamid.2", Phone: testPhone, Type: chat.EventText, Text: "hello",
	})
	require.NoError(t, err)

	require.ErrorIs(t, m.handler.Handle(ctx, cmd), dbErr)
	require.NoError(t, m.handler.Handle(ctx, cmd))

	m.assertExpectations(t)
}
