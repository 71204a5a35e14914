package commands_test

import (
	"errors"
	"strings"
	"testing"

	"orderbot/internal/core/application/usecases/commands"
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type verificationMocks struct {
	factory   *MockOrderUoWFactory
	uow       *MockUoW
	orders    *MockOrderRepository
	messenger *MockMessenger
	sheets    *MockSheetExporter
	handler   commands.ProcessVerificationCommandHandler
}

func newVerificationMocks() verificationMocks {
	m := verificationMocks{
		factory:   new(MockOrderUoWFactory),
		uow:       new(MockUoW),
		orders:    new(MockOrderRepository),
		messenger: new(MockMessenger),
		sheets:    new(MockSheetExporter),
	}
	m.handler = commands.NewProcessVerificationCommandHandler(m.factory, m.messenger, m.sheets, clock, discardLogger())
	return m
}

func (m verificationMocks) expectLoad(ctxArg any, o *order.Order, err error) {
	m.factory.On("Create").Return(m.uow).Once()
	m.uow.On("Begin", ctxArg).Return(nil).Once()
	m.uow.On("OrderRepository").Return(m.orders).Once()
	m.uow.On("Rollback", ctxArg).Return(nil).Once()
	if o == nil {
		m.orders.On("GetByToken", ctxArg, mock.Anything).Return(nil, err).Once()
		return
	}
	m.orders.On("GetByToken", ctxArg, o.VerificationToken()).Return(o, err).Once()
}

func verificationCommand(t *testing.T, o *order.Order, d order.Decision) commands.ProcessVerificationCommand {
	cmd, err := commands.NewProcessVerificationCommand(o.VerificationToken(), d)
	require.NoError(t, err)
	return cmd
}

func TestProcessVerificationCommandHandler_Handle_Verify(t *testing.T) {
	ctx := t.Context()
	m := newVerificationMocks()
	o := newPendingOrder(t)

	verified := mock.MatchedBy(func(o *order.Order) bool { return o.Status() == order.Verified })
	notified := mock.MatchedBy(func(msg chat.OutboundMessage) bool {
		return msg.To == testPhone && strings.Contains(msg.Body, "Payment Verified")
	})

	m.expectLoad(ctx, o, nil)
	m.orders.On("DecideIfPending", ctx, verified).Return(true, nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.messenger.On("Send", ctx, notified).Return(nil).Once()
	m.sheets.On("UpdateStatus", ctx, "EO250825ABCD", "Verified").Return(nil).Once()

	decided, err := m.handler.Handle(ctx, verificationCommand(t, o, order.DecisionVerify))

	require.NoError(t, err)
	assert.Equal(t, order.Verified, decided.Status())
	require.NotNil(t, decided.DecidedAt())
	assert.Equal(t, testNow, *decided.DecidedAt())
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.messenger.AssertExpectations(t)
	m.sheets.AssertExpectations(t)
}

func TestProcessVerificationCommandHandler_Handle_Conflicts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, m verificationMocks) *order.Order
	}{
		{
			name: "unknown token",
			setup: func(t *testing.T, m verificationMocks) *order.Order {
				o := newPendingOrder(t)
				m.expectLoad(mock.Anything, nil, errs.NewObjectNotFoundError("verification token", "x"))
				return o
			},
		},
		{
			name: "already decided",
			setup: func(t *testing.T, m verificationMocks) *order.Order {
				o := newPendingOrder(t)
				require.NoError(t, o.Decide(order.DecisionReject, testNow))
				m.expectLoad(mock.Anything, o, nil)
				return o
			},
		},
		{
			name: "lost race",
			setup: func(t *testing.T, m verificationMocks) *order.Order {
				o := newPendingOrder(t)
				m.expectLoad(mock.Anything, o, nil)
				m.orders.On("DecideIfPending", mock.Anything, mock.Anything).Return(false, nil).Once()
				return o
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newVerificationMocks()
			o := tt.setup(t, m)

			decided, err := m.handler.Handle(t.Context(), verificationCommand(t, o, order.DecisionVerify))

			require.ErrorIs(t, err, errs.ErrVerificationConflict)
			assert.Nil(t, decided)
			m.orders.AssertExpectations(t)
			m.uow.AssertNotCalled(t, "Commit", mock.Anything)
			m.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			m.sheets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProcessVerificationCommandHandler_Handle_SheetFailureMarksPending(t *testing.T) {
	ctx := t.Context()
	m := newVerificationMocks()
	o := newPendingOrder(t)

	m.expectLoad(ctx, o, nil)
	m.orders.On("DecideIfPending", ctx, mock.Anything).Return(true, nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.messenger.On("Send", ctx, mock.Anything).Return(errors.New("whatsapp down")).Once()
	m.sheets.On("UpdateStatus", ctx, "EO250825ABCD", "Rejected").Return(errors.New("quota exceeded")).Once()

	m.factory.On("Create").Return(m.uow).Once()
	m.uow.On("Begin", ctx).Return(nil).Once()
	m.uow.On("OrderRepository").Return(m.orders).Once()
	m.orders.On("Update", ctx, mock.MatchedBy(func(o *order.Order) bool { return o.SheetSyncPending() })).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	decided, err := m.handler.Handle(ctx, verificationCommand(t, o, order.DecisionReject))

	require.NoError(t, err, "notification and sheet failures never undo a decision")
	assert.Equal(t, order.Rejected, decided.Status())
	m.orders.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.sheets.AssertExpectations(t)
}

func TestProcessVerificationCommandHandler_Handle_CommitLostToConcurrentDecision(t *testing.T) {
	ctx := t.Context()
	m := newVerificationMocks()
	o := newPendingOrder(t)

	m.expectLoad(ctx, o, nil)
	m.orders.On("DecideIfPending", ctx, mock.Anything).Return(true, nil).Once()
	m.uow.On("Commit", ctx).Return(errs.NewVersionIsInvalidError("order status")).Once()

	decided, err := m.handler.Handle(ctx, verificationCommand(t, o, order.DecisionVerify))

	require.ErrorIs(t, err, errs.ErrVerificationConflict)
	assert.Nil(t, decided)
	m.uow.AssertExpectations(t)
	m.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	m.sheets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
