package commands_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orderbot/internal/core/application/conversation"
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/core/domain/services"
	"orderbot/internal/core/ports"

	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)
	testPhone = mustPhone("9110000000")
)

func clock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustPhone(s string) kernel.PhoneNumber {
	p, err := kernel.NewPhoneNumber(s)
	if err != nil {
		panic(err)
	}
	return p
}

func newCatalog(t *testing.T) *location.Catalog {
	t.Helper()
	catalog, err := location.NewCatalog([]string{"Vyttila", "Kakkanad", "Edappally"}, kernel.MoneyFromInt(50))
	require.NoError(t, err)
	return catalog
}

func newMachine(t *testing.T, catalog *location.Catalog) *conversation.StateMachine {
	t.Helper()
	calendar, err := services.NewDeliveryCalendar(services.DefaultLeadDays, services.DefaultWindowDays, time.UTC)
	require.NoError(t, err)
	pricer := services.NewOrderPricer(menu.DefaultMenu())
	ledger := services.NewOrderLedger(pricer, catalog, order.NewCodeGenerator(), nil)
	return conversation.NewStateMachine(catalog, pricer, calendar, ledger)
}

func newPendingOrder(t *testing.T) *order.Order {
	t.Helper()
	code, err := order.ParseCode("EO250825ABCD")
	require.NoError(t, err)
	d, err := kernel.ParseDate("2025-08-30")
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), code, kernel.NewUUID(), order.Details{
		Phone:           testPhone,
		DeliveryDate:    d,
		LocationID:      "vyttila_delivery",
		Items:           menu.Selection{1: 2, 3: 1},
		DeliveryAddress: "Flat 2B, Vyttila",
	}, kernel.MoneyFromInt(390), testNow)
	require.NoError(t, err)
	return o
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent []chat.OutboundMessage
}

func (m *recordingMessenger) Send(_ context.Context, msg chat.OutboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// drain returns and forgets the messages sent so far.
func (m *recordingMessenger) drain() []chat.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	sent := m.sent
	m.sent = nil
	return sent
}

type stubMedia struct{}

func (stubMedia) FetchMedia(_ context.Context, id string) (ports.MediaContent, error) {
	return ports.MediaContent{Data: []byte("png:" + id), MimeType: "image/png"}, nil
}

type recordingArtifacts struct {
	mu     sync.Mutex
	stored map[string][]byte
}

func (a *recordingArtifacts) Put(_ context.Context, name string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stored == nil {
		a.stored = make(map[string][]byte)
	}
	a.stored[name] = buf.Bytes()
	return "https://artifacts.test/" + name, nil
}

type stubQR struct{}

func (stubQR) RenderPaymentQR(_ context.Context, intent ports.PaymentIntent) (string, error) {
	return "https://artifacts.test/qr_" + intent.OrderCode.String(), nil
}

type recordingSheets struct {
	mu       sync.Mutex
	rows     map[string]ports.SheetRow
	statuses map[string]string
}

func (s *recordingSheets) UpsertOrder(_ context.Context, row ports.SheetRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows == nil {
		s.rows = make(map[string]ports.SheetRow)
	}
	s.rows[row.OrderCode] = row
	return nil
}

func (s *recordingSheets) UpdateStatus(_ context.Context, code, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses == nil {
		s.statuses = make(map[string]string)
	}
	s.statuses[code] = label
	return nil
}
