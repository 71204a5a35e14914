package services

import (
	"fmt"
	"time"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/core/domain/model/session"
)

// CodeSource issues customer-facing order codes.
type CodeSource interface {
	Generate(now time.Time) (order.Code, error)
}

// IDSource issues identifiers and verification tokens.
type IDSource func() (kernel.UUID, error)

// OrderLedger creates orders from the selections stored on a session.
//
// Every failure (unknown location, pricing, code or token generation) is
// returned; an order is only ever handed back fully initialized.
type OrderLedger struct {
	pricer  OrderPricer
	catalog *location.Catalog
	codes   CodeSource
	ids     IDSource
}

// NewOrderLedger creates a ledger. A nil ids falls back to kernel.GenerateUUID.
func NewOrderLedger(pricer OrderPricer, catalog *location.Catalog, codes CodeSource, ids IDSource) OrderLedger {
	if ids == nil {
		ids = kernel.GenerateUUID
	}
	return OrderLedger{pricer: pricer, catalog: catalog, codes: codes, ids: ids}
}

// Create builds a pending order for the session's selections. The total is
// priced here, once, and never recomputed afterwards.
func (l OrderLedger) Create(sess *session.Session, now time.Time) (*order.Order, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	// A location deactivated after it was selected is still honoured.
	loc, err := l.catalog.Get(sess.LocationID())
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	total, err := l.pricer.CalculateTotal(sess.Items(), loc)
	if err != nil {
		return nil, fmt.Errorf("create order: price selection: %w", err)
	}

	code, err := l.codes.Generate(now)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	id, err := l.ids()
	if err != nil {
		return nil, fmt.Errorf("create order: order id: %w", err)
	}
	token, err := l.ids()
	if err != nil {
		return nil, fmt.Errorf("create order: verification token: %w", err)
	}

	o, err := order.NewOrder(id, code, token, order.Details{
		Phone:           sess.Phone(),
		DeliveryDate:    sess.SelectedDate(),
		LocationID:      loc.ID(),
		Items:           sess.Items(),
		DeliveryAddress: sess.DeliveryAddress(),
		MapsLink:        sess.MapsLink(),
	}, total, now)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}
