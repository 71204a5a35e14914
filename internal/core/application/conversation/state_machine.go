// Package conversation implements the ordering dialogue as a state machine over
// session.Step. It is pure: it reads the catalog, menu and calendar, may create
// an order, and returns what should be saved and sent. Persistence and delivery
// are left to the caller.
package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/core/domain/model/session"
	"orderbot/internal/core/domain/services"
	"orderbot/internal/pkg/errs"
)

// ErrNoCurrentOrder is returned when a session waiting for a screenshot has no order attached.
var ErrNoCurrentOrder = errors.New("session has no current order")

// quickReplyDates is how many dates are offered as reply buttons.
const quickReplyDates = 3

// FollowUpKind names a side effect that runs after the outcome is committed.
type FollowUpKind int

const (
	// FollowUpPaymentQR renders the payment QR of a new order and sends it.
	FollowUpPaymentQR FollowUpKind = iota + 1

	// FollowUpScreenshot stores the payment screenshot and exports the order.
	FollowUpScreenshot
)

func (k FollowUpKind) String() string {
	switch k {
	case FollowUpPaymentQR:
		return "payment_qr"
	case FollowUpScreenshot:
		return "screenshot"
	default:
		return "unknown"
	}
}

// FollowUp is a best-effort side effect of an accepted event.
type FollowUp struct {
	Kind    FollowUpKind
	Phone   kernel.PhoneNumber
	OrderID kernel.UUID
	Media   chat.Media
}

// Outcome is the result of handling one event.
//
// Session always carries the touched session. NewOrder is set when the event
// completed the dialogue; it must be committed together with Session.
// Rejection is set when the input was refused and the customer re-prompted;
// in that case Session differs from the input only by its last interaction.
type Outcome struct {
	Session   *session.Session
	NewOrder  *order.Order
	Messages  []chat.OutboundMessage
	FollowUps []FollowUp
	Rejection error
}

// StateMachine drives the dialogue. It is safe for concurrent use; callers
// serialize events of the same phone number.
type StateMachine struct {
	catalog  *location.Catalog
	pricer   services.OrderPricer
	calendar services.DeliveryCalendar
	ledger   services.OrderLedger
	leadDays int
}

// NewStateMachine wires the dialogue to its reference data and the ledger.
func NewStateMachine(
	catalog *location.Catalog,
	pricer services.OrderPricer,
	calendar services.DeliveryCalendar,
	ledger services.OrderLedger,
) *StateMachine {
	return &StateMachine{
		catalog:  catalog,
		pricer:   pricer,
		calendar: calendar,
		ledger:   ledger,
		leadDays: services.DefaultLeadDays,
	}
}

// WithLeadDays sets the lead time mentioned in the welcome text.
func (m *StateMachine) WithLeadDays(days int) *StateMachine {
	m.leadDays = days
	return m
}

// Handle applies event to a copy of sess. The input session is never modified.
//
// The returned error is reserved for fatal conditions (e.g. order creation
// failed); the caller must then discard the outcome and save nothing.
func (m *StateMachine) Handle(sess *session.Session, event chat.InboundEvent, now time.Time) (Outcome, error) {
	if err := sess.Validate(); err != nil {
		return Outcome{}, err
	}

	t := &turn{m: m, sess: sess.Clone(), event: event, now: now}
	t.sess.Touch(now)

	var err error
	switch {
	case event.IsStartCommand():
		t.sess.Reset()
		err = t.start()
	default:
		err = t.dispatch()
	}
	if err != nil {
		return Outcome{}, err
	}

	t.outcome.Session = t.sess
	return t.outcome, nil
}

// turn holds the state of one Handle call.
type turn struct {
	m       *StateMachine
	sess    *session.Session
	event   chat.InboundEvent
	now     time.Time
	outcome Outcome
}

func (t *turn) dispatch() error {
	switch t.sess.Step() {
	case session.StepStart:
		return t.start()
	case session.StepDateSelection:
		return t.dateSelection()
	case session.StepLocationSelection:
		return t.locationSelection()
	case session.StepMenuSelection:
		return t.menuSelection()
	case session.StepDeliveryDetails:
		return t.deliveryDetails()
	case session.StepPaymentPending:
		return t.paymentPending()
	case session.StepAwaitingScreenshot:
		return t.awaitingScreenshot()
	case session.StepCompleted:
		t.sess.Reset()
		return t.start()
	default:
		return fmt.Errorf("dispatch: %w", t.sess.Step().Validate())
	}
}

func (t *turn) start() error {
	dates := t.m.calendar.AvailableDates(t.now)
	options := make([]chat.Option, 0, quickReplyDates)
	for _, d := range dates[:min(quickReplyDates, len(dates))] {
		options = append(options, dateOption(d))
	}

	msg, err := chat.QuickReplies(t.phone(), welcomeText(t.m.leadDays), options)
	if err != nil {
		return err
	}
	t.send(msg)
	return t.sess.MoveTo(session.StepDateSelection)
}

func (t *turn) dateSelection() error {
	candidate := strings.TrimSpace(t.event.Text)
	if t.event.Type == chat.EventInteractiveReply {
		candidate = strings.TrimPrefix(t.event.Reply.ID, dateReplyIDPrefix)
	}

	d, err := kernel.ParseDate(candidate)
	if err == nil && !t.m.calendar.IsAvailable(d, t.now) {
		err = errs.NewValueIsInvalidErrorWithCause("date", fmt.Errorf("%s is not an available delivery date", d))
	}
	if err != nil {
		t.reject(err, t.dateList())
		return nil
	}

	t.sess.SelectDate(d)
	if err := t.sess.MoveTo(session.StepLocationSelection); err != nil {
		return err
	}
	return t.offerLocations(dateSelectedText(d, t.m.catalog.SummaryText()))
}

func (t *turn) dateList() []chat.OutboundMessage {
	dates := t.m.calendar.AvailableDates(t.now)
	dates = dates[:min(chat.MaxListRows, len(dates))]

	rows := make([]chat.Option, 0, len(dates))
	for _, d := range dates {
		opt := dateOption(d)
		opt.Description = d.Time(time.UTC).Weekday().String()
		rows = append(rows, opt)
	}

	msg, err := chat.List(t.phone(), invalidDateText(dates), "Choose date",
		[]chat.Section{{Title: "Available dates", Rows: rows}})
	if err != nil {
		return []chat.OutboundMessage{chat.Text(t.phone(), invalidDateText(dates))}
	}
	return []chat.OutboundMessage{msg}
}

func (t *turn) offerLocations(intro string) error {
	groups, err := t.m.catalog.ButtonLayout(chat.MaxQuickReplies)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		t.send(chat.Text(t.phone(), noLocationsText))
		return nil
	}

	for i, group := range groups {
		body := moreLocationsText
		if i == 0 {
			body = intro
		}
		options := make([]chat.Option, 0, len(group))
		for _, b := range group {
			options = append(options, chat.Option{ID: b.ID, Title: b.Label})
		}
		msg, err := chat.QuickReplies(t.phone(), body, options)
		if err != nil {
			return err
		}
		t.send(msg)
	}
	return nil
}

func (t *turn) locationSelection() error {
	id := ""
	if t.event.Type == chat.EventInteractiveReply {
		id = t.event.Reply.ID
	}
	if !t.m.catalog.IsValid(id) {
		err := errs.NewValueIsInvalidErrorWithCause("location", fmt.Errorf("%q is not an active location", id))
		t.reject(err, []chat.OutboundMessage{chat.Text(t.phone(), invalidLocationText)})
		return t.offerLocations(moreLocationsText)
	}

	t.sess.SelectLocation(id)
	if err := t.sess.MoveTo(session.StepMenuSelection); err != nil {
		return err
	}

	t.send(chat.Text(t.phone(), menuText(
		t.m.catalog.DisplayName(id), t.sess.SelectedDate(), t.m.pricer.Menu().Listing())))
	return nil
}

func (t *turn) menuSelection() error {
	items, err := t.m.pricer.Parse(t.event.Text)
	if err != nil {
		minID, maxID := menuIDRange(t.m.pricer)
		t.reject(err, []chat.OutboundMessage{chat.Text(t.phone(), invalidOrderLinesText(minID, maxID))})
		return nil
	}

	loc, err := t.m.catalog.Get(t.sess.LocationID())
	if err != nil {
		return fmt.Errorf("menu selection: %w", err)
	}
	quote, err := t.m.pricer.Summarize(items, loc)
	if err != nil {
		return fmt.Errorf("menu selection: %w", err)
	}

	t.sess.SelectItems(items)
	t.send(chat.Text(t.phone(), orderSummaryText(quote.Text(), quote.Total, loc.IsDelivery())))

	if loc.IsDelivery() {
		return t.sess.MoveTo(session.StepDeliveryDetails)
	}

	t.sess.SetDeliveryDetails("", "")
	return t.createOrder()
}

func (t *turn) deliveryDetails() error {
	switch {
	case t.event.Type == chat.EventLocationShare:
		shared := t.event.Location
		point, err := kernel.NewGeoPoint(shared.Latitude, shared.Longitude)
		if err != nil {
			t.reject(err, []chat.OutboundMessage{chat.Text(t.phone(), invalidSharedPointText)})
			return nil
		}
		t.sess.SetDeliveryDetails(sharedAddress(shared, point), point.MapsLink())

	case strings.TrimSpace(t.event.Text) != "":
		t.sess.SetDeliveryDetails(strings.TrimSpace(t.event.Text), "")

	default:
		t.reject(errs.NewValueIsRequiredError("delivery address"),
			[]chat.OutboundMessage{chat.Text(t.phone(), addressRequestText)})
		return nil
	}

	return t.createOrder()
}

// paymentPending resumes a session saved between pricing and order creation.
func (t *turn) paymentPending() error {
	if t.sess.CurrentOrderID() != nil {
		if err := t.sess.MoveTo(session.StepAwaitingScreenshot); err != nil {
			return err
		}
		return t.awaitingScreenshot()
	}
	if t.sess.Items().IsEmpty() {
		t.sess.Reset()
		return t.start()
	}
	return t.createOrder()
}

func (t *turn) createOrder() error {
	o, err := t.m.ledger.Create(t.sess, t.now)
	if err != nil {
		return err
	}

	loc, err := t.m.catalog.Get(o.LocationID())
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	quote, err := t.m.pricer.Summarize(o.Items(), loc)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	t.sess.AttachOrder(o.ID())
	if err := t.sess.MoveTo(session.StepAwaitingScreenshot); err != nil {
		return err
	}

	t.outcome.NewOrder = o
	t.send(chat.Text(t.phone(), PaymentDetailsText(o, quote.Text())))
	t.outcome.FollowUps = append(t.outcome.FollowUps, FollowUp{
		Kind:    FollowUpPaymentQR,
		Phone:   t.phone(),
		OrderID: o.ID(),
	})
	return nil
}

func (t *turn) awaitingScreenshot() error {
	if !t.event.IsImage() {
		t.reject(errs.NewValueIsInvalidErrorWithCause("payment screenshot", errors.New("an image is required")),
			[]chat.OutboundMessage{chat.Text(t.phone(), screenshotRequestText)})
		return nil
	}

	orderID := t.sess.CurrentOrderID()
	if orderID == nil {
		return ErrNoCurrentOrder
	}

	if err := t.sess.MoveTo(session.StepCompleted); err != nil {
		return err
	}
	t.outcome.FollowUps = append(t.outcome.FollowUps, FollowUp{
		Kind:    FollowUpScreenshot,
		Phone:   t.phone(),
		OrderID: *orderID,
		Media:   t.event.Media,
	})
	return nil
}

// reject re-prompts without changing the session beyond its last interaction.
func (t *turn) reject(cause error, prompts []chat.OutboundMessage) {
	t.outcome.Rejection = cause
	t.outcome.Messages = append(t.outcome.Messages, prompts...)
}

func (t *turn) send(msg chat.OutboundMessage) {
	t.outcome.Messages = append(t.outcome.Messages, msg)
}

func (t *turn) phone() kernel.PhoneNumber {
	return t.sess.Phone()
}

func dateOption(d kernel.Date) chat.Option {
	return chat.Option{ID: dateReplyIDPrefix + d.String(), Title: d.Format(dateButtonLayout)}
}

func sharedAddress(shared chat.SharedLocation, point kernel.GeoPoint) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{shared.Name, shared.Address} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Location: " + point.String()
	}
	return strings.Join(parts, ", ")
}

func menuIDRange(p services.OrderPricer) (int, int) {
	items := p.Menu().Available()
	if len(items) == 0 {
		return 0, 0
	}
	lo, hi := items[0].ID, items[0].ID
	for _, item := range items[1:] {
		lo, hi = min(lo, item.ID), max(hi, item.ID)
	}
	return lo, hi
}
