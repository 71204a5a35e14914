package order

import (
	"errors"
	"fmt"
	"time"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder factory method or restored through RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Details is what the customer chose during the dialogue.
type Details struct {
	Phone           kernel.PhoneNumber
	DeliveryDate    kernel.Date
	LocationID      string
	Items           menu.Selection
	DeliveryAddress string
	MapsLink        string
}

// Order is the aggregate root for a purchase awaiting payment verification.
//
// Order follows these invariants:
//   - id, code and verification token are set once at creation
//   - total is fixed at creation and never recomputed
//   - status starts Pending and is decided at most once
//
// The Order struct uses private fields to ensure encapsulation and maintains
// its invariants through validated methods.
type Order struct {
	id                kernel.UUID
	code              Code
	details           Details
	total             kernel.Money
	screenshotRef     string
	verificationToken kernel.UUID
	status            Status
	createdAt         time.Time
	decidedAt         *time.Time
	followUpRequired  bool
	followUpReason    string
	sheetSyncPending  bool

	isConstructed bool
}

// NewOrder creates a pending order.
//
// Parameters:
//   - id: internal identifier
//   - code: customer-facing order id
//   - token: verification token embedded in the operator links
//   - details: the customer's selections; items must be non-empty
//   - total: the priced total, computed once by the caller
//   - now: creation time
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), code, kernel.NewUUID(), details, total, time.Now())
func NewOrder(id kernel.UUID, code Code, token kernel.UUID, details Details, total kernel.Money, now time.Time) (*Order, error) {
	o := &Order{
		status:        Pending,
		total:         total,
		createdAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCode(code),
		o.setToken(token, id),
		o.setDetails(details),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot is the persisted form of an Order.
type Snapshot struct {
	ID                kernel.UUID
	Code              Code
	Details           Details
	Total             kernel.Money
	ScreenshotRef     string
	VerificationToken kernel.UUID
	Status            Status
	CreatedAt         time.Time
	DecidedAt         *time.Time
	FollowUpRequired  bool
	FollowUpReason    string
	SheetSyncPending  bool
}

// RestoreOrder rebuilds an order from storage. It re-checks identity and status
// but not the selection rules, which applied at creation time.
func RestoreOrder(s Snapshot) (*Order, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.VerificationToken.Validate(),
		s.Status.Validate(),
		s.Details.Phone.Validate(),
	); err != nil {
		return nil, err
	}

	details := s.Details
	details.Items = s.Details.Items.Clone()

	return &Order{
		id:                s.ID,
		code:              s.Code,
		details:           details,
		total:             s.Total,
		screenshotRef:     s.ScreenshotRef,
		verificationToken: s.VerificationToken,
		status:            s.Status,
		createdAt:         s.CreatedAt,
		decidedAt:         s.DecidedAt,
		followUpRequired:  s.FollowUpRequired,
		followUpReason:    s.FollowUpReason,
		sheetSyncPending:  s.SheetSyncPending,
		isConstructed:     true,
	}, nil
}

// Snapshot exports the order state.
func (o *Order) Snapshot() Snapshot {
	details := o.details
	details.Items = o.details.Items.Clone()
	return Snapshot{
		ID:                o.id,
		Code:              o.code,
		Details:           details,
		Total:             o.total,
		ScreenshotRef:     o.screenshotRef,
		VerificationToken: o.verificationToken,
		Status:            o.status,
		CreatedAt:         o.createdAt,
		DecidedAt:         o.decidedAt,
		FollowUpRequired:  o.followUpRequired,
		FollowUpReason:    o.followUpReason,
		SheetSyncPending:  o.sheetSyncPending,
	}
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                { return o.id }
func (o *Order) Code() Code                     { return o.code }
func (o *Order) Phone() kernel.PhoneNumber      { return o.details.Phone }
func (o *Order) DeliveryDate() kernel.Date      { return o.details.DeliveryDate }
func (o *Order) LocationID() string             { return o.details.LocationID }
func (o *Order) Items() menu.Selection          { return o.details.Items.Clone() }
func (o *Order) DeliveryAddress() string        { return o.details.DeliveryAddress }
func (o *Order) MapsLink() string               { return o.details.MapsLink }
func (o *Order) Total() kernel.Money            { return o.total }
func (o *Order) ScreenshotRef() string          { return o.screenshotRef }
func (o *Order) VerificationToken() kernel.UUID { return o.verificationToken }
func (o *Order) Status() Status                 { return o.status }
func (o *Order) CreatedAt() time.Time           { return o.createdAt }
func (o *Order) DecidedAt() *time.Time          { return o.decidedAt }
func (o *Order) FollowUpRequired() bool         { return o.followUpRequired }
func (o *Order) FollowUpReason() string         { return o.followUpReason }
func (o *Order) SheetSyncPending() bool         { return o.sheetSyncPending }

// AttachScreenshot records the stored payment screenshot.
//
// Attaching the reference already recorded is a no-op. A different reference
// replaces the old one while the order is pending; a decided order is left alone.
func (o *Order) AttachScreenshot(ref string) error {
	if ref == "" {
		return errs.NewValueIsRequiredError("screenshot reference")
	}
	if ref == o.screenshotRef {
		return nil
	}
	if o.status.IsFinal() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("cannot attach a screenshot to a %s order", o.status),
		)
	}
	o.screenshotRef = ref
	return nil
}

// Decide applies the operator's decision to a pending order.
//
// Example:
//
//	if err := o.Decide(order.DecisionVerify, time.Now()); err != nil {
//	    // already decided
//	}
func (o *Order) Decide(d Decision, now time.Time) error {
	newStatus, err := o.status.Decide(d)
	if err != nil {
		return err
	}

	o.status = newStatus
	o.decidedAt = &now
	return nil
}

// FlagForFollowUp marks the order for manual attention. The first reason is kept;
// later ones are appended.
func (o *Order) FlagForFollowUp(reason string) {
	switch {
	case !o.followUpRequired || o.followUpReason == "":
		o.followUpReason = reason
	case reason != "" && reason != o.followUpReason:
		o.followUpReason += "; " + reason
	}
	o.followUpRequired = true
}

// MarkSheetSyncPending records that the spreadsheet is behind this order.
func (o *Order) MarkSheetSyncPending() {
	o.sheetSyncPending = true
}

// MarkSheetSynced clears the pending spreadsheet sync.
func (o *Order) MarkSheetSynced() {
	o.sheetSyncPending = false
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCode(code Code) error {
	parsed, err := ParseCode(string(code))
	if err != nil {
		return err
	}
	o.code = parsed
	return nil
}

func (o *Order) setToken(token, id kernel.UUID) error {
	if err := token.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("verification token", err)
	}
	if token.IsEqual(id) {
		return errs.NewValueIsInvalidErrorWithCause("verification token", errors.New("must differ from the order id"))
	}
	o.verificationToken = token
	return nil
}

func (o *Order) setDetails(d Details) error {
	var err error
	if vErr := d.Phone.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if d.DeliveryDate.IsZero() {
		err = errors.Join(err, errs.NewValueIsRequiredError("delivery date"))
	}
	if d.LocationID == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("location id"))
	}
	if d.Items.IsEmpty() {
		err = errors.Join(err, errs.NewValueIsRequiredError("items"))
	}
	for id, qty := range d.Items {
		if qty <= 0 {
			err = errors.Join(err, errs.NewValueIsOutOfRangeError(fmt.Sprintf("quantity of item %d", id), qty, 1, "unbounded"))
		}
	}
	if err != nil {
		return err
	}

	d.Items = d.Items.Clone()
	o.details = d
	return nil
}
