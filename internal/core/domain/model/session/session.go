// Package session provides the per-customer conversation state.
//
// A Session is keyed by the customer's phone number, created on the first
// message from an unseen number and never deleted. Its version is bumped by
// the repository on every successful save and used for optimistic concurrency.
package session

import (
	"errors"
	"time"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/menu"
)

// ErrSessionIsNotConstructed is returned for a Session not built by NewSession or RestoreSession.
var ErrSessionIsNotConstructed = errors.New("Session must be created via NewSession constructor")

// Session is the conversation state of one customer.
type Session struct {
	phone           kernel.PhoneNumber
	step            Step
	selectedDate    kernel.Date
	locationID      string
	items           menu.Selection
	deliveryAddress string
	mapsLink        string
	currentOrderID  *kernel.UUID
	lastInteraction time.Time
	createdAt       time.Time
	version         int64

	isConstructed bool
}

// NewSession creates an unsaved session at StepStart. Version 0 marks it as never persisted.
func NewSession(phone kernel.PhoneNumber, now time.Time) (*Session, error) {
	if err := phone.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		phone:           phone,
		step:            StepStart,
		lastInteraction: now,
		createdAt:       now,
		isConstructed:   true,
	}, nil
}

// Snapshot is the persisted form of a Session.
type Snapshot struct {
	Phone           kernel.PhoneNumber
	Step            Step
	SelectedDate    kernel.Date
	LocationID      string
	Items           menu.Selection
	DeliveryAddress string
	MapsLink        string
	CurrentOrderID  *kernel.UUID
	LastInteraction time.Time
	CreatedAt       time.Time
	Version         int64
}

// RestoreSession rebuilds a session from storage.
func RestoreSession(s Snapshot) (*Session, error) {
	if err := errors.Join(s.Phone.Validate(), s.Step.Validate()); err != nil {
		return nil, err
	}
	return &Session{
		phone:           s.Phone,
		step:            s.Step,
		selectedDate:    s.SelectedDate,
		locationID:      s.LocationID,
		items:           s.Items.Clone(),
		deliveryAddress: s.DeliveryAddress,
		mapsLink:        s.MapsLink,
		currentOrderID:  s.CurrentOrderID,
		lastInteraction: s.LastInteraction,
		createdAt:       s.CreatedAt,
		version:         s.Version,
		isConstructed:   true,
	}, nil
}

// Snapshot exports the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phone:           s.phone,
		Step:            s.step,
		SelectedDate:    s.selectedDate,
		LocationID:      s.locationID,
		Items:           s.items.Clone(),
		DeliveryAddress: s.deliveryAddress,
		MapsLink:        s.mapsLink,
		CurrentOrderID:  s.currentOrderID,
		LastInteraction: s.lastInteraction,
		CreatedAt:       s.createdAt,
		Version:         s.version,
	}
}

// Clone returns an independent copy, so a failed handling attempt never leaks
// into the state that gets saved.
func (s *Session) Clone() *Session {
	c := *s
	c.items = s.items.Clone()
	if s.currentOrderID != nil {
		id := *s.currentOrderID
		c.currentOrderID = &id
	}
	return &c
}

// Validate ensures the session was properly constructed.
func (s *Session) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSessionIsNotConstructed
	}
	return nil
}

func (s *Session) Phone() kernel.PhoneNumber    { return s.phone }
func (s *Session) Step() Step                   { return s.step }
func (s *Session) SelectedDate() kernel.Date    { return s.selectedDate }
func (s *Session) LocationID() string           { return s.locationID }
func (s *Session) DeliveryAddress() string      { return s.deliveryAddress }
func (s *Session) MapsLink() string             { return s.mapsLink }
func (s *Session) CurrentOrderID() *kernel.UUID { return s.currentOrderID }
func (s *Session) LastInteraction() time.Time   { return s.lastInteraction }
func (s *Session) CreatedAt() time.Time         { return s.createdAt }
func (s *Session) Version() int64               { return s.version }
func (s *Session) Items() menu.Selection        { return s.items.Clone() }
func (s *Session) IsNew() bool                  { return s.version == 0 }

// Touch records an interaction. It runs for every inbound event, accepted or not.
func (s *Session) Touch(now time.Time) {
	s.lastInteraction = now
}

// Reset returns the session to StepStart and forgets every selection and the
// current order reference. Orders already placed are not touched.
func (s *Session) Reset() {
	s.step = StepStart
	s.selectedDate = kernel.Date{}
	s.locationID = ""
	s.items = nil
	s.deliveryAddress = ""
	s.mapsLink = ""
	s.currentOrderID = nil
}

// MoveTo sets the current step.
func (s *Session) MoveTo(step Step) error {
	if err := step.Validate(); err != nil {
		return err
	}
	s.step = step
	return nil
}

// SelectDate stores the delivery date.
func (s *Session) SelectDate(d kernel.Date) {
	s.selectedDate = d
}

// SelectLocation stores the catalog id of the chosen location.
func (s *Session) SelectLocation(id string) {
	s.locationID = id
}

// SelectItems stores a non-empty selection.
func (s *Session) SelectItems(items menu.Selection) {
	s.items = items.Clone()
}

// SetDeliveryDetails stores the address and optional map link.
func (s *Session) SetDeliveryDetails(address, mapsLink string) {
	s.deliveryAddress = address
	s.mapsLink = mapsLink
}

// AttachOrder links the order created from this session.
func (s *Session) AttachOrder(id kernel.UUID) {
	s.currentOrderID = &id
}

// MarkSaved records the version assigned by the repository.
func (s *Session) MarkSaved(version int64) {
	s.version = version
}
