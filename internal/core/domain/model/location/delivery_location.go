package location

import (
	"errors"
	"fmt"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"
)

// Kind tells whether a location is delivered to or collected from.
type Kind int

const (
	// KindUnknown catches uninitialized values.
	KindUnknown Kind = iota

	// KindDelivery locations charge their fee on top of the items total.
	KindDelivery

	// KindPickup locations never charge a fee.
	KindPickup
)

func (k Kind) String() string {
	switch k {
	case KindDelivery:
		return "delivery"
	case KindPickup:
		return "pickup"
	default:
		return "unknown"
	}
}

// Validate rejects KindUnknown and out-of-range values.
func (k Kind) Validate() error {
	if k != KindDelivery && k != KindPickup {
		return errs.NewValueIsInvalidErrorWithCause("kind is invalid", fmt.Errorf("%d is not a valid location kind", k))
	}
	return nil
}

// ErrDeliveryLocationIsNotConstructed is returned for a zero-value DeliveryLocation.
var ErrDeliveryLocationIsNotConstructed = errors.New("DeliveryLocation must be created via NewDeliveryLocation constructor")

// DeliveryLocation is a value snapshot of one catalog entry. The catalog hands
// out copies, so holding one never observes a later administrative change.
type DeliveryLocation struct {
	id          string
	name        string
	displayName string
	fee         kernel.Money
	active      bool
	kind        Kind

	isConstructed bool
}

// NewDeliveryLocation creates an active location.
//
// Example:
//
//	loc, err := location.NewDeliveryLocation(
//	    "vyttila_delivery", "Vyttila", "Vyttila (Delivery)", kernel.MoneyFromInt(50), location.KindDelivery)
func NewDeliveryLocation(id, name, displayName string, fee kernel.Money, kind Kind) (DeliveryLocation, error) {
	loc := DeliveryLocation{active: true, isConstructed: true}

	if err := errors.Join(
		loc.setID(id),
		loc.setName(name, displayName),
		loc.setKind(kind, fee),
	); err != nil {
		return DeliveryLocation{}, err
	}

	return loc, nil
}

// Validate ensures the location was built by NewDeliveryLocation.
func (l DeliveryLocation) Validate() error {
	if !l.isConstructed {
		return ErrDeliveryLocationIsNotConstructed
	}
	return nil
}

func (l DeliveryLocation) ID() string          { return l.id }
func (l DeliveryLocation) Name() string        { return l.name }
func (l DeliveryLocation) DisplayName() string { return l.displayName }
func (l DeliveryLocation) Fee() kernel.Money   { return l.fee }
func (l DeliveryLocation) IsActive() bool      { return l.active }
func (l DeliveryLocation) Kind() Kind          { return l.kind }

// IsDelivery reports whether the fee applies. It is decided by the kind tag only.
func (l DeliveryLocation) IsDelivery() bool {
	return l.kind == KindDelivery
}

// ChargedFee is the fee added to an order for this location: the configured
// fee for delivery locations and zero otherwise.
func (l DeliveryLocation) ChargedFee() kernel.Money {
	if !l.IsDelivery() {
		return kernel.Money{}
	}
	return l.fee
}

// ButtonLabel renders the name with the fee, e.g. "Vyttila (₹50)", cut to
// MaxButtonLabelLength runes.
func (l DeliveryLocation) ButtonLabel() string {
	label := l.name
	if !l.ChargedFee().IsZero() {
		label = fmt.Sprintf("%s (%s)", l.name, l.fee.Short())
	}
	return truncate(label, MaxButtonLabelLength)
}

func (l DeliveryLocation) withActive(active bool) DeliveryLocation {
	l.active = active
	return l
}

func (l DeliveryLocation) withFee(fee kernel.Money) DeliveryLocation {
	l.fee = fee
	return l
}

func (l *DeliveryLocation) setID(id string) error {
	if id == "" {
		return errs.NewValueIsRequiredError("location id")
	}
	l.id = id
	return nil
}

func (l *DeliveryLocation) setName(name, displayName string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("location name")
	}
	if displayName == "" {
		displayName = name
	}
	l.name = name
	l.displayName = displayName
	return nil
}

func (l *DeliveryLocation) setKind(kind Kind, fee kernel.Money) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	if kind == KindPickup && !fee.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("fee is invalid", fmt.Errorf("pickup fee must be zero, got %s", fee))
	}
	l.kind = kind
	l.fee = fee
	return nil
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
