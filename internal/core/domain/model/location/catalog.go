package location

import (
	"fmt"
	"strings"
	"sync"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"
)

const (
	// PickupID is the id of the implicit pickup entry.
	PickupID = "pickup"

	// PickupName is the name and display name of the pickup entry.
	PickupName = "Pickup Only"

	// MaxButtonLabelLength is the messaging platform's limit for a reply button title.
	MaxButtonLabelLength = 20

	deliveryIDSuffix = "_delivery"
)

// Button is one selectable location in a reply-button message.
type Button struct {
	ID    string
	Label string
}

// Catalog is the registry of delivery areas and the pickup entry.
//
// A Catalog is built once at startup and passed to whoever needs it. All
// methods are safe for concurrent use; reads return copies taken under a read
// lock, so a layout is always computed from a single consistent state even
// while an administrator changes fees or active flags.
type Catalog struct {
	mu        sync.RWMutex
	locations []DeliveryLocation
	index     map[string]int
}

// AreaID derives the catalog id of a delivery area from its name.
//
//	AreaID("Vyttila")        // "vyttila_delivery"
//	AreaID("Marine Drive")   // "marine_drive_delivery"
func AreaID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_") + deliveryIDSuffix
}

// NewCatalog builds a catalog from ordered area names, each charged deliveryFee,
// followed by the pickup entry. Blank names are skipped; duplicate ids are rejected.
//
// Example:
//
//	catalog, err := location.NewCatalog(
//	    []string{"Vyttila", "Kakkanad", "Edappally", "Palarivattom"}, kernel.MoneyFromInt(50))
func NewCatalog(areas []string, deliveryFee kernel.Money) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(areas)+1)}

	for _, area := range areas {
		name := strings.TrimSpace(area)
		if name == "" {
			continue
		}
		loc, err := NewDeliveryLocation(AreaID(name), name, name+" (Delivery)", deliveryFee, KindDelivery)
		if err != nil {
			return nil, err
		}
		if err := c.add(loc); err != nil {
			return nil, err
		}
	}

	pickup, err := NewDeliveryLocation(PickupID, PickupName, PickupName, kernel.Money{}, KindPickup)
	if err != nil {
		return nil, err
	}
	if err := c.add(pickup); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Catalog) add(loc DeliveryLocation) error {
	if _, exists := c.index[loc.ID()]; exists {
		return errs.NewValueIsInvalidErrorWithCause("location id", fmt.Errorf("duplicate location id %q", loc.ID()))
	}
	c.index[loc.ID()] = len(c.locations)
	c.locations = append(c.locations, loc)
	return nil
}

// All returns every location in catalog order, active or not.
func (c *Catalog) All() []DeliveryLocation {
	return c.filter(func(DeliveryLocation) bool { return true })
}

// Active returns the active locations in catalog order.
func (c *Catalog) Active() []DeliveryLocation {
	return c.filter(DeliveryLocation.IsActive)
}

// DeliveryOnly returns the active delivery-kind locations in catalog order.
func (c *Catalog) DeliveryOnly() []DeliveryLocation {
	return c.filter(func(l DeliveryLocation) bool { return l.IsActive() && l.IsDelivery() })
}

// Get returns the location with the given id, active or not.
func (c *Catalog) Get(id string) (DeliveryLocation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return DeliveryLocation{}, errs.NewObjectNotFoundError("location", id)
	}
	return c.locations[i], nil
}

// IsValid reports whether id names an active location.
func (c *Catalog) IsValid(id string) bool {
	loc, err := c.Get(id)
	return err == nil && loc.IsActive()
}

// Fee returns the configured fee of the location.
func (c *Catalog) Fee(id string) (kernel.Money, error) {
	loc, err := c.Get(id)
	if err != nil {
		return kernel.Money{}, err
	}
	return loc.Fee(), nil
}

// DisplayName returns the display name of the location, or id itself when unknown
// so that old orders referring to a removed area still render.
func (c *Catalog) DisplayName(id string) string {
	loc, err := c.Get(id)
	if err != nil {
		return id
	}
	return loc.DisplayName()
}

// IsDelivery reports whether id names a delivery-kind location.
func (c *Catalog) IsDelivery(id string) bool {
	loc, err := c.Get(id)
	return err == nil && loc.IsDelivery()
}

// ButtonLayout partitions the active locations into groups of at most
// maxGroupSize buttons: delivery locations first, then pickup, each in catalog order.
//
// Example:
//
//	// 4 active areas + pickup, groups of 3:
//	// [[Vyttila Kakkanad Edappally] [Palarivattom Pickup]]
//	groups, err := catalog.ButtonLayout(3)
func (c *Catalog) ButtonLayout(maxGroupSize int) ([][]Button, error) {
	if maxGroupSize < 1 {
		return nil, errs.NewValueIsOutOfRangeError("max group size", maxGroupSize, 1, "unbounded")
	}

	ordered := c.orderedActive()

	groups := make([][]Button, 0, (len(ordered)+maxGroupSize-1)/maxGroupSize)
	for start := 0; start < len(ordered); start += maxGroupSize {
		end := min(start+maxGroupSize, len(ordered))
		group := make([]Button, 0, end-start)
		for _, loc := range ordered[start:end] {
			group = append(group, Button{ID: loc.ID(), Label: loc.ButtonLabel()})
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// SummaryText lists the active locations with their fees, delivery first.
func (c *Catalog) SummaryText() string {
	var delivery, pickup []DeliveryLocation
	for _, loc := range c.orderedActive() {
		if loc.IsDelivery() {
			delivery = append(delivery, loc)
		} else {
			pickup = append(pickup, loc)
		}
	}

	var b strings.Builder
	if len(delivery) > 0 {
		b.WriteString("*Delivery Locations*:\n")
		for _, loc := range delivery {
			feeText := "Free delivery"
			if !loc.Fee().IsZero() {
				feeText = loc.Fee().Short() + " delivery fee"
			}
			fmt.Fprintf(&b, "• %s (%s)\n", loc.Name(), feeText)
		}
		b.WriteString("\n")
	}
	if len(pickup) > 0 {
		b.WriteString("*Pickup Locations*:\n")
		for _, loc := range pickup {
			fmt.Fprintf(&b, "• %s (No extra fee)\n", loc.Name())
		}
	}
	return b.String()
}

// Activate makes the location selectable again.
func (c *Catalog) Activate(id string) error {
	return c.update(id, func(l DeliveryLocation) (DeliveryLocation, error) {
		return l.withActive(true), nil
	})
}

// Deactivate hides the location from customers. Orders already placed for it are unaffected.
func (c *Catalog) Deactivate(id string) error {
	return c.update(id, func(l DeliveryLocation) (DeliveryLocation, error) {
		return l.withActive(false), nil
	})
}

// UpdateFee changes the fee of a single delivery location.
func (c *Catalog) UpdateFee(id string, fee kernel.Money) error {
	return c.update(id, func(l DeliveryLocation) (DeliveryLocation, error) {
		if !l.IsDelivery() {
			return l, errs.NewValueIsInvalidErrorWithCause("location id", fmt.Errorf("%q is not a delivery location", id))
		}
		return l.withFee(fee), nil
	})
}

// UpdateAllDeliveryFees sets fee on every delivery location, active or not.
func (c *Catalog) UpdateAllDeliveryFees(fee kernel.Money) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, loc := range c.locations {
		if loc.IsDelivery() {
			c.locations[i] = loc.withFee(fee)
		}
	}
}

func (c *Catalog) update(id string, fn func(DeliveryLocation) (DeliveryLocation, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return errs.NewObjectNotFoundError("location", id)
	}
	updated, err := fn(c.locations[i])
	if err != nil {
		return err
	}
	c.locations[i] = updated
	return nil
}

func (c *Catalog) filter(keep func(DeliveryLocation) bool) []DeliveryLocation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]DeliveryLocation, 0, len(c.locations))
	for _, loc := range c.locations {
		if keep(loc) {
			out = append(out, loc)
		}
	}
	return out
}

// orderedActive takes one snapshot and orders it delivery first.
func (c *Catalog) orderedActive() []DeliveryLocation {
	active := c.Active()
	ordered := make([]DeliveryLocation, 0, len(active))
	for _, loc := range active {
		if loc.IsDelivery() {
			ordered = append(ordered, loc)
		}
	}
	for _, loc := range active {
		if !loc.IsDelivery() {
			ordered = append(ordered, loc)
		}
	}
	return ordered
}
