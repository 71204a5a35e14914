package services

import (
	"time"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"
)

const (
	// DefaultLeadDays is the minimum number of days between ordering and delivery.
	DefaultLeadDays = 3

	// DefaultWindowDays is how many consecutive days are offered.
	DefaultWindowDays = 10
)

// DeliveryCalendar offers delivery dates starting leadDays after today, for
// windowDays consecutive days. "Today" is taken in the shop's time zone.
type DeliveryCalendar struct {
	leadDays   int
	windowDays int
	zone       *time.Location
}

// NewDeliveryCalendar creates a calendar. A nil zone means UTC.
func NewDeliveryCalendar(leadDays, windowDays int, zone *time.Location) (DeliveryCalendar, error) {
	if leadDays < 0 {
		return DeliveryCalendar{}, errs.NewValueIsOutOfRangeError("lead days", leadDays, 0, "unbounded")
	}
	if windowDays < 1 {
		return DeliveryCalendar{}, errs.NewValueIsOutOfRangeError("window days", windowDays, 1, "unbounded")
	}
	if zone == nil {
		zone = time.UTC
	}
	return DeliveryCalendar{leadDays: leadDays, windowDays: windowDays, zone: zone}, nil
}

// Today returns the current calendar day in the shop's zone.
func (c DeliveryCalendar) Today(now time.Time) kernel.Date {
	return kernel.DateOf(now.In(c.zone))
}

// AvailableDates lists the offered dates in ascending order.
func (c DeliveryCalendar) AvailableDates(now time.Time) []kernel.Date {
	first := c.Today(now).AddDays(c.leadDays)
	dates := make([]kernel.Date, 0, c.windowDays)
	for i := range c.windowDays {
		dates = append(dates, first.AddDays(i))
	}
	return dates
}

// IsAvailable reports whether d is one of AvailableDates(now).
func (c DeliveryCalendar) IsAvailable(d kernel.Date, now time.Time) bool {
	first := c.Today(now).AddDays(c.leadDays)
	last := first.AddDays(c.windowDays - 1)
	return !d.Before(first) && !last.Before(d)
}
