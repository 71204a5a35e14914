package kernel

import (
	"time"

	"orderbot/internal/pkg/errs"
)

// DateLayout is the ISO layout accepted from customers and used in reply ids.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone. Delivery dates are
// compared as days, so "today" must be taken in the shop's time zone before
// calling DateOf.
type Date struct {
	year  int
	month time.Month
	day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errs.NewValueIsInvalidErrorWithCause("date", err)
	}
	return DateOf(t), nil
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Time returns midnight of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

// Format renders the date with a time layout, e.g. "02 Jan 2006".
func (d Date) Format(layout string) string {
	return d.Time(time.UTC).Format(layout)
}

// String returns the YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}
