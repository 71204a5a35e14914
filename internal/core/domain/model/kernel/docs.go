// Package kernel provides the value objects shared by every aggregate of the
// ordering service.
//
// The package includes:
//   - UUID: internal identifiers and verification tokens
//   - Money: exact fixed-point currency amounts backed by shopspring/decimal
//   - Date: a calendar day without time-of-day, used for delivery dates
//   - GeoPoint: a shared-location coordinate pair rendered into a map link
//   - PhoneNumber: the normalized customer key used for sessions
//
// All values are immutable and safe for concurrent use. Constructors validate
// their input; zero values are either meaningful (Money, Date) or rejected by
// Validate (UUID, GeoPoint, PhoneNumber).
package kernel
