// Package services provides domain services that work across the ordering
// aggregates and reference data.
//
// The package includes:
//   - OrderPricer: parses the order-line grammar and prices a selection for a location
//   - DeliveryCalendar: decides which delivery dates are offered
//   - OrderLedger: creates fully initialized orders from a finished session
//
// Services hold no mutable state of their own and are safe for concurrent use.
package services
