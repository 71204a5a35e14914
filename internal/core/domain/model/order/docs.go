// Package order provides the Order aggregate: a priced purchase awaiting manual
// payment verification.
//
// The package includes:
//   - Order: the aggregate root, created once when the customer finishes the dialogue
//   - Status: pending, then exactly one of verified or rejected
//   - Decision: the operator's verify/reject choice
//   - Code: the short human-readable order id shown to customers
//
// Key business rules:
//   - The total is fixed at creation and never recomputed
//   - The verification token is generated once and never reused
//   - Status leaves pending at most once
//   - Recording the same payment screenshot twice is a no-op
//   - Integration failures flag an order for manual follow-up; they never invalidate it
package order
