package order

import (
	"fmt"

	"orderbot/internal/pkg/errs"
)

// Status represents the verification state of an order.
//
// State transitions:
//
//	Pending ──┬──> Verified
//	          └──> Rejected
//
// Both Verified and Rejected are final.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status. The customer has been asked to pay.
	Pending

	// Verified means an operator confirmed the payment.
	Verified

	// Rejected means an operator refused the payment proof.
	Rejected
)

// Decision is the operator's verdict on a pending order.
type Decision int

const (
	DecisionVerify Decision = iota + 1
	DecisionReject
)

func (d Decision) String() string {
	switch d {
	case DecisionVerify:
		return "verify"
	case DecisionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// getStatusStrings returns the persisted names of the valid statuses.
func getStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:  "pending",
		Verified: "verified",
		Rejected: "rejected",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted name of the status, or "unknown".
//
// Example:
//
//	fmt.Println(o.Status()) // Output: "pending"
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Label returns the capitalized form written to the spreadsheet, e.g. "Verified".
func (s Status) Label() string {
	switch s {
	case Pending:
		return "Pending"
	case Verified:
		return "Verified"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// IsFinal reports whether no further transition is possible.
func (s Status) IsFinal() bool {
	return s == Verified || s == Rejected
}

// ParseStatus is the inverse of String.
func ParseStatus(str string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == str {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", str))
}

// Decide transitions a pending status according to d.
//
// Returns:
//   - (Verified, nil) or (Rejected, nil) from Pending
//   - (0, error) from any other status or for an unknown decision
func (s Status) Decide(d Decision) (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to %s", s.String(), d.String()),
		)
	}

	switch d {
	case DecisionVerify:
		return Verified, nil
	case DecisionReject:
		return Rejected, nil
	default:
		return 0, errs.NewValueIsInvalidErrorWithCause("decision is invalid", fmt.Errorf("%d is not a valid decision", d))
	}
}
