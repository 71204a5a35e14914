package kernel

import (
	"fmt"
	"strings"

	"orderbot/internal/pkg/errs"
)

const (
	phoneMinDigits = 8
	phoneMaxDigits = 15
)

// PhoneNumber is a customer's messaging address in digits-only international
// form, as WhatsApp reports it in the "from" field ("919876543210").
// Sessions are keyed by it.
type PhoneNumber struct {
	digits string
}

// NewPhoneNumber normalizes s by dropping a leading '+', spaces and dashes,
// then requires 8 to 15 digits.
func NewPhoneNumber(s string) (PhoneNumber, error) {
	cleaned := strings.NewReplacer("+", "", " ", "", "-", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return PhoneNumber{}, errs.NewValueIsRequiredError("phone number")
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return PhoneNumber{}, errs.NewValueIsInvalidErrorWithCause(
				"phone number", fmt.Errorf("%q contains non-digit characters", s))
		}
	}
	if n := len(cleaned); n < phoneMinDigits || n > phoneMaxDigits {
		return PhoneNumber{}, errs.NewValueIsOutOfRangeError("phone number length", n, phoneMinDigits, phoneMaxDigits)
	}
	return PhoneNumber{digits: cleaned}, nil
}

// Validate rejects the zero value.
func (p PhoneNumber) Validate() error {
	if p.digits == "" {
		return errs.NewValueIsRequiredError("phone number")
	}
	return nil
}

// String returns the digits.
func (p PhoneNumber) String() string {
	return p.digits
}
