package session

import (
	"fmt"

	"orderbot/internal/pkg/errs"
)

// Step is the position of a customer in the ordering dialogue.
//
//	start ─> date_selection ─> location_selection ─> menu_selection ─┬─> delivery_details ─┐
//	                                                                 └────────(pickup)──────┴─> awaiting_screenshot ─> completed
//
// payment_pending is only ever stored by a writer that crashed between pricing
// and order creation; the conversation resumes it by creating the order.
type Step int

const (
	StepUnknown Step = iota
	StepStart
	StepDateSelection
	StepLocationSelection
	StepMenuSelection
	StepDeliveryDetails
	StepPaymentPending
	StepAwaitingScreenshot
	StepCompleted
)

func getStepStrings() map[Step]string {
	//nolint:exhaustive // StepUnknown has no persisted form
	return map[Step]string{
		StepStart:              "start",
		StepDateSelection:      "date_selection",
		StepLocationSelection:  "location_selection",
		StepMenuSelection:      "menu_selection",
		StepDeliveryDetails:    "delivery_details",
		StepPaymentPending:     "payment_pending",
		StepAwaitingScreenshot: "awaiting_screenshot",
		StepCompleted:          "completed",
	}
}

// String returns the persisted name of the step, or "unknown".
func (s Step) String() string {
	if str, ok := getStepStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Validate rejects StepUnknown and out-of-range values.
func (s Step) Validate() error {
	if _, ok := getStepStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("step is invalid", fmt.Errorf("%d is not a valid step", s))
	}
	return nil
}

// ParseStep is the inverse of String.
func ParseStep(s string) (Step, error) {
	for step, str := range getStepStrings() {
		if str == s {
			return step, nil
		}
	}
	return StepUnknown, errs.NewValueIsInvalidErrorWithCause("step is invalid", fmt.Errorf("%q is not a valid step", s))
}
