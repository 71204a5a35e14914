package commands

import (
	"errors"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"
	"orderbot/internal/pkg/guard"
)

var ErrManageLocationCommandIsNotConstructed = errors.New(
	"ManageLocationCommand must be created via one of the NewXxxLocationCommand constructors",
)

// LocationAction is an administrative change to the location catalog.
type LocationAction int

const (
	LocationActionUnknown LocationAction = iota
	LocationActionActivate
	LocationActionDeactivate
	LocationActionUpdateFee
	LocationActionUpdateAllFees
)

func (a LocationAction) String() string {
	switch a {
	case LocationActionActivate:
		return "activate"
	case LocationActionDeactivate:
		return "deactivate"
	case LocationActionUpdateFee:
		return "update_fee"
	case LocationActionUpdateAllFees:
		return "update_all_fees"
	default:
		return "unknown"
	}
}

// ManageLocationCommand changes the in-memory location catalog at runtime.
//
// Example:
//
//	cmd, err := NewUpdateLocationFeeCommand("vyttila_delivery", kernel.MoneyFromInt(60))
//	err = handler.Handle(ctx, cmd)
type ManageLocationCommand struct {
	action     LocationAction
	locationID string
	fee        kernel.Money

	guard guard.ConstructorGuard
}

// NewActivateLocationCommand makes a location selectable again.
func NewActivateLocationCommand(locationID string) (ManageLocationCommand, error) {
	return newManageLocationCommand(LocationActionActivate, locationID, kernel.Money{})
}

// NewDeactivateLocationCommand hides a location from new conversations.
func NewDeactivateLocationCommand(locationID string) (ManageLocationCommand, error) {
	return newManageLocationCommand(LocationActionDeactivate, locationID, kernel.Money{})
}

// NewUpdateLocationFeeCommand changes the fee of one delivery location.
func NewUpdateLocationFeeCommand(locationID string, fee kernel.Money) (ManageLocationCommand, error) {
	return newManageLocationCommand(LocationActionUpdateFee, locationID, fee)
}

// NewUpdateAllDeliveryFeesCommand changes the fee of every delivery location.
func NewUpdateAllDeliveryFeesCommand(fee kernel.Money) (ManageLocationCommand, error) {
	return ManageLocationCommand{
		action: LocationActionUpdateAllFees,
		fee:    fee,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func newManageLocationCommand(action LocationAction, locationID string, fee kernel.Money) (ManageLocationCommand, error) {
	if locationID == "" {
		return ManageLocationCommand{}, errs.NewValueIsRequiredError("locationID")
	}
	return ManageLocationCommand{
		action:     action,
		locationID: locationID,
		fee:        fee,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ManageLocationCommand) Action() LocationAction { return c.action }
func (c ManageLocationCommand) LocationID() string     { return c.locationID }
func (c ManageLocationCommand) Fee() kernel.Money      { return c.fee }

// Validate ensures the command was created through a constructor.
func (c ManageLocationCommand) Validate() error {
	return c.guard.Validate(ErrManageLocationCommandIsNotConstructed)
}
