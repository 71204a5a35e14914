package commands

import (
	"context"
	"fmt"
	"log/slog"

	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/pkg/errs"
)

// ManageLocationCommandHandler applies administrative changes to the location catalog.
// Changes affect new selections only; orders already placed keep their fee.
type ManageLocationCommandHandler struct {
	catalog *location.Catalog
	logger  *slog.Logger
}

// NewManageLocationCommandHandler creates a handler mutating catalog.
func NewManageLocationCommandHandler(catalog *location.Catalog, logger *slog.Logger) ManageLocationCommandHandler {
	return ManageLocationCommandHandler{
		catalog: catalog,
		logger:  logger.With("component", "location_admin"),
	}
}

// Handle processes the command. Unknown ids return an errs.ObjectNotFoundError.
func (h ManageLocationCommandHandler) Handle(_ context.Context, command ManageLocationCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	var err error
	switch command.Action() {
	case LocationActionActivate:
		err = h.catalog.Activate(command.LocationID())
	case LocationActionDeactivate:
		err = h.catalog.Deactivate(command.LocationID())
	case LocationActionUpdateFee:
		err = h.catalog.UpdateFee(command.LocationID(), command.Fee())
	case LocationActionUpdateAllFees:
		h.catalog.UpdateAllDeliveryFees(command.Fee())
	default:
		err = errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%s", command.Action()))
	}
	if err != nil {
		return err
	}

	h.logger.Info("location catalog changed",
		"action", command.Action().String(), "location", command.LocationID(), "fee", command.Fee().String())
	return nil
}
