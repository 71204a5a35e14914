package http

import (
	"errors"
	"net/http"
	"strconv"

	"orderbot/internal/core/application/usecases/commands"
	"orderbot/internal/core/application/usecases/queries"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const defaultFollowUpLimit = 50

// ListLocations handles GET /admin/locations, inactive entries included.
func (s *Server) ListLocations(c echo.Context) error {
	all := s.handlers.Locations.All()

	response := make([]Location, len(all))
	for i, loc := range all {
		response[i] = Location{
			ID:          loc.ID(),
			Name:        loc.Name(),
			DisplayName: loc.DisplayName(),
			Kind:        loc.Kind().String(),
			Fee:         loc.Fee().String(),
			Active:      loc.IsActive(),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// ActivateLocation handles POST /admin/locations/:id/activate.
func (s *Server) ActivateLocation(c echo.Context) error {
	cmd, err := commands.NewActivateLocationCommand(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}
	return s.manageLocation(c, cmd)
}

// DeactivateLocation handles POST /admin/locations/:id/deactivate.
func (s *Server) DeactivateLocation(c echo.Context) error {
	cmd, err := commands.NewDeactivateLocationCommand(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}
	return s.manageLocation(c, cmd)
}

// UpdateLocationFee handles PUT /admin/locations/:id/fee.
func (s *Server) UpdateLocationFee(c echo.Context) error {
	fee, err := bindFee(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}
	cmd, err := commands.NewUpdateLocationFeeCommand(c.Param("id"), fee)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}
	return s.manageLocation(c, cmd)
}

// UpdateAllDeliveryFees handles PUT /admin/locations/fees.
func (s *Server) UpdateAllDeliveryFees(c echo.Context) error {
	fee, err := bindFee(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}
	cmd, err := commands.NewUpdateAllDeliveryFeesCommand(fee)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}
	return s.manageLocation(c, cmd)
}

// GetFollowUpOrders handles GET /admin/orders/follow-up?limit=N.
func (s *Server) GetFollowUpOrders(c echo.Context) error {
	limit := defaultFollowUpLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "limit must be a number"})
		}
		limit = n
	}

	query, err := queries.NewGetFollowUpOrdersQuery(limit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}

	orders, err := s.handlers.FollowUpOrders.Handle(c.Request().Context(), query)
	if err != nil {
		s.logger.Error("follow-up orders lookup failed", "error", err)
		return c.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	response := make([]FollowUpOrder, len(orders))
	for i, o := range orders {
		response[i] = FollowUpOrder{
			OrderID:          o.OrderID,
			PhoneNumber:      o.PhoneNumber,
			Status:           o.Status.String(),
			Reason:           o.Reason,
			SheetSyncPending: o.SheetSyncPending,
			CreatedAt:        o.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) manageLocation(c echo.Context, cmd commands.ManageLocationCommand) error {
	err := s.handlers.ManageLocation.Handle(c.Request().Context(), cmd)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, errs.ErrObjectNotFound):
		return c.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "Location not found"})
	case errors.Is(err, errs.ErrValueIsInvalid):
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	default:
		s.logger.Error("location update failed", "action", cmd.Action().String(), "error", err)
		return c.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to update location",
		})
	}
}

func bindFee(c echo.Context) (kernel.Money, error) {
	var body FeeUpdate
	if err := c.Bind(&body); err != nil {
		return kernel.Money{}, errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return kernel.ParseMoney(body.Fee)
}
