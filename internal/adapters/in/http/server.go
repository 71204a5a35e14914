package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"orderbot/internal/core/application/usecases/commands"
	"orderbot/internal/core/application/usecases/queries"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const defaultWebhookWorkers = 4

type InboundEventHandler interface {
	Handle(ctx context.Context, command commands.HandleInboundEventCommand) error
}

type VerificationHandler interface {
	Handle(ctx context.Context, command commands.ProcessVerificationCommand) (*order.Order, error)
}

type LocationHandler interface {
	Handle(ctx context.Context, command commands.ManageLocationCommand) error
}

type OrderStatusReader interface {
	Handle(ctx context.Context, query queries.GetOrderStatusQuery) (queries.GetOrderStatusQueryResponse, error)
}

type FollowUpOrdersReader interface {
	Handle(ctx context.Context, query queries.GetFollowUpOrdersQuery) ([]queries.GetFollowUpOrdersQueryResponse, error)
}

// LocationLister is satisfied by *location.Catalog.
type LocationLister interface {
	All() []location.DeliveryLocation
}

// Handlers groups the use cases the HTTP surface exposes.
type Handlers struct {
	InboundEvent   InboundEventHandler
	Verification   VerificationHandler
	ManageLocation LocationHandler
	OrderStatus    OrderStatusReader
	FollowUpOrders FollowUpOrdersReader
	Locations      LocationLister
}

// Options configures access control and webhook fan-out.
type Options struct {
	// VerifyToken is echoed back by the webhook subscription handshake.
	VerifyToken string

	// AdminToken guards the /admin group. The group is not mounted when it is empty.
	AdminToken string

	// WebhookWorkers is the number of lanes handling inbound events. Events of
	// one phone always share a lane.
	WebhookWorkers int
}

// Server routes HTTP requests to application use cases.
type Server struct {
	handlers Handlers
	options  Options
	queue    *eventQueue
	logger   *slog.Logger
}

// NewServer creates the server and starts its inbound event workers. Call
// Close to stop them.
func NewServer(handlers Handlers, options Options, logger *slog.Logger) *Server {
	if options.WebhookWorkers < 1 {
		options.WebhookWorkers = defaultWebhookWorkers
	}
	logger = logger.With("component", "http")
	return &Server{
		handlers: handlers,
		options:  options,
		queue:    newEventQueue(handlers.InboundEvent, options.WebhookWorkers, logger),
		logger:   logger,
	}
}

// Close waits for queued inbound events to be handled. Events received
// afterwards are dropped.
func (s *Server) Close() {
	s.queue.close()
}

// Register mounts all routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)

	e.GET("/webhook", s.VerifyWebhook)
	e.POST("/webhook", s.ReceiveWebhook)

	e.GET("/verify/:token", s.VerifyPayment)
	e.GET("/reject/:token", s.RejectPayment)
	e.GET("/order/:code", s.GetOrderStatus)

	if s.options.AdminToken == "" {
		s.logger.Warn("ADMIN_TOKEN is empty, admin routes are disabled")
		return
	}

	admin := e.Group("/admin", middleware.KeyAuth(s.validateAdminKey))
	admin.GET("/locations", s.ListLocations)
	admin.POST("/locations/:id/activate", s.ActivateLocation)
	admin.POST("/locations/:id/deactivate", s.DeactivateLocation)
	admin.PUT("/locations/:id/fee", s.UpdateLocationFee)
	admin.PUT("/locations/fees", s.UpdateAllDeliveryFees)
	admin.GET("/orders/follow-up", s.GetFollowUpOrders)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// VerifyPayment handles GET /verify/:token.
func (s *Server) VerifyPayment(c echo.Context) error {
	return s.decide(c, order.DecisionVerify)
}

// RejectPayment handles GET /reject/:token.
func (s *Server) RejectPayment(c echo.Context) error {
	return s.decide(c, order.DecisionReject)
}

func (s *Server) decide(c echo.Context, decision order.Decision) error {
	token, err := kernel.UUIDFromString(c.Param("token"))
	if err != nil {
		return c.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "Unknown verification link"})
	}

	cmd, err := commands.NewProcessVerificationCommand(token, decision)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}

	o, err := s.handlers.Verification.Handle(c.Request().Context(), cmd)
	if errors.Is(err, errs.ErrVerificationConflict) {
		return c.JSON(http.StatusOK, VerificationResult{
			Changed: false,
			Message: "Order not found or already processed",
		})
	}
	if err != nil {
		s.logger.Error("verification failed", "decision", decision.String(), "error", err)
		return c.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to process verification",
		})
	}

	return c.JSON(http.StatusOK, VerificationResult{
		Changed: true,
		OrderID: o.Code().String(),
		Status:  o.Status().String(),
		Message: "Payment " + o.Status().String(),
	})
}

// GetOrderStatus handles GET /order/:code.
func (s *Server) GetOrderStatus(c echo.Context) error {
	query, err := queries.NewGetOrderStatusQuery(c.Param("code"))
	if err != nil {
		return c.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "Order not found"})
	}

	resp, err := s.handlers.OrderStatus.Handle(c.Request().Context(), query)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return c.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "Order not found"})
	}
	if err != nil {
		s.logger.Error("order status lookup failed", "code", query.Code().String(), "error", err)
		return c.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve order",
		})
	}

	return c.JSON(http.StatusOK, OrderStatus{
		OrderID:      resp.OrderID,
		Status:       resp.Status.String(),
		TotalAmount:  resp.TotalAmount.StringFixed(2),
		DeliveryDate: resp.DeliveryDate.Format("2006-01-02"),
		CreatedAt:    resp.CreatedAt,
	})
}

func (s *Server) validateAdminKey(key string, _ echo.Context) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.options.AdminToken)) == 1, nil
}
