// Package queries contains read-only operations served straight from the
// database, bypassing the domain aggregates.
package queries

import (
	"errors"
	"time"

	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderStatusQueryIsNotConstructed = errors.New(
	"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
)

// GetOrderStatusQuery looks up the public status of one order by its code.
//
// Example:
//
//	query, err := NewGetOrderStatusQuery(c.Param("code"))
//	if err != nil {
//	    return echo.NewHTTPError(http.StatusNotFound)
//	}
//	status, err := handler.Handle(ctx, query)
type GetOrderStatusQuery struct {
	code order.Code

	guard guard.ConstructorGuard
}

// NewGetOrderStatusQuery creates the query. Malformed codes are rejected.
func NewGetOrderStatusQuery(code string) (GetOrderStatusQuery, error) {
	c, err := order.ParseCode(code)
	if err != nil {
		return GetOrderStatusQuery{}, err
	}
	return GetOrderStatusQuery{code: c, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderStatusQuery) Code() order.Code {
	return q.code
}

// Validate ensures the query was created through the constructor.
func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

// GetOrderStatusQueryResponse is the public view of an order.
type GetOrderStatusQueryResponse struct {
	OrderID      string
	Status       order.Status
	TotalAmount  decimal.Decimal
	DeliveryDate time.Time
	CreatedAt    time.Time
}
