package queries

import (
	"errors"
	"time"

	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"
	"orderbot/internal/pkg/guard"
)

var ErrGetFollowUpOrdersQueryIsNotConstructed = errors.New(
	"GetFollowUpOrdersQuery must be created via NewGetFollowUpOrdersQuery constructor",
)

// GetFollowUpOrdersQuery lists orders an operator has to look at by hand:
// a QR code, screenshot upload or sheet export failed for them.
type GetFollowUpOrdersQuery struct {
	limit int

	guard guard.ConstructorGuard
}

// NewGetFollowUpOrdersQuery creates the query returning at most limit orders, newest first.
func NewGetFollowUpOrdersQuery(limit int) (GetFollowUpOrdersQuery, error) {
	if limit < 1 {
		return GetFollowUpOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return GetFollowUpOrdersQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetFollowUpOrdersQuery) Limit() int {
	return q.limit
}

// Validate ensures the query was created through the constructor.
func (q GetFollowUpOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetFollowUpOrdersQueryIsNotConstructed)
}

// GetFollowUpOrdersQueryResponse is one order needing manual attention.
type GetFollowUpOrdersQueryResponse struct {
	OrderID          string
	PhoneNumber      string
	Status           order.Status
	Reason           string
	SheetSyncPending bool
	CreatedAt        time.Time
}
