package memory

import (
	"context"
	"sort"
	"time"

	"orderbot/internal/core/application/usecases/queries"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"
)

// GetOrderStatusQueryHandler answers order lookups from a Store, mirroring
// queries.GetOrderStatusQueryHandler.
type GetOrderStatusQueryHandler struct {
	store *Store
}

// NewGetOrderStatusQueryHandler creates a handler reading from store.
func NewGetOrderStatusQueryHandler(store *Store) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{store: store}
}

func (h GetOrderStatusQueryHandler) Handle(
	_ context.Context,
	query queries.GetOrderStatusQuery,
) (queries.GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return queries.GetOrderStatusQueryResponse{}, err
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	for _, o := range h.store.orders {
		if o.Code == query.Code() {
			return queries.GetOrderStatusQueryResponse{
				OrderID:      o.Code.String(),
				Status:       o.Status,
				TotalAmount:  o.Total.Decimal(),
				DeliveryDate: o.Details.DeliveryDate.Time(time.UTC),
				CreatedAt:    o.CreatedAt,
			}, nil
		}
	}
	return queries.GetOrderStatusQueryResponse{}, errs.NewObjectNotFoundError("order code", query.Code().String())
}

// GetFollowUpOrdersQueryHandler lists flagged orders from a Store, newest first.
type GetFollowUpOrdersQueryHandler struct {
	store *Store
}

// NewGetFollowUpOrdersQueryHandler creates a handler reading from store.
func NewGetFollowUpOrdersQueryHandler(store *Store) GetFollowUpOrdersQueryHandler {
	return GetFollowUpOrdersQueryHandler{store: store}
}

func (h GetFollowUpOrdersQueryHandler) Handle(
	_ context.Context,
	query queries.GetFollowUpOrdersQuery,
) ([]queries.GetFollowUpOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	h.store.mu.Lock()
	flagged := make([]order.Snapshot, 0)
	for _, o := range h.store.orders {
		if o.FollowUpRequired {
			flagged = append(flagged, o)
		}
	}
	h.store.mu.Unlock()

	sort.Slice(flagged, func(i, j int) bool { return flagged[i].CreatedAt.After(flagged[j].CreatedAt) })
	if len(flagged) > query.Limit() {
		flagged = flagged[:query.Limit()]
	}

	result := make([]queries.GetFollowUpOrdersQueryResponse, len(flagged))
	for i, o := range flagged {
		result[i] = queries.GetFollowUpOrdersQueryResponse{
			OrderID:          o.Code.String(),
			PhoneNumber:      o.Details.Phone.String(),
			Status:           o.Status,
			Reason:           o.FollowUpReason,
			SheetSyncPending: o.SheetSyncPending,
			CreatedAt:        o.CreatedAt,
		}
	}
	return result, nil
}
