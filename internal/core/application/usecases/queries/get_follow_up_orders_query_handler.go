package queries

import (
	"context"

	"orderbot/internal/core/domain/model/order"

	"gorm.io/gorm"
)

type GetFollowUpOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetFollowUpOrdersQueryHandler creates a handler reading flagged orders from db.
func NewGetFollowUpOrdersQueryHandler(db *gorm.DB) GetFollowUpOrdersQueryHandler {
	return GetFollowUpOrdersQueryHandler{db: db}
}

// Handle returns flagged orders, newest first.
func (h GetFollowUpOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetFollowUpOrdersQuery,
) ([]GetFollowUpOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetFollowUpOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			code,
			phone_number,
			status,
			follow_up_reason,
			sheet_sync_pending,
			created_at
		FROM orders
		WHERE follow_up_required = TRUE
		ORDER BY created_at DESC
		LIMIT ?
	`, query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp   GetFollowUpOrdersQueryResponse
			status string
		)
		err = rows.Scan(
			&resp.OrderID,
			&resp.PhoneNumber,
			&status,
			&resp.Reason,
			&resp.SheetSyncPending,
			&resp.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		resp.Status, err = order.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
