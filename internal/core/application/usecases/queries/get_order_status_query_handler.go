package queries

import (
	"context"
	"database/sql"
	"errors"

	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderStatusQueryHandler reads order status rows.
type GetOrderStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderStatusQueryHandler creates a handler reading orders from db.
func NewGetOrderStatusQueryHandler(db *gorm.DB) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{db: db}
}

// Handle returns the order's public status or an errs.ObjectNotFoundError.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	var (
		resp   GetOrderStatusQueryResponse
		status string
	)
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			code,
			status,
			total_amount,
			delivery_date,
			created_at
		FROM orders
		WHERE code = ?
	`, query.Code().String()).Row().Scan(
		&resp.OrderID,
		&status,
		&resp.TotalAmount,
		&resp.DeliveryDate,
		&resp.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderStatusQueryResponse{}, errs.NewObjectNotFoundError("order code", query.Code().String())
	}
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	resp.Status, err = order.ParseStatus(status)
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}
	return resp, nil
}
