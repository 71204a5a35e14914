package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves screenshot, address and follow-up columns of an existing
// order. Status and decided_at are written by DecideIfPending only, and
// sheet_sync_pending is only ever raised here; ClearSheetSyncPending lowers it.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"delivery_address":       dto.DeliveryAddress,
			"maps_link":              dto.MapsLink,
			"payment_screenshot_ref": dto.PaymentScreenshotRef,
			"follow_up_required":     dto.FollowUpRequired,
			"follow_up_reason":       dto.FollowUpReason,
			"sheet_sync_pending":     gorm.Expr("sheet_sync_pending OR ?", dto.SheetSyncPending),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "order", id.String(), "id = ?", id.Bytes())
}

// GetByCode retrieves an order by its customer-facing code.
func (r *GormOrderRepository) GetByCode(ctx context.Context, code order.Code) (*order.Order, error) {
	return r.first(ctx, "order code", code.String(), "code = ?", code.String())
}

// GetByToken retrieves an order by its verification token.
func (r *GormOrderRepository) GetByToken(ctx context.Context, token kernel.UUID) (*order.Order, error) {
	if err := token.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "verification token", token.String(), "verification_token = ?", token.Bytes())
}

// DecideIfPending writes the aggregate's decided status if the stored row is still pending.
func (r *GormOrderRepository) DecideIfPending(ctx context.Context, aggregate *order.Order) (bool, error) {
	if err := aggregate.Validate(); err != nil {
		return false, err
	}
	if !aggregate.Status().IsFinal() {
		return false, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a decision", aggregate.Status()))
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("verification_token = ? AND status = ?", aggregate.VerificationToken().Bytes(), order.Pending.String()).
		Updates(map[string]any{
			"status":     aggregate.Status().String(),
			"decided_at": aggregate.DecidedAt(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ClearSheetSyncPending lowers sheet_sync_pending if the stored status still
// equals the aggregate's, i.e. the exported row is current.
func (r *GormOrderRepository) ClearSheetSyncPending(ctx context.Context, aggregate *order.Order) (bool, error) {
	if err := aggregate.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ?", aggregate.ID().Bytes(), aggregate.Status().String()).
		Update("sheet_sync_pending", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetSheetSyncPending returns up to limit orders with a stale spreadsheet row, oldest first.
func (r *GormOrderRepository) GetSheetSyncPending(ctx context.Context, limit int) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("sheet_sync_pending = ?", true).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) first(ctx context.Context, param, value, query string, args ...any) (*order.Order, error) {
	var dto OrderDTO
	if err := r.db.WithContext(ctx).Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(param, value)
		}
		return nil, err
	}

	return toDomain(dto)
}
