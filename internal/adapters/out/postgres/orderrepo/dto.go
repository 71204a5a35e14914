// Package orderrepo persists order aggregates with GORM.
// Every verify/reject decision goes through a conditional update on the
// pending status, so the database arbitrates concurrent link clicks.
package orderrepo

import (
	"time"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the row of the orders table.
type OrderDTO struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code                 string          `gorm:"size:16;uniqueIndex;not null"`
	PhoneNumber          string          `gorm:"size:16;index;not null"`
	DeliveryDate         time.Time       `gorm:"type:date;not null"`
	LocationID           string          `gorm:"size:64;not null"`
	Items                map[int]int     `gorm:"serializer:json;type:jsonb;not null"`
	TotalAmount          decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DeliveryAddress      string          `gorm:"type:text"`
	MapsLink             string          `gorm:"type:text"`
	PaymentScreenshotRef string          `gorm:"type:text"`
	VerificationToken    uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Status               string          `gorm:"size:16;index;not null"`
	CreatedAt            time.Time       `gorm:"not null"`
	DecidedAt            *time.Time
	FollowUpRequired     bool `gorm:"index;not null;default:false"`
	FollowUpReason       string
	SheetSyncPending     bool `gorm:"index;not null;default:false"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:                   o.ID().Bytes(),
		Code:                 o.Code().String(),
		PhoneNumber:          o.Phone().String(),
		DeliveryDate:         o.DeliveryDate().Time(time.UTC),
		LocationID:           o.LocationID(),
		Items:                o.Items(),
		TotalAmount:          o.Total().Decimal(),
		DeliveryAddress:      o.DeliveryAddress(),
		MapsLink:             o.MapsLink(),
		PaymentScreenshotRef: o.ScreenshotRef(),
		VerificationToken:    o.VerificationToken().Bytes(),
		Status:               o.Status().String(),
		CreatedAt:            o.CreatedAt(),
		DecidedAt:            o.DecidedAt(),
		FollowUpRequired:     o.FollowUpRequired(),
		FollowUpReason:       o.FollowUpReason(),
		SheetSyncPending:     o.SheetSyncPending(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	token, err := kernel.UUIDFromBytes(dto.VerificationToken[:])
	if err != nil {
		return nil, err
	}
	code, err := order.ParseCode(dto.Code)
	if err != nil {
		return nil, err
	}
	phone, err := kernel.NewPhoneNumber(dto.PhoneNumber)
	if err != nil {
		return nil, err
	}
	total, err := kernel.NewMoney(dto.TotalAmount)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:   id,
		Code: code,
		Details: order.Details{
			Phone:           phone,
			DeliveryDate:    kernel.DateOf(dto.DeliveryDate),
			LocationID:      dto.LocationID,
			Items:           menu.Selection(dto.Items),
			DeliveryAddress: dto.DeliveryAddress,
			MapsLink:        dto.MapsLink,
		},
		Total:             total,
		ScreenshotRef:     dto.PaymentScreenshotRef,
		VerificationToken: token,
		Status:            status,
		CreatedAt:         dto.CreatedAt,
		DecidedAt:         dto.DecidedAt,
		FollowUpRequired:  dto.FollowUpRequired,
		FollowUpReason:    dto.FollowUpReason,
		SheetSyncPending:  dto.SheetSyncPending,
	})
}
