// Package sessionrepo persists conversation sessions with GORM.
// Rows are keyed by phone number and guarded by an optimistic version column.
package sessionrepo

import (
	"time"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/core/domain/model/session"

	"github.com/google/uuid"
)

// SessionDTO is the row of the sessions table.
type SessionDTO struct {
	PhoneNumber        string      `gorm:"size:16;primaryKey"`
	Step               string      `gorm:"size:32;not null"`
	SelectedDate       *time.Time  `gorm:"type:date"`
	SelectedLocationID string      `gorm:"size:64"`
	SelectedItems      map[int]int `gorm:"serializer:json;type:jsonb"`
	DeliveryAddress    string      `gorm:"type:text"`
	MapsLink           string      `gorm:"type:text"`
	CurrentOrderID     *uuid.UUID  `gorm:"type:uuid"`
	LastInteraction    time.Time   `gorm:"not null"`
	CreatedAt          time.Time   `gorm:"not null"`
	Version            int64       `gorm:"not null"`
}

// TableName specifies the database table name for sessions.
func (SessionDTO) TableName() string {
	return "sessions"
}

func fromDomain(s *session.Session, version int64) SessionDTO {
	dto := SessionDTO{
		PhoneNumber:        s.Phone().String(),
		Step:               s.Step().String(),
		SelectedLocationID: s.LocationID(),
		SelectedItems:      s.Items(),
		DeliveryAddress:    s.DeliveryAddress(),
		MapsLink:           s.MapsLink(),
		LastInteraction:    s.LastInteraction(),
		CreatedAt:          s.CreatedAt(),
		Version:            version,
	}
	if d := s.SelectedDate(); !d.IsZero() {
		t := d.Time(time.UTC)
		dto.SelectedDate = &t
	}
	if id := s.CurrentOrderID(); id != nil {
		raw := id.Bytes()
		dto.CurrentOrderID = &raw
	}
	return dto
}

func toDomain(dto SessionDTO) (*session.Session, error) {
	phone, err := kernel.NewPhoneNumber(dto.PhoneNumber)
	if err != nil {
		return nil, err
	}
	step, err := session.ParseStep(dto.Step)
	if err != nil {
		return nil, err
	}

	snap := session.Snapshot{
		Phone:           phone,
		Step:            step,
		LocationID:      dto.SelectedLocationID,
		Items:           menu.Selection(dto.SelectedItems),
		DeliveryAddress: dto.DeliveryAddress,
		MapsLink:        dto.MapsLink,
		LastInteraction: dto.LastInteraction,
		CreatedAt:       dto.CreatedAt,
		Version:         dto.Version,
	}
	if dto.SelectedDate != nil {
		snap.SelectedDate = kernel.DateOf(*dto.SelectedDate)
	}
	if dto.CurrentOrderID != nil {
		id, err := kernel.UUIDFromBytes(dto.CurrentOrderID[:])
		if err != nil {
			return nil, err
		}
		snap.CurrentOrderID = &id
	}

	return session.RestoreSession(snap)
}
