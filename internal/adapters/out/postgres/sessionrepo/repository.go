package sessionrepo

import (
	"context"
	"errors"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/session"
	"orderbot/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionRepository implements ports.SessionRepository using GORM.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GORM session repository.
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Get retrieves the session of phone.
func (r *GormSessionRepository) Get(ctx context.Context, phone kernel.PhoneNumber) (*session.Session, error) {
	if err := phone.Validate(); err != nil {
		return nil, err
	}

	var dto SessionDTO
	if err := r.db.WithContext(ctx).First(&dto, "phone_number = ?", phone.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("session", phone.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Save inserts a never-saved session or updates one whose stored version is unchanged.
func (r *GormSessionRepository) Save(ctx context.Context, s *session.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	expected := s.Version()
	dto := fromDomain(s, expected+1)

	var result *gorm.DB
	if s.IsNew() {
		result = r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&dto)
	} else {
		result = r.db.WithContext(ctx).
			Model(&SessionDTO{}).
			Where("phone_number = ? AND version = ?", dto.PhoneNumber, expected).
			Select("*").
			Updates(&dto)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidError("session")
	}

	s.MarkSaved(dto.Version)
	return nil
}
