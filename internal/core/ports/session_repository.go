// Package ports defines the contracts between the ordering core and its
// infrastructure: persistence, messaging, artifact storage, QR rendering and
// spreadsheet export. Adapters under internal/adapters implement them.
package ports

import (
	"context"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/session"
)

// SessionRepository defines the persistence contract for conversation sessions.
// Sessions are keyed by phone number and never deleted.
type SessionRepository interface {
	// Get returns the session of phone, or an errs.ObjectNotFoundError.
	Get(ctx context.Context, phone kernel.PhoneNumber) (*session.Session, error)

	// Save inserts a new session or updates an existing one if its stored
	// version still equals s.Version(). On success the new version is recorded
	// on s. A lost race returns an error matching errs.ErrConcurrencyConflict.
	Save(ctx context.Context, s *session.Session) error
}
