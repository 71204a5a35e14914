package memory

import (
	"context"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/session"
	"orderbot/internal/pkg/errs"
)

// SessionRepository implements ports.SessionRepository with the same
// optimistic version check as the database adapter.
type SessionRepository struct {
	uow *UnitOfWork
}

func (r *SessionRepository) Get(_ context.Context, phone kernel.PhoneNumber) (*session.Session, error) {
	var (
		snap session.Snapshot
		ok   bool
	)
	r.uow.read(func(s *Store) {
		snap, ok = s.sessions[phone.String()]
	})
	if !ok {
		return nil, errs.NewObjectNotFoundError("phone", phone.String())
	}
	return session.RestoreSession(snap)
}

func (r *SessionRepository) Save(_ context.Context, sess *session.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	key := sess.Phone().String()
	expected := sess.Version()
	snap := sess.Snapshot()
	snap.Version = expected + 1

	return r.uow.write(write{
		check: func(s *Store) error {
			stored, ok := s.sessions[key]
			if (expected == 0 && ok) || (expected != 0 && (!ok || stored.Version != expected)) {
				return errs.NewVersionIsInvalidError("session")
			}
			return nil
		},
		apply: func(s *Store) {
			s.sessions[key] = snap
			sess.MarkSaved(snap.Version)
		},
	})
}
