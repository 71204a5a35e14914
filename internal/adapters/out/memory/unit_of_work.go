// Package memory is an in-process implementation of the persistence ports.
// It backs local runs without a database (STORAGE=memory) and the
// end-to-end tests of the application layer.
//
// Writes made inside a transaction are staged and applied atomically on
// Commit, after every staged write has been re-checked against the
// committed state. Reads always see committed state only.
package memory

import (
	"context"
	"errors"
	"sync"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/core/domain/model/session"
	"orderbot/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback outside a transaction.
var ErrNoTransaction = errors.New("no active transaction")

// Store holds committed sessions and orders.
type Store struct {
	mu       sync.Mutex
	sessions map[string]session.Snapshot
	orders   map[kernel.UUID]order.Snapshot
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]session.Snapshot),
		orders:   make(map[kernel.UUID]order.Snapshot),
	}
}

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

// NewUnitOfWorkFactory creates a factory whose units of work share store.
func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// write is a staged change: check runs against committed state, apply mutates it.
type write struct {
	check func(s *Store) error
	apply func(s *Store)
}

// UnitOfWork stages writes between Begin and Commit. Outside a transaction
// every write is applied immediately.
type UnitOfWork struct {
	store  *Store
	inTx   bool
	staged []write
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	u.inTx = true
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	if !u.inTx {
		return ErrNoTransaction
	}
	staged := u.staged
	u.inTx, u.staged = false, nil

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	for _, w := range staged {
		if err := w.check(u.store); err != nil {
			return err
		}
	}
	for _, w := range staged {
		w.apply(u.store)
	}
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.inTx {
		return ErrNoTransaction
	}
	u.inTx, u.staged = false, nil
	return nil
}

func (u *UnitOfWork) SessionRepository() ports.SessionRepository {
	return &SessionRepository{uow: u}
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: u}
}

func (u *UnitOfWork) write(w write) error {
	if u.inTx {
		u.store.mu.Lock()
		err := w.check(u.store)
		u.store.mu.Unlock()
		if err != nil {
			return err
		}
		u.staged = append(u.staged, w)
		return nil
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if err := w.check(u.store); err != nil {
		return err
	}
	w.apply(u.store)
	return nil
}

func (u *UnitOfWork) read(fn func(s *Store)) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	fn(u.store)
}
