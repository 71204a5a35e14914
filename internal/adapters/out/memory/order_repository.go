package memory

import (
	"context"
	"fmt"
	"sort"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"
)

// OrderRepository implements ports.OrderRepository.
type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	snap := o.Snapshot()

	return r.uow.write(write{
		check: func(s *Store) error {
			for _, existing := range s.orders {
				if existing.ID.IsEqual(snap.ID) || existing.Code == snap.Code ||
					existing.VerificationToken.IsEqual(snap.VerificationToken) {
					return errs.NewValueIsInvalidErrorWithCause("order",
						fmt.Errorf("duplicate id, code or token for %s", snap.Code))
				}
			}
			return nil
		},
		apply: func(s *Store) {
			s.orders[snap.ID] = snap
		},
	})
}

// Update writes everything except the decision fields. The pending sheet
// sync is raised but never cleared.
func (r *OrderRepository) Update(_ context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	snap := o.Snapshot()

	return r.uow.write(write{
		check: func(s *Store) error {
			if _, ok := s.orders[snap.ID]; !ok {
				return errs.NewObjectNotFoundError("order", snap.ID.String())
			}
			return nil
		},
		apply: func(s *Store) {
			stored := s.orders[snap.ID]
			snap.Status, snap.DecidedAt = stored.Status, stored.DecidedAt
			snap.SheetSyncPending = snap.SheetSyncPending || stored.SheetSyncPending
			s.orders[snap.ID] = snap
		},
	})
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	return r.find("id", id.String(), func(o order.Snapshot) bool { return o.ID.IsEqual(id) })
}

func (r *OrderRepository) GetByCode(_ context.Context, code order.Code) (*order.Order, error) {
	return r.find("code", code.String(), func(o order.Snapshot) bool { return o.Code == code })
}

func (r *OrderRepository) GetByToken(_ context.Context, token kernel.UUID) (*order.Order, error) {
	return r.find("verification token", token.String(), func(o order.Snapshot) bool {
		return o.VerificationToken.IsEqual(token)
	})
}

func (r *OrderRepository) DecideIfPending(_ context.Context, o *order.Order) (bool, error) {
	id, status, decidedAt := o.ID(), o.Status(), o.DecidedAt()
	if !status.IsFinal() {
		return false, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s is not a decision", status))
	}

	pending := func(s *Store) bool {
		stored, ok := s.orders[id]
		return ok && stored.Status == order.Pending
	}

	var changed bool
	r.uow.read(func(s *Store) { changed = pending(s) })
	if !changed {
		return false, nil
	}

	err := r.uow.write(write{
		check: func(s *Store) error {
			if !pending(s) {
				return errs.NewVersionIsInvalidError("order status")
			}
			return nil
		},
		apply: func(s *Store) {
			stored := s.orders[id]
			stored.Status, stored.DecidedAt = status, decidedAt
			s.orders[id] = stored
		},
	})
	return err == nil, err
}

func (r *OrderRepository) ClearSheetSyncPending(_ context.Context, o *order.Order) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	id, status := o.ID(), o.Status()

	current := func(s *Store) bool {
		stored, ok := s.orders[id]
		return ok && stored.Status == status
	}

	var cleared bool
	r.uow.read(func(s *Store) { cleared = current(s) })
	if !cleared {
		return false, nil
	}

	// a decision committed in between leaves the flag raised, like the SQL conditional update
	err := r.uow.write(write{
		check: func(*Store) error { return nil },
		apply: func(s *Store) {
			if current(s) {
				stored := s.orders[id]
				stored.SheetSyncPending = false
				s.orders[id] = stored
			}
		},
	})
	return err == nil, err
}

func (r *OrderRepository) GetSheetSyncPending(_ context.Context, limit int) ([]*order.Order, error) {
	var snaps []order.Snapshot
	r.uow.read(func(s *Store) {
		for _, o := range s.orders {
			if o.SheetSyncPending {
				snaps = append(snaps, o)
			}
		}
	})
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.Before(snaps[j].CreatedAt) })
	if len(snaps) > limit {
		snaps = snaps[:limit]
	}

	result := make([]*order.Order, 0, len(snaps))
	for _, snap := range snaps {
		o, err := order.RestoreOrder(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}

func (r *OrderRepository) find(param, value string, match func(order.Snapshot) bool) (*order.Order, error) {
	var (
		snap  order.Snapshot
		found bool
	)
	r.uow.read(func(s *Store) {
		for _, o := range s.orders {
			if match(o) {
				snap, found = o, true
				return
			}
		}
	})
	if !found {
		return nil, errs.NewObjectNotFoundError(param, value)
	}
	return order.RestoreOrder(snap)
}
