// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"orderbot/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// SessionRepoFactory provides access to session repository within a transaction.
	SessionRepoFactory interface {
		SessionRepository() ports.SessionRepository
	}

	// OrderUoW manages transactions for order-only operations:
	// verification decisions, follow-up flags and sheet sync bookkeeping.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// ConversationUoW commits a conversation turn: the session and, when the
	// turn created one, the new order.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   err = uow.OrderRepository().Add(ctx, o)
	//   err = uow.SessionRepository().Save(ctx, s)
	//
	//   err = uow.Commit(ctx)
	ConversationUoW interface {
		TxManager
		SessionRepoFactory
		OrderRepoFactory
	}

	// ConversationUoWFactory creates new conversation unit of work instances.
	ConversationUoWFactory interface {
		Create() ConversationUoW
	}
)
