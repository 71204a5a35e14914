package commands

import (
	"errors"

	"orderbot/internal/pkg/errs"
	"orderbot/internal/pkg/guard"
)

var ErrSyncSheetCommandIsNotConstructed = errors.New(
	"SyncSheetCommand must be created via NewSyncSheetCommand constructor",
)

// SyncSheetCommand re-exports orders whose spreadsheet row could not be written.
type SyncSheetCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

// NewSyncSheetCommand creates the command. batchSize bounds the orders handled per run.
func NewSyncSheetCommand(batchSize int) (SyncSheetCommand, error) {
	if batchSize < 1 {
		return SyncSheetCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	return SyncSheetCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SyncSheetCommand) BatchSize() int {
	return c.batchSize
}

// Validate ensures the command was created through the constructor.
func (c SyncSheetCommand) Validate() error {
	return c.guard.Validate(ErrSyncSheetCommandIsNotConstructed)
}
