// Package guard provides ConstructorGuard, a marker that distinguishes values
// built by their constructor from zero values.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing value was produced by its constructor.
// Commands, queries and value objects embed it and call Validate before use,
// so a zero-value command can never reach a handler.
//
// Example:
//
//	var ErrSyncSheetCommandIsNotConstructed = errors.New("SyncSheetCommand must be created via NewSyncSheetCommand")
//
//	type SyncSheetCommand struct {
//	    batchSize int
//	    guard     guard.ConstructorGuard
//	}
//
//	func (c SyncSheetCommand) Validate() error {
//	    return c.guard.Validate(ErrSyncSheetCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard. Otherwise it returns
// validationError, or ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
