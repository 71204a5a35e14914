package kernel

import (
	"fmt"

	"orderbot/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed indicates that a UUID was not initialized through one of its constructors.
// Validating a zero-value UUID returns this error.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError(
	"UUID must be created via NewUUID, GenerateUUID, UUIDFromString, or UUIDFromBytes")

// UUID is a value object wrapping github.com/google/uuid. It identifies orders
// internally and doubles as the opaque verification token handed to operators.
//
// The zero value is invalid; use NewUUID, GenerateUUID, UUIDFromString or UUIDFromBytes.
//
// Example:
//
//	token, err := kernel.GenerateUUID()
//	if err != nil {
//	    return fmt.Errorf("issue verification token: %w", err)
//	}
//	link := baseURL + "/verify/" + token.String()
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random (version 4) UUID. It panics if the system
// randomness source fails; use GenerateUUID where that must surface as an error.
func NewUUID() UUID {
	return UUID{
		id: uuid.New(),
	}
}

// GenerateUUID generates a random (version 4) UUID and reports a failing
// randomness source as an error instead of panicking. Order creation uses it
// so that an order is never persisted with a missing identifier or token.
func GenerateUUID() (UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return UUID{}, fmt.Errorf("generate UUID: %w", err)
	}
	return UUID{id: id}, nil
}

// UUIDFromString parses a UUID from its textual form. The standard, braced,
// urn-prefixed and hyphen-less formats are accepted.
//
// Example:
//
//	token, err := kernel.UUIDFromString(c.Param("token"))
//	if err != nil {
//	    return fmt.Errorf("invalid verification token: %w", err)
//	}
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}
	return newID, nil
}

// UUIDFromBytes creates a UUID from exactly 16 bytes, as read back from the database.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}

	return newID, nil
}

// String returns the canonical "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" form.
func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying google/uuid value for persistence adapters.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual reports whether both UUIDs hold the same value.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate returns ErrUUIDIsNotConstructed for the nil UUID.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
