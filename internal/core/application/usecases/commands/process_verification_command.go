package commands

import (
	"errors"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"
	"orderbot/internal/pkg/guard"
)

var ErrProcessVerificationCommandIsNotConstructed = errors.New(
	"ProcessVerificationCommand must be created via NewProcessVerificationCommand constructor",
)

// ProcessVerificationCommand applies an operator's verify or reject decision
// to the order holding the given verification token.
//
// Example:
//
//	token, err := kernel.UUIDFromString(c.Param("token"))
//	cmd, err := NewProcessVerificationCommand(token, order.DecisionVerify)
//	o, err := handler.Handle(ctx, cmd)
type ProcessVerificationCommand struct {
	token    kernel.UUID
	decision order.Decision

	guard guard.ConstructorGuard
}

// NewProcessVerificationCommand creates the command.
func NewProcessVerificationCommand(token kernel.UUID, decision order.Decision) (ProcessVerificationCommand, error) {
	if err := token.Validate(); err != nil {
		return ProcessVerificationCommand{}, err
	}
	if decision != order.DecisionVerify && decision != order.DecisionReject {
		return ProcessVerificationCommand{}, errs.NewValueIsInvalidError("decision")
	}

	return ProcessVerificationCommand{
		token:    token,
		decision: decision,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ProcessVerificationCommand) Token() kernel.UUID {
	return c.token
}

func (c ProcessVerificationCommand) Decision() order.Decision {
	return c.decision
}

// Validate ensures the command was created through the constructor.
func (c ProcessVerificationCommand) Validate() error {
	return c.guard.Validate(ErrProcessVerificationCommandIsNotConstructed)
}
