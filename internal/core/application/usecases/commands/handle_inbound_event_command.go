package commands

import (
	"errors"

	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/pkg/guard"
)

var ErrHandleInboundEventCommandIsNotConstructed = errors.New(
	"HandleInboundEventCommand must be created via NewHandleInboundEventCommand constructor",
)

// HandleInboundEventCommand advances the conversation of the event's sender by one message.
//
// Example:
//
//	cmd, err := NewHandleInboundEventCommand(event)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type HandleInboundEventCommand struct {
	event chat.InboundEvent

	guard guard.ConstructorGuard
}

// NewHandleInboundEventCommand creates the command. The event must carry a valid sender phone.
func NewHandleInboundEventCommand(event chat.InboundEvent) (HandleInboundEventCommand, error) {
	if err := event.Phone.Validate(); err != nil {
		return HandleInboundEventCommand{}, err
	}
	return HandleInboundEventCommand{
		event: event,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Event returns the inbound event.
func (c HandleInboundEventCommand) Event() chat.InboundEvent {
	return c.event
}

// Validate ensures the command was created through the constructor.
func (c HandleInboundEventCommand) Validate() error {
	return c.guard.Validate(ErrHandleInboundEventCommandIsNotConstructed)
}
