// Package chat describes the messages exchanged with a customer: one inbound
// event at a time, and the outbound commands produced in response.
package chat

import (
	"strings"

	"orderbot/internal/core/domain/model/kernel"
)

// EventType classifies an inbound event.
type EventType string

const (
	EventText             EventType = "text"
	EventInteractiveReply EventType = "interactive_reply"
	EventLocationShare    EventType = "location_share"
	EventMedia            EventType = "media"
)

// MediaImage is the media type of payment screenshots.
const MediaImage = "image"

// Reply is the option a customer tapped in a quick-reply or list message.
type Reply struct {
	ID    string
	Title string
}

// SharedLocation is a location pinned by the customer.
type SharedLocation struct {
	Latitude  float64
	Longitude float64
	Name      string
	Address   string
}

// Media references an attachment held by the messaging platform.
type Media struct {
	ID       string
	Type     string
	MimeType string
	Caption  string
}

// InboundEvent is one customer message, already decoded from the platform payload.
// Exactly one of Text, Reply, Location and Media is meaningful, chosen by Type.
type InboundEvent struct {
	MessageID string
	Phone     kernel.PhoneNumber
	Type      EventType
	Text      string
	Reply     Reply
	Location  SharedLocation
	Media     Media
}

// IsStartCommand reports whether the event is the literal "start" text,
// compared case-insensitively after trimming.
func (e InboundEvent) IsStartCommand() bool {
	return e.Type == EventText && strings.EqualFold(strings.TrimSpace(e.Text), "start")
}

// IsImage reports whether the event carries an image attachment.
func (e InboundEvent) IsImage() bool {
	return e.Type == EventMedia && e.Media.ID != "" && e.Media.Type == MediaImage
}
