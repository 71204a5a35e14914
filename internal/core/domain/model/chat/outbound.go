package chat

import (
	"fmt"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"
)

// MaxQuickReplies is the platform limit of reply buttons per message.
const MaxQuickReplies = 3

// MaxListRows is the platform limit of rows across all sections of a list message.
const MaxListRows = 10

// MessageKind selects how an OutboundMessage is rendered by the messenger.
type MessageKind int

const (
	KindText MessageKind = iota + 1
	KindQuickReplies
	KindList
	KindImage
)

func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindQuickReplies:
		return "quick_replies"
	case KindList:
		return "list"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Option is one reply button or list row.
type Option struct {
	ID          string
	Title       string
	Description string
}

// Section groups list rows under a title.
type Section struct {
	Title string
	Rows  []Option
}

// OutboundMessage is a command for the messenger. Build it with one of the
// Text, QuickReplies, List or Image constructors.
type OutboundMessage struct {
	To          kernel.PhoneNumber
	Kind        MessageKind
	Body        string
	Options     []Option
	ButtonLabel string
	Sections    []Section
	ImageURL    string
	Caption     string
}

// Text is a plain text message.
func Text(to kernel.PhoneNumber, body string) OutboundMessage {
	return OutboundMessage{To: to, Kind: KindText, Body: body}
}

// QuickReplies is a message with up to MaxQuickReplies reply buttons.
func QuickReplies(to kernel.PhoneNumber, body string, options []Option) (OutboundMessage, error) {
	if len(options) == 0 || len(options) > MaxQuickReplies {
		return OutboundMessage{}, errs.NewValueIsOutOfRangeError("quick reply options", len(options), 1, MaxQuickReplies)
	}
	return OutboundMessage{To: to, Kind: KindQuickReplies, Body: body, Options: options}, nil
}

// List is a message that opens a selectable list behind buttonLabel.
func List(to kernel.PhoneNumber, body, buttonLabel string, sections []Section) (OutboundMessage, error) {
	rows := 0
	for _, s := range sections {
		rows += len(s.Rows)
	}
	if rows == 0 || rows > MaxListRows {
		return OutboundMessage{}, errs.NewValueIsOutOfRangeError("list rows", rows, 1, MaxListRows)
	}
	if buttonLabel == "" {
		return OutboundMessage{}, errs.NewValueIsRequiredError("list button label")
	}
	return OutboundMessage{To: to, Kind: KindList, Body: body, ButtonLabel: buttonLabel, Sections: sections}, nil
}

// Image is an image message with a caption.
func Image(to kernel.PhoneNumber, url, caption string) OutboundMessage {
	return OutboundMessage{To: to, Kind: KindImage, ImageURL: url, Caption: caption}
}

// String is used in logs.
func (m OutboundMessage) String() string {
	return fmt.Sprintf("%s message to %s", m.Kind, m.To)
}
