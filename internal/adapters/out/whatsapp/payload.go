package whatsapp

import (
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/pkg/errs"
)

const messagingProduct = "whatsapp"

type messageRequest struct {
	MessagingProduct string              `json:"messaging_product"`
	To               string              `json:"to"`
	Type             string              `json:"type"`
	Text             *textBody           `json:"text,omitempty"`
	Interactive      *interactiveMessage `json:"interactive,omitempty"`
	Image            *imageBody          `json:"image,omitempty"`
}

type textBody struct {
	Body string `json:"body"`
}

type imageBody struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type interactiveMessage struct {
	Type   string            `json:"type"`
	Body   textBody          `json:"body"`
	Action interactiveAction `json:"action"`
}

type interactiveAction struct {
	Buttons  []replyButton `json:"buttons,omitempty"`
	Button   string        `json:"button,omitempty"`
	Sections []listSection `json:"sections,omitempty"`
}

type replyButton struct {
	Type  string     `json:"type"`
	Reply buttonInfo `json:"reply"`
}

type buttonInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type listSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []listRow `json:"rows"`
}

type listRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// newMessageRequest renders msg in the Cloud API message format.
func newMessageRequest(msg chat.OutboundMessage) (messageRequest, error) {
	req := messageRequest{MessagingProduct: messagingProduct, To: msg.To.String()}

	switch msg.Kind {
	case chat.KindText:
		req.Type = "text"
		req.Text = &textBody{Body: msg.Body}

	case chat.KindQuickReplies:
		buttons := make([]replyButton, len(msg.Options))
		for i, opt := range msg.Options {
			buttons[i] = replyButton{Type: "reply", Reply: buttonInfo{ID: opt.ID, Title: opt.Title}}
		}
		req.Type = "interactive"
		req.Interactive = &interactiveMessage{
			Type:   "button",
			Body:   textBody{Body: msg.Body},
			Action: interactiveAction{Buttons: buttons},
		}

	case chat.KindList:
		sections := make([]listSection, len(msg.Sections))
		for i, s := range msg.Sections {
			rows := make([]listRow, len(s.Rows))
			for j, r := range s.Rows {
				rows[j] = listRow{ID: r.ID, Title: r.Title, Description: r.Description}
			}
			sections[i] = listSection{Title: s.Title, Rows: rows}
		}
		req.Type = "interactive"
		req.Interactive = &interactiveMessage{
			Type:   "list",
			Body:   textBody{Body: msg.Body},
			Action: interactiveAction{Button: msg.ButtonLabel, Sections: sections},
		}

	case chat.KindImage:
		req.Type = "image"
		req.Image = &imageBody{Link: msg.ImageURL, Caption: msg.Caption}

	default:
		return messageRequest{}, errs.NewValueIsInvalidError("message kind " + msg.Kind.String())
	}
	return req, nil
}
