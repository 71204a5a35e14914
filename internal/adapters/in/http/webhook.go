package http

import (
	"net/http"

	"orderbot/internal/core/application/usecases/commands"
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

const hubModeSubscribe = "subscribe"

// WebhookPayload is the subset of the WhatsApp Cloud API notification body
// the ordering dialogue reads. Status callbacks are ignored.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	Messages []WebhookMessage `json:"messages"`
}

type WebhookMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Text        *WebhookText        `json:"text,omitempty"`
	Interactive *WebhookInteractive `json:"interactive,omitempty"`
	Button      *WebhookButton      `json:"button,omitempty"`
	Location    *WebhookLocation    `json:"location,omitempty"`
	Image       *WebhookMedia       `json:"image,omitempty"`
	Document    *WebhookMedia       `json:"document,omitempty"`
	Audio       *WebhookMedia       `json:"audio,omitempty"`
	Video       *WebhookMedia       `json:"video,omitempty"`
	Sticker     *WebhookMedia       `json:"sticker,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookInteractive struct {
	Type        string        `json:"type"`
	ButtonReply *WebhookReply `json:"button_reply,omitempty"`
	ListReply   *WebhookReply `json:"list_reply,omitempty"`
}

type WebhookReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WebhookButton is a tap on a template quick-reply button.
type WebhookButton struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

type WebhookLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

type WebhookMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
}

// VerifyWebhook handles GET /webhook, the subscription handshake.
func (s *Server) VerifyWebhook(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode != hubModeSubscribe || s.options.VerifyToken == "" || token != s.options.VerifyToken {
		s.logger.Warn("webhook verification refused", "mode", mode)
		return c.String(http.StatusForbidden, "Forbidden")
	}
	return c.String(http.StatusOK, challenge)
}

// ReceiveWebhook handles POST /webhook. The platform retries anything but a
// 200, so malformed bodies are logged and acknowledged. Events are queued and
// the request returns before any of them is handled.
func (s *Server) ReceiveWebhook(c echo.Context) error {
	var payload WebhookPayload
	if err := c.Bind(&payload); err != nil {
		s.logger.Warn("malformed webhook body", "error", err)
		return c.NoContent(http.StatusOK)
	}

	for _, cmd := range s.decodeEvents(payload) {
		if !s.queue.enqueue(cmd) {
			s.logger.Warn("server is shutting down, event dropped",
				"phone", cmd.Event().Phone.String(), "message_id", cmd.Event().MessageID)
		}
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) decodeEvents(payload WebhookPayload) []commands.HandleInboundEventCommand {
	var result []commands.HandleInboundEventCommand

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				event, ok := decodeMessage(msg)
				if !ok {
					s.logger.Info("ignoring unsupported message", "type", msg.Type, "message_id", msg.ID)
					continue
				}
				phone, err := kernel.NewPhoneNumber(msg.From)
				if err != nil {
					s.logger.Warn("ignoring message from invalid sender", "from", msg.From, "error", err)
					continue
				}
				event.Phone = phone

				cmd, err := commands.NewHandleInboundEventCommand(event)
				if err != nil {
					s.logger.Warn("ignoring invalid event", "message_id", msg.ID, "error", err)
					continue
				}
				result = append(result, cmd)
			}
		}
	}
	return result
}

// decodeMessage maps one platform message onto an InboundEvent without the sender.
func decodeMessage(msg WebhookMessage) (chat.InboundEvent, bool) {
	event := chat.InboundEvent{MessageID: msg.ID}

	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return event, false
		}
		event.Type = chat.EventText
		event.Text = msg.Text.Body

	case "interactive":
		if msg.Interactive == nil {
			return event, false
		}
		reply := msg.Interactive.ButtonReply
		if reply == nil {
			reply = msg.Interactive.ListReply
		}
		if reply == nil {
			return event, false
		}
		event.Type = chat.EventInteractiveReply
		event.Reply = chat.Reply{ID: reply.ID, Title: reply.Title}

	case "button":
		if msg.Button == nil {
			return event, false
		}
		event.Type = chat.EventInteractiveReply
		event.Reply = chat.Reply{ID: msg.Button.Payload, Title: msg.Button.Text}

	case "location":
		if msg.Location == nil {
			return event, false
		}
		event.Type = chat.EventLocationShare
		event.Location = chat.SharedLocation{
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
			Name:      msg.Location.Name,
			Address:   msg.Location.Address,
		}

	case "image", "document", "audio", "video", "sticker":
		media := mediaOf(msg)
		if media == nil {
			return event, false
		}
		event.Type = chat.EventMedia
		event.Media = chat.Media{
			ID:       media.ID,
			Type:     msg.Type,
			MimeType: media.MimeType,
			Caption:  media.Caption,
		}

	default:
		return event, false
	}
	return event, true
}

func mediaOf(msg WebhookMessage) *WebhookMedia {
	switch msg.Type {
	case "image":
		return msg.Image
	case "document":
		return msg.Document
	case "audio":
		return msg.Audio
	case "video":
		return msg.Video
	case "sticker":
		return msg.Sticker
	}
	return nil
}
