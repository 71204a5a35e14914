package ports

import (
	"context"

	"orderbot/internal/core/domain/model/chat"
)

// Messenger delivers outbound messages to customers.
type Messenger interface {
	Send(ctx context.Context, msg chat.OutboundMessage) error
}

// MediaContent is a downloaded attachment.
type MediaContent struct {
	Data     []byte
	MimeType string
}

// MediaFetcher downloads attachments the customer sent.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, mediaID string) (MediaContent, error)
}
