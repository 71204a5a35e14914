package ports

import (
	"context"
	"io"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"
)

// ArtifactStore keeps rendered QR codes and payment screenshots and returns
// a public reference (URL) to each stored artifact.
type ArtifactStore interface {
	Put(ctx context.Context, name string, content io.Reader) (string, error)
}

// PaymentIntent is what a payment QR code asks the customer to pay.
type PaymentIntent struct {
	OrderCode order.Code
	Amount    kernel.Money
}

// QRRenderer renders a payment QR code and returns a URL the messenger can send.
type QRRenderer interface {
	RenderPaymentQR(ctx context.Context, intent PaymentIntent) (string, error)
}
