// Package qr renders UPI payment QR codes.
package qr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"orderbot/internal/core/ports"
	"orderbot/internal/pkg/errs"

	"github.com/skip2/go-qrcode"
)

const (
	imageSize       = 512
	currency        = "INR"
	artifactPrefix  = "qr_"
	integrationName = "qr"
)

// Renderer implements ports.QRRenderer. The PNG is stored through an
// ArtifactStore so the messenger can send it by URL.
type Renderer struct {
	upiID        string
	merchantName string
	store        ports.ArtifactStore
	logger       *slog.Logger
}

var _ ports.QRRenderer = (*Renderer)(nil)

// NewRenderer creates a Renderer paying to upiID. Rendered images are saved in store.
func NewRenderer(upiID, merchantName string, store ports.ArtifactStore, logger *slog.Logger) (*Renderer, error) {
	if upiID == "" {
		return nil, errs.NewValueIsRequiredError("upi id")
	}
	if merchantName == "" {
		return nil, errs.NewValueIsRequiredError("upi merchant name")
	}
	return &Renderer{
		upiID:        upiID,
		merchantName: merchantName,
		store:        store,
		logger:       logger.With("component", "qr"),
	}, nil
}

// PaymentURI returns the UPI deep link for intent, e.g.
// "upi://pay?pa=shop@upi&pn=EeOnam&am=390.00&cu=INR&tn=Order%20EO250825ABCD&tr=EO250825ABCD".
func (r *Renderer) PaymentURI(intent ports.PaymentIntent) string {
	params := []struct{ key, value string }{
		{"pa", r.upiID},
		{"pn", r.merchantName},
		{"am", intent.Amount.String()},
		{"cu", currency},
		{"tn", "Order " + intent.OrderCode.String()},
		{"tr", intent.OrderCode.String()},
	}

	var b strings.Builder
	b.WriteString("upi://pay?")
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(escape(p.value))
	}
	return b.String()
}

// RenderPaymentQR encodes the payment URI as a PNG and stores it as "qr_<order code>".
func (r *Renderer) RenderPaymentQR(ctx context.Context, intent ports.PaymentIntent) (string, error) {
	if intent.OrderCode == "" {
		return "", errs.NewValueIsRequiredError("order code")
	}

	png, err := qrcode.Encode(r.PaymentURI(intent), qrcode.Medium, imageSize)
	if err != nil {
		return "", errs.NewIntegrationFailureError(integrationName, fmt.Errorf("encode qr: %w", err))
	}

	ref, err := r.store.Put(ctx, artifactPrefix+intent.OrderCode.String(), bytes.NewReader(png))
	if err != nil {
		return "", err
	}

	r.logger.InfoContext(ctx, "payment qr rendered", "order", intent.OrderCode.String(), "amount", intent.Amount.String())
	return ref, nil
}

// escape percent-encodes a query value with %20 for spaces, which UPI apps expect.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
