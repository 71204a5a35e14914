// Package whatsapp talks to the WhatsApp Cloud API: it sends outbound
// messages and downloads media customers attach.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/ports"
	"orderbot/internal/pkg/errs"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://graph.facebook.com/v18.0"

	defaultTimeout       = 10 * time.Second
	defaultRatePerSecond = 20
	maxMediaSize         = 16 << 20
	integrationName      = "whatsapp"
)

// Config holds the Cloud API credentials.
type Config struct {
	BaseURL       string
	PhoneNumberID string
	AccessToken   string
	RatePerSecond float64
	Timeout       time.Duration
}

// Client implements ports.Messenger and ports.MediaFetcher.
type Client struct {
	client        *http.Client
	baseURL       string
	phoneNumberID string
	accessToken   string
	limiter       *rate.Limiter
	logger        *slog.Logger
}

var (
	_ ports.Messenger    = (*Client)(nil)
	_ ports.MediaFetcher = (*Client)(nil)
)

// NewClient creates a Cloud API client. PhoneNumberID and AccessToken are required.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.PhoneNumberID == "" {
		return nil, errs.NewValueIsRequiredError("whatsapp phone number id")
	}
	if cfg.AccessToken == "" {
		return nil, errs.NewValueIsRequiredError("whatsapp access token")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultRatePerSecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		client:        &http.Client{Timeout: cfg.Timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		logger:        logger.With("component", "whatsapp"),
	}, nil
}

// Send delivers one message. Non-2xx replies are returned as errs.IntegrationFailureError.
func (c *Client) Send(ctx context.Context, msg chat.OutboundMessage) error {
	body, err := newMessageRequest(msg)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errs.NewIntegrationFailureError(integrationName, err)
	}

	endpoint, err := url.JoinPath(c.baseURL, c.phoneNumberID, "messages")
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.DebugContext(ctx, "message sent", "to", msg.To.String(), "kind", msg.Kind.String())
	return nil
}

// FetchMedia resolves mediaID to its download URL and downloads the content.
func (c *Client) FetchMedia(ctx context.Context, mediaID string) (ports.MediaContent, error) {
	if mediaID == "" {
		return ports.MediaContent{}, errs.NewValueIsRequiredError("media id")
	}

	endpoint, err := url.JoinPath(c.baseURL, mediaID)
	if err != nil {
		return ports.MediaContent{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.MediaContent{}, err
	}
	resp, err := c.do(req)
	if err != nil {
		return ports.MediaContent{}, err
	}
	var info mediaInfo
	err = json.NewDecoder(resp.Body).Decode(&info)
	resp.Body.Close()
	if err != nil {
		return ports.MediaContent{}, errs.NewIntegrationFailureError(integrationName, fmt.Errorf("decode media info: %w", err))
	}
	if info.URL == "" {
		return ports.MediaContent{}, errs.NewIntegrationFailureError(integrationName, fmt.Errorf("media %s has no url", mediaID))
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return ports.MediaContent{}, err
	}
	resp, err = c.do(req)
	if err != nil {
		return ports.MediaContent{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize+1))
	if err != nil {
		return ports.MediaContent{}, errs.NewIntegrationFailureError(integrationName, err)
	}
	if len(data) > maxMediaSize {
		return ports.MediaContent{}, errs.NewIntegrationFailureError(integrationName,
			fmt.Errorf("media %s exceeds %d bytes", mediaID, maxMediaSize))
	}

	mimeType := info.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	return ports.MediaContent{Data: data, MimeType: mimeType}, nil
}

// do sends req with the bearer token and turns transport errors and non-2xx
// replies into errs.IntegrationFailureError. The caller closes the body on success.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.NewIntegrationFailureError(integrationName, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	var apiErr errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
		return nil, errs.NewIntegrationFailureError(integrationName,
			fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, apiErr.Error.Message))
	}
	return nil, errs.NewIntegrationFailureError(integrationName,
		fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode))
}
