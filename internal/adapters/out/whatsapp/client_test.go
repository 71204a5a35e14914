package whatsapp_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"orderbot/internal/adapters/out/whatsapp"
	"orderbot/internal/core/domain/model/chat"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, baseURL string) *whatsapp.Client {
	t.Helper()
	client, err := whatsapp.NewClient(whatsapp.Config{
		BaseURL:       baseURL,
		PhoneNumberID: "12345",
		AccessToken:   "token",
		RatePerSecond: 1000,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return client
}

func phone(t *testing.T) kernel.PhoneNumber {
	t.Helper()
	p, err := kernel.NewPhoneNumber("919876543210")
	require.NoError(t, err)
	return p
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := whatsapp.NewClient(whatsapp.Config{AccessToken: "t"}, logger)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = whatsapp.NewClient(whatsapp.Config{PhoneNumberID: "1"}, logger)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestClient_Send_RendersEveryKind(t *testing.T) {
	var got []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = append(got, body)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	to := phone(t)

	quick, err := chat.QuickReplies(to, "Pick a date", []chat.Option{{ID: "date_2025-08-30", Title: "30 Aug 2025"}})
	require.NoError(t, err)
	list, err := chat.List(to, "All dates", "Choose date", []chat.Section{{
		Title: "Dates",
		Rows:  []chat.Option{{ID: "date_2025-08-31", Title: "31 Aug 2025", Description: "Sunday"}},
	}})
	require.NoError(t, err)

	for _, msg := range []chat.OutboundMessage{
		chat.Text(to, "hello"),
		quick,
		list,
		chat.Image(to, "https://res.example/qr.png", "Scan to pay"),
	} {
		require.NoError(t, client.Send(t.Context(), msg))
	}

	require.Len(t, got, 4)
	assert.Equal(t, "whatsapp", got[0]["messaging_product"])
	assert.Equal(t, "919876543210", got[0]["to"])
	assert.Equal(t, map[string]any{"body": "hello"}, got[0]["text"])

	interactive := got[1]["interactive"].(map[string]any)
	assert.Equal(t, "button", interactive["type"])
	buttons := interactive["action"].(map[string]any)["buttons"].([]any)
	require.Len(t, buttons, 1)
	assert.Equal(t, "date_2025-08-30", buttons[0].(map[string]any)["reply"].(map[string]any)["id"])

	interactive = got[2]["interactive"].(map[string]any)
	assert.Equal(t, "list", interactive["type"])
	action := interactive["action"].(map[string]any)
	assert.Equal(t, "Choose date", action["button"])
	rows := action["sections"].([]any)[0].(map[string]any)["rows"].([]any)
	assert.Equal(t, "Sunday", rows[0].(map[string]any)["description"])

	assert.Equal(t, "image", got[3]["type"])
	assert.Equal(t, "https://res.example/qr.png", got[3]["image"].(map[string]any)["link"])
}

func TestClient_Send_ApiErrorIsIntegrationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Recipient phone number not in allowed list","code":131030}}`))
	}))
	defer server.Close()

	err := newClient(t, server.URL).Send(t.Context(), chat.Text(phone(t), "hello"))

	require.ErrorIs(t, err, errs.ErrIntegrationFailure)
	assert.Contains(t, err.Error(), "not in allowed list")
}

func TestClient_FetchMedia(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/media-1":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"url":       server.URL + "/download/media-1",
				"mime_type": "image/jpeg",
			})
		case "/download/media-1":
			_, _ = w.Write([]byte("jpeg-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newClient(t, server.URL)

	content, err := client.FetchMedia(t.Context(), "media-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), content.Data)
	assert.Equal(t, "image/jpeg", content.MimeType)

	_, err = client.FetchMedia(t.Context(), "missing")
	require.ErrorIs(t, err, errs.ErrIntegrationFailure)

	_, err = client.FetchMedia(t.Context(), "")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
