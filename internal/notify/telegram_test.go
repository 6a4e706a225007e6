package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/portfolio-api/internal/models"
)

const testBotToken = "123456:SECRET-token"

func newTelegramServer(t *testing.T, status int, body string, received *telegramSendMessage) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot"+testBotToken+"/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if received != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(received))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTelegramChannel_Delivered(t *testing.T) {
	var received telegramSendMessage
	server := newTelegramServer(t, http.StatusOK, `{"ok":true,"result":{"message_id":7}}`, &received)

	ch := NewTelegramChannel(server.URL, testBotToken, "42", server.Client())
	err := ch.Deliver(context.Background(), testSubmission())

	require.NoError(t, err)
	assert.Equal(t, "42", received.ChatID)
	assert.Equal(t, "🔔 New Contact\n\n👤 Ada Lovelace\n📧 ada@example.com\n\n💬 Hello", received.Text)
	assert.Equal(t, ChannelChat, ch.Name())
}

func TestTelegramChannel_NotAcknowledged(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{
			name:   "ok false on 200",
			status: http.StatusOK,
			body:   `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
			errMsg: "chat not found",
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"ok":false,"error_code":401,"description":"Unauthorized"}`,
			errMsg: "status 401",
		},
		{
			name:   "non-JSON body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			errMsg: "failed to decode response",
		},
		{
			name:   "missing ok flag",
			status: http.StatusOK,
			body:   `{}`,
			errMsg: "not acknowledged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTelegramServer(t, tt.status, tt.body, nil)

			err := NewTelegramChannel(server.URL, testBotToken, "42", server.Client()).
				Deliver(context.Background(), testSubmission())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTelegramChannel_TransportErrorHidesToken(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	err := NewTelegramChannel(base, testBotToken, "42", &http.Client{}).
		Deliver(context.Background(), testSubmission())

	require.Error(t, err)
	assert.NotContains(t, err.Error(), testBotToken)
	assert.Contains(t, err.Error(), "bot<redacted>")
}

func TestFormatTelegramText_LongMessageFitsLimit(t *testing.T) {
	sub := models.ContactSubmission{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: strings.Repeat("😀", 5000),
	}

	text := formatTelegramText(sub)

	assert.LessOrEqual(t, len(utf16.Encode([]rune(text))), telegramMaxTextLength)
	assert.True(t, strings.HasSuffix(text, "…"))
	assert.True(t, strings.HasPrefix(text, "🔔 New Contact"))
}

func TestTruncateUTF16(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{name: "short", input: "hello", limit: 10, expected: "hello"},
		{name: "exactly at limit", input: "hello", limit: 5, expected: "hello"},
		{name: "one over", input: "hello!", limit: 5, expected: "hell…"},
		{name: "surrogate pairs count double", input: "😀😀😀", limit: 6, expected: "😀😀😀"},
		{name: "surrogate pair not split", input: "a😀😀", limit: 4, expected: "a😀…"},
		{name: "ellipsis replaces pair", input: "ab😀😀", limit: 4, expected: "ab…"},
		{name: "empty", input: "", limit: 3, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateUTF16(tt.input, tt.limit))
		})
	}
}
