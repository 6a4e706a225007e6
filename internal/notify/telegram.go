package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"unicode/utf16"

	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/pkg/httpclient"
)

// telegramMaxTextLength is the Bot API limit for a message text, in UTF-16 code units
const telegramMaxTextLength = 4096

// TelegramChannel posts submissions to a chat through the Telegram Bot API
type TelegramChannel struct {
	apiBase  string
	botToken string
	chatID   string
	client   httpclient.Client
}

type telegramSendMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// NewTelegramChannel creates the chat channel
func NewTelegramChannel(apiBase, botToken, chatID string, client httpclient.Client) *TelegramChannel {
	return &TelegramChannel{
		apiBase:  apiBase,
		botToken: botToken,
		chatID:   chatID,
		client:   client,
	}
}

func (t *TelegramChannel) Name() ChannelName { return ChannelChat }

// Deliver sends one sendMessage call. Only the API's own "ok" flag counts as
// delivery; a 200 with ok=false is a failure.
func (t *TelegramChannel) Deliver(ctx context.Context, sub models.ContactSubmission) error {
	var resp telegramResponse
	status, err := httpclient.PostJSON(ctx, t.client, t.endpoint(), telegramSendMessage{
		ChatID: t.chatID,
		Text:   formatTelegramText(sub),
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", t.redact(err))
	}

	if !resp.OK {
		return fmt.Errorf("telegram sendMessage not acknowledged (status %d, code %d): %s",
			status, resp.ErrorCode, resp.Description)
	}
	return nil
}

func (t *TelegramChannel) endpoint() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
}

// redact strips the bot token, which is part of the request URL, from transport errors.
func (t *TelegramChannel) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = fmt.Sprintf("%s/bot<redacted>/sendMessage", t.apiBase)
	}
	return err
}

func formatTelegramText(sub models.ContactSubmission) string {
	text := fmt.Sprintf("🔔 New Contact\n\n👤 %s\n📧 %s\n\n💬 %s", sub.Name, sub.Email, sub.Message)
	return truncateUTF16(text, telegramMaxTextLength)
}

// truncateUTF16 cuts s to at most limit UTF-16 code units, ending with an ellipsis
// when anything was dropped.
func truncateUTF16(s string, limit int) string {
	units := 0
	cut := -1
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit-1 && cut < 0 {
			cut = i
		}
		units += n
		if units > limit {
			return s[:cut] + "…"
		}
	}
	return s
}
