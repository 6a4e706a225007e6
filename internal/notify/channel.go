// Package notify relays contact submissions to the site owner over every
// configured notification channel.
package notify

import (
	"context"

	"github.com/folio-dev/portfolio-api/config"
	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/pkg/httpclient"
	"github.com/folio-dev/portfolio-api/pkg/mailer"
)

// ChannelName identifies a notification channel
type ChannelName string

const (
	ChannelChat  ChannelName = "chat"
	ChannelEmail ChannelName = "email"
)

// Channel delivers a submission over one external service. Deliver returns nil
// only when the service acknowledged the notification.
type Channel interface {
	Name() ChannelName
	Deliver(ctx context.Context, sub models.ContactSubmission) error
}

// Result is the outcome of one channel attempt: delivered when Err is nil,
// failed with Err as the reason otherwise.
type Result struct {
	Channel ChannelName
	Err     error
}

// Delivered reports whether the channel acknowledged the notification
func (r Result) Delivered() bool {
	return r.Err == nil
}

// AnyDelivered is the aggregate outcome: true when at least one channel delivered.
// An empty result set is not delivered.
func AnyDelivered(results []Result) bool {
	for _, r := range results {
		if r.Delivered() {
			return true
		}
	}
	return false
}

// ChannelResults converts results to their wire form
func ChannelResults(results []Result) []models.ChannelResult {
	out := make([]models.ChannelResult, 0, len(results))
	for _, r := range results {
		out = append(out, models.ChannelResult{
			Channel:   string(r.Channel),
			Delivered: r.Delivered(),
		})
	}
	return out
}

// NewChannelsFromConfig builds the active channels. A channel whose credential
// pair is incomplete is left out. When sender is nil the email channel sends
// through an SMTP relay built from cfg.
func NewChannelsFromConfig(cfg config.NotifyConfig, client httpclient.Client, sender MailSender) []Channel {
	var channels []Channel

	if cfg.ChatEnabled() {
		channels = append(channels, NewTelegramChannel(cfg.TelegramAPIBase, cfg.TelegramBotToken, cfg.TelegramChatID, client))
	}

	if cfg.EmailEnabled() {
		if sender == nil {
			sender = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailAddress, cfg.EmailPassword)
		}
		channels = append(channels, NewEmailChannel(cfg.EmailAddress, sender))
	}

	return channels
}
