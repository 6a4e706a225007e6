package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/pkg/mailer"
)

// MailSender is the transport behind the email channel
type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

var emailBodyTemplate = template.Must(template.New("contact").Parse(
	`<h2>🔔 New Contact</h2><p><b>Name:</b> {{.Name}}</p><p><b>Email:</b> {{.Email}}</p><p><b>Message:</b> {{.Message}}</p>`,
))

// EmailChannel mails each submission to the site owner's own address with
// Reply-To set to the visitor.
type EmailChannel struct {
	address string
	sender  MailSender
}

// NewEmailChannel creates the email channel sending from and to address
func NewEmailChannel(address string, sender MailSender) *EmailChannel {
	return &EmailChannel{
		address: address,
		sender:  sender,
	}
}

func (e *EmailChannel) Name() ChannelName { return ChannelEmail }

// Deliver sends one message; the transport accepting it counts as delivery.
func (e *EmailChannel) Deliver(ctx context.Context, sub models.ContactSubmission) error {
	body, err := renderEmailBody(sub)
	if err != nil {
		return err
	}

	return e.sender.Send(ctx, mailer.Message{
		From:     e.address,
		To:       e.address,
		ReplyTo:  sub.Email,
		Subject:  "Portfolio Contact: " + sub.Name,
		HTMLBody: body,
	})
}

func renderEmailBody(sub models.ContactSubmission) (string, error) {
	var buf bytes.Buffer
	if err := emailBodyTemplate.Execute(&buf, sub); err != nil {
		return "", fmt.Errorf("failed to render email body: %w", err)
	}
	return buf.String(), nil
}
