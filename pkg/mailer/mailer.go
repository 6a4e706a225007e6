package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/folio-dev/portfolio-api/pkg/logger"
)

// Message is a single HTML email
type Message struct {
	From     string
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}

// SMTPMailer sends mail through an authenticated SMTP relay (Gmail app passwords
// by default). A new connection is opened per message.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTPMailer creates a mailer for the given relay and credentials
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// Send delivers msg. The context bounds dialing and the SMTP exchange.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mailMsg, err := buildMsg(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mailMsg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	// The visitor's address passed a loose format check only. One that is not
	// RFC 5322 valid is dropped rather than failing the whole message.
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			logger.Warn("Dropping unparseable Reply-To address", zap.Error(err))
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}
