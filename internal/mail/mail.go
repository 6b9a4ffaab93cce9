// Package mail sends outreach email over SMTP. Results are reported
// as (ok, message) pairs rather than errors: the message text goes
// straight back to the model as a tool outcome.
package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/bbdragon2023/aiSDR/internal/config"
)

// Message is one outbound email.
type Message struct {
	ToEmail  string
	ToName   string
	Subject  string
	Body     string
	HTMLBody string
}

// Sender delivers messages. The bool is the success flag, the string a
// human-readable account of what happened.
type Sender interface {
	Send(ctx context.Context, msg Message) (bool, string)
}

// SMTPSender sends via an SMTP relay with STARTTLS and plain auth.
type SMTPSender struct {
	client    *gomail.Client
	fromEmail string
	fromName  string
}

// NewSMTPSender builds a sender from SMTP settings.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (bool, string) {
	m := gomail.NewMsg()

	if err := m.From(formatAddress(s.fromName, s.fromEmail)); err != nil {
		return false, fmt.Sprintf("Invalid sender address: %v", err)
	}
	if err := m.To(formatAddress(msg.ToName, msg.ToEmail)); err != nil {
		return false, fmt.Sprintf("Invalid recipient address: %v", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return false, describeSendError(err, msg.ToEmail)
	}

	return true, fmt.Sprintf("Email sent successfully to %s", msg.ToEmail)
}

// describeSendError maps transport failures onto the three categories
// the agent distinguishes: auth, recipient rejection, everything else.
func describeSendError(err error, toEmail string) string {
	var sendErr *gomail.SendError
	if errors.As(err, &sendErr) {
		switch sendErr.Reason {
		case gomail.ErrSMTPAuth:
			return "Authentication failed. Check your username and password."
		case gomail.ErrSMTPRcptTo:
			return fmt.Sprintf("Recipient address rejected: %s", toEmail)
		}
	}
	return fmt.Sprintf("Failed to send email: %v", err)
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
