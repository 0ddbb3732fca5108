package mailer

import (
	"context"
	"errors"
	"log"

	"github.com/resend/resend-go/v2"
)

// ErrNotConfigured is returned when the Resend API key is absent. The caller
// treats it as a per-invocation configuration error, not a boot failure.
var ErrNotConfigured = errors.New("mailer: RESEND_API_KEY missing")

type Message struct {
	To      []string
	Bcc     []string
	Subject string
	HTML    string
}

// Sender delivers transactional email. *ResendSender satisfies it; tests use fakes.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type ResendSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *resend.Client
}

func NewResendSender(apiKey, fromName, fromEmail string) *ResendSender {
	return &ResendSender{
		apiKey:    apiKey,
		fromName:  fromName,
		fromEmail: fromEmail,
		client:    resend.NewClient(apiKey),
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("mailer: no recipients")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.fromEmail + ">",
		To:      msg.To,
		Bcc:     msg.Bcc,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("resend send failed: %v", err)
		return err
	}
	log.Printf("email sent: id=%s subject=%q to=%d bcc=%d", sent.Id, msg.Subject, len(msg.To), len(msg.Bcc))
	return nil
}
