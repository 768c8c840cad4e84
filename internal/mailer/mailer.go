// Package mailer sends transactional auth emails through the Resend API.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers auth emails. Implementations return the provider's delivery
// id; an empty id with a nil error is treated as a failed send by callers
// whose contract is "email sent".
type Mailer interface {
	SendVerifyEmail(ctx context.Context, to, url string) (string, error)
	SendPasswordReset(ctx context.Context, to, url string) (string, error)
}

// ResendMailer is the production Mailer backed by Resend.
type ResendMailer struct {
	client *resend.Client
	sender string
}

// NewResendMailer creates a mailer sending from the given address.
func NewResendMailer(apiKey, sender string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		sender: sender,
	}
}

// SendVerifyEmail sends the email-verification link.
func (m *ResendMailer) SendVerifyEmail(ctx context.Context, to, url string) (string, error) {
	return m.send(ctx, to, verifyEmailSubject, verifyEmailHTML(url), verifyEmailText(url))
}

// SendPasswordReset sends the password-reset link.
func (m *ResendMailer) SendPasswordReset(ctx context.Context, to, url string) (string, error) {
	return m.send(ctx, to, passwordResetSubject, passwordResetHTML(url), passwordResetText(url))
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html, text string) (string, error) {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return "", fmt.Errorf("send email to %s: %w", to, err)
	}
	return sent.Id, nil
}
