package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/identity/internal/mailer"
)

// VerificationEmailTask delivers an account-verification email. Queued by the
// register flow so a slow or flaky email provider never blocks registration;
// the queue retries delivery in the background.
type VerificationEmailTask struct {
	Email string `json:"email"`
	URL   string `json:"url"`
}

// Config returns the queue configuration for verification email tasks.
func (t VerificationEmailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_verification_email",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// VerificationEmailProcessor creates a processor function for VerificationEmailTask.
func VerificationEmailProcessor(m mailer.Mailer) backlite.QueueProcessor[VerificationEmailTask] {
	return func(ctx context.Context, task VerificationEmailTask) error {
		if m == nil {
			return fmt.Errorf("mailer not configured")
		}

		id, err := m.SendVerifyEmail(ctx, task.Email, task.URL)
		if err != nil {
			return fmt.Errorf("send verification email to %s: %w", task.Email, err)
		}

		log.Printf("[TASK] Sent verification email to %s (delivery id %s)", task.Email, id)
		return nil
	}
}

// NewVerificationEmailQueue creates a backlite queue for verification email tasks.
func NewVerificationEmailQueue(m mailer.Mailer) backlite.Queue {
	return backlite.NewQueue(VerificationEmailProcessor(m))
}

// EmailDispatcher enqueues verification emails on the task queue. It satisfies
// the auth service's VerificationEmailSender.
type EmailDispatcher struct {
	client *Client
}

// NewEmailDispatcher creates a dispatcher on top of the task queue client.
func NewEmailDispatcher(client *Client) *EmailDispatcher {
	return &EmailDispatcher{client: client}
}

// SendVerificationEmail enqueues a delivery task. The caller treats a failed
// enqueue the same as a failed send: logged, never fatal.
func (d *EmailDispatcher) SendVerificationEmail(email, url string) error {
	_, err := d.client.Add(VerificationEmailTask{Email: email, URL: url}).Save()
	if err != nil {
		return fmt.Errorf("enqueue verification email: %w", err)
	}
	return nil
}
