package service

import (
	"context"
	"errors"
	"strings"

	"github.com/resend/resend-go"
)

var ErrNotifierNotConfigured = errors.New("email sender not configured")

// ResendNotifier delivers plain-text email through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	From   string

	send func(*resend.SendEmailRequest) error
}

func NewResendNotifier(apiKey string, from string) *ResendNotifier {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendNotifier{}
	}
	client := resend.NewClient(apiKey)
	return &ResendNotifier{
		client: client,
		From:   from,
		send: func(req *resend.SendEmailRequest) error {
			_, err := client.Emails.Send(req)
			return err
		},
	}
}

func (n *ResendNotifier) Configured() bool {
	return n.client != nil && n.send != nil
}

// Send returns as soon as ctx is done. The SDK call takes no context, so an
// abandoned request may still be delivered after Send has returned.
func (n *ResendNotifier) Send(ctx context.Context, address string, subject string, body string) error {
	if !n.Configured() {
		return ErrNotifierNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := &resend.SendEmailRequest{
		From:    n.From,
		To:      []string{address},
		Subject: subject,
		Text:    body,
	}
	done := make(chan error, 1)
	go func() {
		done <- n.send(req)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
