package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier stands in for a mail provider in development. It logs the
// recipient and subject only; message bodies may carry secrets.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

func (n LogNotifier) Send(ctx context.Context, address string, subject string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := n.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"to":      address,
		"subject": subject,
	}).Info("notification suppressed: no mail provider configured")
	return nil
}
