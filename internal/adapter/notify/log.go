package notify

import (
	"context"

	"mortgage-underwriting/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

var _ notification.Notifier = (*LogNotifier)(nil)

// LogNotifier writes events to the log. Used when no Pub/Sub project is configured.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Notify(_ context.Context, event notification.EventType, loanID string, payload map[string]any) error {
	n.log.WithFields(logrus.Fields{
		"event":   event,
		"loan_id": loanID,
		"payload": payload,
	}).Info("notification")
	return nil
}
