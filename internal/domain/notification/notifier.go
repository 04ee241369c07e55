package notification

import "context"

type EventType string

const (
	EventStatusChanged EventType = "loan.status_changed"
	EventEscrowFunded  EventType = "loan.escrow_funded"
)

// Notifier delivers fire-and-forget events. Callers log failures and move on.
type Notifier interface {
	Notify(ctx context.Context, event EventType, loanID string, payload map[string]any) error
}
