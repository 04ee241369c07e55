package notifymock

import (
	"context"
	"sync"

	"mortgage-underwriting/internal/domain/notification"
)

var _ notification.Notifier = (*Notifier)(nil)

type Call struct {
	Event   notification.EventType
	LoanID  string
	Payload map[string]any
}

// Notifier records every call. Err, when set, is returned after recording.
type Notifier struct {
	mu    sync.Mutex
	calls []Call
	Err   error
}

func (n *Notifier) Notify(_ context.Context, event notification.EventType, loanID string, payload map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, Call{Event: event, LoanID: loanID, Payload: payload})
	return n.Err
}

func (n *Notifier) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Call(nil), n.calls...)
}

// Count returns how many calls carried the given event type.
func (n *Notifier) Count(event notification.EventType) int {
	c := 0
	for _, call := range n.Calls() {
		if call.Event == event {
			c++
		}
	}
	return c
}
