package loan

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusDraft             Status = "draft"
	StatusPending           Status = "pending"
	StatusInReview          Status = "in_review"
	StatusDocumentsRequired Status = "documents_required"
	StatusProcessing        Status = "processing"
	StatusOfferIssued       Status = "offer_issued"
	StatusApproved          Status = "approved"
	StatusFunded            Status = "funded"
	StatusRejected          Status = "rejected"
)

var Statuses = []Status{
	StatusDraft, StatusPending, StatusInReview, StatusDocumentsRequired, StatusProcessing,
	StatusOfferIssued, StatusApproved, StatusFunded, StatusRejected,
}

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("loan was modified concurrently")
	ErrReasonRequired    = errors.New("a reason is required to reject a loan")
	ErrDraftExists       = errors.New("borrower already has an open draft")
	ErrInvalidInput      = errors.New("invalid loan input")
)

// TransitionError names both ends of a refused move. It matches ErrInvalidTransition.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Rejection is reachable from every non-terminal status and is added in CanTransition.
var transitions = map[Status][]Status{
	StatusDraft:             {StatusPending},
	StatusPending:           {StatusInReview, StatusDocumentsRequired},
	StatusInReview:          {StatusDocumentsRequired, StatusProcessing},
	StatusDocumentsRequired: {StatusInReview},
	StatusProcessing:        {StatusOfferIssued},
	StatusOfferIssued:       {StatusApproved},
	StatusApproved:          {StatusFunded},
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusFunded || s == StatusRejected }

// CanTransition reports whether from → to is an edge of the lifecycle graph.
func CanTransition(from, to Status) bool {
	if !from.Valid() || from.Terminal() {
		return false
	}
	if to == StatusRejected {
		return true
	}
	for _, n := range transitions[from] {
		if n == to {
			return true
		}
	}
	return false
}

// Next lists the statuses reachable from s in one move.
func Next(s Status) []Status {
	if !s.Valid() || s.Terminal() {
		return nil
	}
	out := append([]Status(nil), transitions[s]...)
	return append(out, StatusRejected)
}

// AwaitingDocuments is true for the statuses in which a complete document set moves the
// loan to review automatically.
func (s Status) AwaitingDocuments() bool {
	return s == StatusPending || s == StatusDocumentsRequired
}

// Hints maps a status to the default nextAction label shown to the borrower.
type Hints map[Status]string

func (h Hints) For(s Status) string { return h[s] }
