package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mortgage-underwriting/internal/domain/audit"
	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/escrow"
	"mortgage-underwriting/internal/domain/lock"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/notification"
	"mortgage-underwriting/internal/domain/uow"
	"mortgage-underwriting/internal/infrastructure/logging"
	"mortgage-underwriting/pkg/id"

	"github.com/sirupsen/logrus"
)

const defaultMaxRetries = 3

// Machine applies lifecycle transitions. Every change is written together with its audit
// record in one transaction, guarded by compare-and-swap on the status and version that
// were read, and only announced after the commit.
type Machine struct {
	uow          uow.UnitOfWork
	locker       lock.Locker
	notifier     notification.Notifier
	hints        loan.Hints
	escrowFunded string
	log          logrus.FieldLogger
	now          func() time.Time
	maxRetries   int
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option { return func(m *Machine) { m.now = now } }

// WithMaxRetries bounds how many times an automatic trigger re-reads the loan after a conflict.
func WithMaxRetries(n int) Option { return func(m *Machine) { m.maxRetries = n } }

func NewMachine(tx uow.UnitOfWork, locker lock.Locker, n notification.Notifier, hints loan.Hints, escrowFundedHint string, log logrus.FieldLogger, opts ...Option) *Machine {
	m := &Machine{
		uow:          tx,
		locker:       locker,
		notifier:     n,
		hints:        hints,
		escrowFunded: escrowFundedHint,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
		maxRetries:   defaultMaxRetries,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Transition applies a staff or borrower request. Conflicts are returned as is; the
// caller decides whether to retry.
func (m *Machine) Transition(ctx context.Context, in TransitionInput) (*TransitionDTO, error) {
	if !in.To.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", loan.ErrInvalidInput, in.To)
	}
	reason := strings.TrimSpace(in.Reason)

	var dto *TransitionDTO
	err := m.locker.WithLoanLock(ctx, in.LoanID, func(ctx context.Context) error {
		return m.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
			if !loan.CanTransition(l.Status, in.To) {
				return &loan.TransitionError{From: l.Status, To: in.To}
			}
			if in.To == loan.StatusRejected && reason == "" {
				return loan.ErrReasonRequired
			}
			rec, err := m.apply(ctx, r, l, in.To, audit.TriggerManual, in.ActorID, reason)
			if err != nil {
				return err
			}
			dto = toDTO(l, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	m.announce(ctx, "Transition", dto)
	return dto, nil
}

// CompletenessEvaluated reacts to a fresh document verdict for the loan. The caller must
// hold the loan lock. It reports whether the loan moved to review.
func (m *Machine) CompletenessEvaluated(ctx context.Context, loanID string, v document.Verdict) (bool, error) {
	for attempt := 0; ; attempt++ {
		dto, err := m.completenessOnce(ctx, loanID, v)
		if errors.Is(err, loan.ErrConflict) && attempt < m.maxRetries {
			m.log.WithFields(logrus.Fields{"loan_id": loanID, "attempt": attempt + 1}).Warn("completeness: conflict, retrying")
			continue
		}
		if err != nil {
			return false, err
		}
		if dto == nil {
			return false, nil
		}
		m.announce(ctx, "CompletenessEvaluated", dto)
		return true, nil
	}
}

func (m *Machine) completenessOnce(ctx context.Context, loanID string, v document.Verdict) (*TransitionDTO, error) {
	var dto *TransitionDTO
	err := m.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		switch {
		case !v.Complete:
			if !l.DocumentsComplete {
				return nil
			}
			l.DocumentsComplete = false
			return r.Loans.CompareAndSwap(ctx, l, l.Status, l.Version)
		case l.DocumentsComplete:
			return nil
		case !l.Status.AwaitingDocuments():
			// The flag only records verdicts that moved the loan; a draft must still
			// advance once it is submitted.
			return nil
		}
		l.DocumentsComplete = true
		rec, err := m.apply(ctx, r, l, loan.StatusInReview, audit.TriggerDocumentsComplete, "", "")
		if err != nil {
			return err
		}
		dto = toDTO(l, rec)
		return nil
	})
	return dto, err
}

// EscrowEvaluated stores an escrow evaluation computed from the loan at basisVersion.
// On first funding it records the event, points an approved loan to its next step and
// announces it once. ErrConflict means the loan changed since basisVersion.
func (m *Machine) EscrowEvaluated(ctx context.Context, loanID string, ev escrow.Evaluation, basisVersion uint64) (bool, error) {
	var (
		fired   bool
		payload map[string]any
	)
	err := m.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Version != basisVersion {
			return loan.ErrConflict
		}
		l.EscrowStatus = ev.Status
		l.EscrowAmountExpected = ev.Expected
		l.EscrowAmountReceived = ev.Received

		fired = ev.FiresCompletion && !l.EscrowCompletionSignaled
		if fired {
			l.EscrowCompletionSignaled = true
			if l.Status == loan.StatusApproved {
				l.NextAction = m.escrowFunded
			}
		}
		if err := r.Loans.CompareAndSwap(ctx, l, l.Status, basisVersion); err != nil {
			return err
		}
		if !fired {
			return nil
		}
		now := m.now()
		rec := &audit.Record{
			TransitionID: id.NewID32(),
			LoanID:       l.ID,
			FromStatus:   l.Status,
			ToStatus:     l.Status,
			Trigger:      audit.TriggerEscrowFunded,
			OccurredAt:   now,
		}
		if err := r.Transitions.Create(ctx, rec); err != nil {
			return err
		}
		payload = map[string]any{
			"status":          l.Status,
			"escrow_status":   ev.Status,
			"amount_expected": ev.Expected,
			"amount_received": ev.Received,
			"next_action":     l.NextAction,
			"occurred_at":     now,
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if fired {
		m.notify(ctx, "EscrowEvaluated", notification.EventEscrowFunded, loanID, payload)
	}
	return fired, nil
}

// History lists the recorded lifecycle events of a loan, oldest first.
func (m *Machine) History(ctx context.Context, loanID string) ([]audit.Record, error) {
	var out []audit.Record
	err := m.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		recs, err := r.Transitions.ListByLoanID(ctx, l.ID)
		out = recs
		return err
	})
	return out, err
}

func (m *Machine) apply(ctx context.Context, r uow.Repos, l *loan.Loan, to loan.Status, trigger audit.Trigger, actorID, reason string) (*audit.Record, error) {
	from, version := l.Status, l.Version
	now := m.now()

	l.Status = to
	l.StatusUpdatedAt = now
	l.NextAction = m.hints.For(to)
	if to == loan.StatusApproved && l.EscrowCompletionSignaled && m.escrowFunded != "" {
		// funding was announced before approval and will not fire again
		l.NextAction = m.escrowFunded
	}
	if to == loan.StatusRejected {
		l.RejectionReason = &reason
	}
	if err := r.Loans.CompareAndSwap(ctx, l, from, version); err != nil {
		return nil, err
	}

	rec := &audit.Record{
		TransitionID: id.NewID32(),
		LoanID:       l.ID,
		FromStatus:   from,
		ToStatus:     to,
		Trigger:      trigger,
		ActorID:      actorID,
		Reason:       reason,
		OccurredAt:   now,
	}
	if err := r.Transitions.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *Machine) announce(ctx context.Context, funcName string, dto *TransitionDTO) {
	m.notify(ctx, funcName, notification.EventStatusChanged, dto.LoanID, map[string]any{
		"transition_id": dto.TransitionID,
		"from":          dto.From,
		"to":            dto.To,
		"trigger":       dto.Trigger,
		"next_action":   dto.NextAction,
		"occurred_at":   dto.OccurredAt,
	})
}

// notify is best effort: the change is already committed.
func (m *Machine) notify(ctx context.Context, funcName string, event notification.EventType, loanID string, payload map[string]any) {
	if err := m.notifier.Notify(ctx, event, loanID, payload); err != nil {
		logging.LogError(m.log, "lifecycle", funcName, "notify "+string(event), map[string]string{"loan_id": loanID}, err)
	}
}
