package memstore

import (
	"context"
	"errors"
	"testing"

	"mortgage-underwriting/internal/domain/audit"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/uow"
)

func TestStore_CompareAndSwap(t *testing.T) {
	s := New()
	l := &loan.Loan{LoanID: "L1", Status: loan.StatusPending}
	s.Put(l)

	ctx := context.Background()
	r := s.Repos()
	cp, _ := r.Loans.GetByLoanID(ctx, "L1")
	cp.Status = loan.StatusInReview
	if err := r.Loans.CompareAndSwap(ctx, cp, loan.StatusPending, 0); err != nil {
		t.Fatalf("CAS: %v", err)
	}
	if err := r.Loans.CompareAndSwap(ctx, cp, loan.StatusPending, 0); !errors.Is(err, loan.ErrConflict) {
		t.Fatalf("stale CAS: want ErrConflict, got %v", err)
	}
	if got := s.Loan(l.ID); got.Status != loan.StatusInReview || got.Version != 1 {
		t.Fatalf("stored: %+v", got)
	}
}

func TestStore_RollsBackOnError(t *testing.T) {
	s := New()
	l := &loan.Loan{LoanID: "L1", Status: loan.StatusPending}
	s.Put(l)
	boom := errors.New("boom")

	err := s.WithinLoanTx(context.Background(), "L1", func(r uow.Repos, got *loan.Loan) error {
		got.Status = loan.StatusRejected
		if err := r.Loans.CompareAndSwap(context.Background(), got, loan.StatusPending, 0); err != nil {
			return err
		}
		_ = r.Transitions.Create(context.Background(), &audit.Record{LoanID: got.ID})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if got := s.Loan(l.ID); got.Status != loan.StatusPending || got.Version != 0 {
		t.Fatalf("not rolled back: %+v", got)
	}
	if len(s.Transitions()) != 0 {
		t.Fatal("transition not rolled back")
	}
}
