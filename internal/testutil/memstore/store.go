// Package memstore is an in-memory unit of work for use-case tests. It honors the
// compare-and-swap contract of loan.Repository and rolls back on error.
package memstore

import (
	"context"
	"sort"
	"sync"

	"mortgage-underwriting/internal/domain/audit"
	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/uow"
)

var _ uow.UnitOfWork = (*Store)(nil)

type Store struct {
	mu          sync.Mutex
	loans       map[uint64]loan.Loan
	documents   map[uint64]document.Document
	transitions []audit.Record
	nextID      uint64

	// BeforeCAS, when set, runs before every compare-and-swap. Tests use it to
	// simulate a concurrent writer.
	BeforeCAS func(l *loan.Loan)
}

func New() *Store {
	return &Store{loans: map[uint64]loan.Loan{}, documents: map[uint64]document.Document{}}
}

// Repos returns repositories that work outside any transaction.
func (s *Store) Repos() uow.Repos {
	return uow.Repos{Loans: loans{s}, Transitions: transitions{s}, Documents: documents{s}}
}

func (s *Store) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	snap := s.snapshot()
	if err := fn(s.Repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

// Put stores a loan directly, assigning an ID when missing.
func (s *Store) Put(l *loan.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		s.nextID++
		l.ID = s.nextID
	}
	s.loans[l.ID] = *l
}

func (s *Store) Loan(id uint64) loan.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loans[id]
}

func (s *Store) Transitions() []audit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Record(nil), s.transitions...)
}

type snapshot struct {
	loans       map[uint64]loan.Loan
	documents   map[uint64]document.Document
	transitions []audit.Record
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		loans:       make(map[uint64]loan.Loan, len(s.loans)),
		documents:   make(map[uint64]document.Document, len(s.documents)),
		transitions: append([]audit.Record(nil), s.transitions...),
	}
	for k, v := range s.loans {
		snap.loans[k] = v
	}
	for k, v := range s.documents {
		snap.documents[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans, s.documents, s.transitions = snap.loans, snap.documents, snap.transitions
}

type loans struct{ s *Store }

func (r loans) Create(_ context.Context, l *loan.Loan) error {
	r.s.Put(l)
	return nil
}

func (r loans) GetByLoanID(_ context.Context, loanID string) (*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.loans {
		if l.LoanID == loanID {
			cp := l
			return &cp, nil
		}
	}
	return nil, loan.ErrNotFound
}

func (r loans) GetByID(_ context.Context, id uint64) (*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return nil, loan.ErrNotFound
	}
	return &l, nil
}

func (r loans) GetOpenDraftByBorrowerID(_ context.Context, borrowerID string) (*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.loans {
		if l.BorrowerID == borrowerID && l.Status == loan.StatusDraft {
			cp := l
			return &cp, nil
		}
	}
	return nil, loan.ErrNotFound
}

func (r loans) CompareAndSwap(_ context.Context, l *loan.Loan, expectedStatus loan.Status, expectedVersion uint64) error {
	if r.s.BeforeCAS != nil {
		r.s.BeforeCAS(l)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.loans[l.ID]
	if !ok || cur.Status != expectedStatus || cur.Version != expectedVersion {
		return loan.ErrConflict
	}
	l.Version = expectedVersion + 1
	r.s.loans[l.ID] = *l
	return nil
}

func (r loans) ListByStatuses(_ context.Context, statuses []loan.Status, limit int) ([]loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[loan.Status]bool{}
	for _, st := range statuses {
		want[st] = true
	}
	var out []loan.Loan
	for _, l := range r.s.loans {
		if want[l.Status] {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type documents struct{ s *Store }

func (r documents) Create(_ context.Context, d *document.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	d.ID = r.s.nextID
	r.s.documents[d.ID] = *d
	return nil
}

func (r documents) GetByDocumentID(_ context.Context, documentID string) (*document.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.documents {
		if d.DocumentID == documentID {
			cp := d
			return &cp, nil
		}
	}
	return nil, document.ErrNotFound
}

func (r documents) ListByLoanID(_ context.Context, loanNumericID uint64) ([]document.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []document.Document
	for _, d := range r.s.documents {
		if d.LoanID == loanNumericID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r documents) Save(_ context.Context, d *document.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.documents[d.ID]; !ok {
		return document.ErrNotFound
	}
	r.s.documents[d.ID] = *d
	return nil
}

type transitions struct{ s *Store }

func (r transitions) Create(_ context.Context, rec *audit.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	rec.ID = r.s.nextID
	r.s.transitions = append(r.s.transitions, *rec)
	return nil
}

func (r transitions) ListByLoanID(_ context.Context, loanNumericID uint64) ([]audit.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []audit.Record
	for _, rec := range r.s.transitions {
		if rec.LoanID == loanNumericID {
			out = append(out, rec)
		}
	}
	return out, nil
}
