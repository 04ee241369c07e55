package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/lock"
	"mortgage-underwriting/internal/domain/uow"
	"mortgage-underwriting/pkg/id"
)

// CompletenessListener receives every fresh verdict for a loan while the loan lock is held.
type CompletenessListener interface {
	CompletenessEvaluated(ctx context.Context, loanID string, v domain.Verdict) (bool, error)
}

// URLSigner turns an opaque blob path into a retrieval URL.
type URLSigner interface {
	SignedURL(ctx context.Context, path string) (string, error)
}

type Usecase struct {
	uow          uow.UnitOfWork
	requirements *domain.RequirementTable
	locker       lock.Locker
	listener     CompletenessListener
	signer       URLSigner
	now          func() time.Time
}

// NewUsecase wires the document flows. signer may be nil, in which case listings carry no URL.
func NewUsecase(tx uow.UnitOfWork, req *domain.RequirementTable, locker lock.Locker, listener CompletenessListener, signer URLSigner) *Usecase {
	return &Usecase{
		uow:          tx,
		requirements: req,
		locker:       locker,
		listener:     listener,
		signer:       signer,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Register records the metadata of an uploaded document. New documents are pending and
// cannot change the verdict, so no evaluation runs here.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*DocumentDTO, error) {
	if in.Direction == "" {
		in.Direction = domain.DirectionOutgoing
	}
	if in.Owner == "" {
		in.Owner = domain.OwnerPrimary
	}
	switch {
	case !in.Category.Valid():
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidDocument, in.Category)
	case in.Direction != domain.DirectionOutgoing && in.Direction != domain.DirectionIncoming:
		return nil, fmt.Errorf("%w: unknown direction %q", domain.ErrInvalidDocument, in.Direction)
	case in.Owner != domain.OwnerPrimary && in.Owner != domain.OwnerCoborrower:
		return nil, fmt.Errorf("%w: unknown owner %q", domain.ErrInvalidDocument, in.Owner)
	case strings.TrimSpace(in.BlobPath) == "":
		return nil, fmt.Errorf("%w: blob_path is required", domain.ErrInvalidDocument)
	}

	var d *domain.Document
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status.Terminal() {
			return fmt.Errorf("%w: loan is %s", domain.ErrInvalidDocument, l.Status)
		}
		if in.Owner == domain.OwnerCoborrower && !l.HasCoborrower {
			return domain.ErrCoborrowerMissing
		}
		d = &domain.Document{
			DocumentID: id.NewID32(),
			LoanID:     l.ID,
			BorrowerID: l.BorrowerID,
			Category:   in.Category,
			Direction:  in.Direction,
			Owner:      in.Owner,
			Status:     domain.StatusPending,
			BlobPath:   in.BlobPath,
			FileName:   in.FileName,
		}
		return r.Documents.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(in.LoanID, d), nil
}

// Review approves or rejects a document, then hands the loan's fresh verdict to the
// listener. Both steps run under the loan lock so verdicts reach the listener in order.
func (u *Usecase) Review(ctx context.Context, in ReviewInput) (*ReviewDTO, error) {
	if in.Status != domain.StatusApproved && in.Status != domain.StatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", domain.ErrInvalidReview)
	}
	reason := strings.TrimSpace(in.Reason)

	// resolve the owning loan first; the lock is keyed by its public id
	var loanID string
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Documents.GetByDocumentID(ctx, in.DocumentID)
		if err != nil {
			return err
		}
		l, err := r.Loans.GetByID(ctx, d.LoanID)
		if err != nil {
			return err
		}
		loanID = l.LoanID
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &ReviewDTO{}
	err = u.locker.WithLoanLock(ctx, loanID, func(ctx context.Context) error {
		var v domain.Verdict
		err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
			if l.Status.Terminal() {
				return fmt.Errorf("%w: loan is %s", domain.ErrInvalidReview, l.Status)
			}
			d, err := r.Documents.GetByDocumentID(ctx, in.DocumentID)
			if err != nil {
				return err
			}
			if err := d.Review(in.Status, reason, in.ReviewerID, u.now()); err != nil {
				return err
			}
			if err := r.Documents.Save(ctx, d); err != nil {
				return err
			}
			out.Document = toDTO(l.LoanID, d)
			v, err = u.verdict(ctx, r, l)
			return err
		})
		if err != nil {
			return err
		}
		out.Verdict = v
		out.MovedToReview, err = u.listener.CompletenessEvaluated(ctx, loanID, v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reevaluate recomputes the verdict of a loan and hands it to the listener. The
// reconciliation sweep uses it for loans whose documents were approved before submission.
func (u *Usecase) Reevaluate(ctx context.Context, loanID string) (bool, error) {
	var moved bool
	err := u.locker.WithLoanLock(ctx, loanID, func(ctx context.Context) error {
		var v domain.Verdict
		err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
			var err error
			v, err = u.verdict(ctx, r, l)
			return err
		})
		if err != nil {
			return err
		}
		moved, err = u.listener.CompletenessEvaluated(ctx, loanID, v)
		return err
	})
	return moved, err
}

func (u *Usecase) Checklist(ctx context.Context, loanID string) (*ChecklistDTO, error) {
	out := &ChecklistDTO{LoanID: loanID}
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		req, err := u.requirements.Required(l.ProjectType, l.HasCoborrower)
		if err != nil {
			return err
		}
		docs, err := r.Documents.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		v := domain.Evaluate(req, docs)
		out.Required, out.Missing, out.Complete = req, v.Missing, v.Complete
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every document of the loan, oldest first, with a retrieval URL when a
// signer is configured.
func (u *Usecase) List(ctx context.Context, loanID string) ([]DocumentDTO, error) {
	var docs []domain.Document
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		var err error
		docs, err = r.Documents.ListByLoanID(ctx, l.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]DocumentDTO, 0, len(docs))
	for i := range docs {
		dto := toDTO(loanID, &docs[i])
		if u.signer != nil && docs[i].BlobPath != "" {
			url, err := u.signer.SignedURL(ctx, docs[i].BlobPath)
			if err != nil {
				return nil, fmt.Errorf("sign %s: %w", docs[i].DocumentID, err)
			}
			dto.URL = url
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (u *Usecase) verdict(ctx context.Context, r uow.Repos, l *loan.Loan) (domain.Verdict, error) {
	req, err := u.requirements.Required(l.ProjectType, l.HasCoborrower)
	if err != nil {
		return domain.Verdict{}, err
	}
	docs, err := r.Documents.ListByLoanID(ctx, l.ID)
	if err != nil {
		return domain.Verdict{}, err
	}
	return domain.Evaluate(req, docs), nil
}
