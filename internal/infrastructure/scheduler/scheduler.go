package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/infrastructure/logging"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatch       = 500
	reconcileParallel  = 4
	reconcileLoanLimit = 30 * time.Second
)

// Reevaluator recomputes a loan's document verdict and reports whether it moved to review.
type Reevaluator interface {
	Reevaluate(ctx context.Context, loanID string) (bool, error)
}

// Scheduler runs the reconciliation sweep: loans waiting for documents are re-evaluated so
// that approvals made while a loan was still a draft are not lost.
type Scheduler struct {
	cron   *cron.Cron
	loans  loan.Repository
	reeval Reevaluator
	log    logrus.FieldLogger
	batch  int
	ctx    context.Context
}

func NewScheduler(ctx context.Context, loans loan.Repository, reeval Reevaluator, log logrus.FieldLogger, batch int) *Scheduler {
	if batch <= 0 {
		batch = defaultBatch
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log)))),
		loans:  loans,
		reeval: reeval,
		log:    log,
		batch:  batch,
		ctx:    ctx,
	}
}

// RegisterAll registers the sweep. reconcileCron has six fields, seconds first.
func (s *Scheduler) RegisterAll(reconcileCron string) error {
	if _, err := s.cron.AddFunc(reconcileCron, s.reconcileTask); err != nil {
		return fmt.Errorf("register reconcile task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) reconcileTask() {
	start := time.Now()
	moved, err := s.Reconcile(s.ctx)
	if err != nil {
		logging.LogError(s.log, "scheduler", "reconcileTask", "list loans", nil, err)
		return
	}
	s.log.WithFields(logrus.Fields{"moved": moved, "took": time.Since(start).String()}).Info("reconcile finished")
}

// Reconcile re-evaluates one batch of loans awaiting documents. Per-loan failures are
// logged and skipped; only a failed listing is returned.
func (s *Scheduler) Reconcile(ctx context.Context) (int, error) {
	loans, err := s.loans.ListByStatuses(ctx, []loan.Status{loan.StatusPending, loan.StatusDocumentsRequired}, s.batch)
	if err != nil {
		return 0, err
	}

	var moved atomic.Int64
	var g errgroup.Group
	g.SetLimit(reconcileParallel)
	for _, l := range loans {
		loanID := l.LoanID
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, reconcileLoanLimit)
			defer cancel()
			ok, err := s.reeval.Reevaluate(lctx, loanID)
			if err != nil {
				logging.LogError(s.log, "scheduler", "Reconcile", "reevaluate", map[string]string{"loan_id": loanID}, err)
				return nil
			}
			if ok {
				moved.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(moved.Load()), nil
}
