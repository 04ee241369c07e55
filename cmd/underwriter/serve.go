package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mortgage-underwriting/internal/adapter/blob"
	httpadp "mortgage-underwriting/internal/adapter/http"
	"mortgage-underwriting/internal/adapter/middleware"
	"mortgage-underwriting/internal/adapter/notify"
	"mortgage-underwriting/internal/adapter/repository/mysql"
	"mortgage-underwriting/internal/catalog"
	domainLock "mortgage-underwriting/internal/domain/lock"
	"mortgage-underwriting/internal/domain/notification"
	"mortgage-underwriting/internal/domain/rate"
	"mortgage-underwriting/internal/domain/simulation"
	"mortgage-underwriting/internal/infrastructure/cache"
	"mortgage-underwriting/internal/infrastructure/db"
	"mortgage-underwriting/internal/infrastructure/lock"
	"mortgage-underwriting/internal/infrastructure/scheduler"
	ucDocument "mortgage-underwriting/internal/usecase/document"
	ucEscrow "mortgage-underwriting/internal/usecase/escrow"
	"mortgage-underwriting/internal/usecase/lifecycle"
	ucLoan "mortgage-underwriting/internal/usecase/loan"
	ucSimulation "mortgage-underwriting/internal/usecase/simulation"

	"cloud.google.com/go/pubsub"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reconciliation sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	checks := map[string]httpadp.Pinger{"mysql": sqlDB.PingContext}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	var (
		locker   domainLock.Locker = lock.NewLocalLocker()
		mutating []echo.MiddlewareFunc
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		locker = lock.NewRedisLocker(rdb, cfg.LockTTL(), log)
		mutating = append(mutating, middleware.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL(), log))
	} else {
		log.Warn("REDIS_ADDR empty: in-process locks, no idempotency replay")
	}

	var notifier notification.Notifier = notify.NewLogNotifier(log)
	if cfg.PubSubProjectID != "" {
		client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
		if err != nil {
			return fmt.Errorf("pubsub client: %w", err)
		}
		defer client.Close()
		pub := notify.NewPublisher(client, cfg.PubSubTopic)
		defer pub.Stop()
		notifier = pub
	}

	var signer ucDocument.URLSigner
	if cfg.GCSBucket != "" {
		s, err := blob.NewGCSSignerFromFile(cfg.GCSBucket, cfg.GCSAccessID, cfg.GCSPrivateKeyPath, cfg.SignedURLTTL())
		if err != nil {
			return err
		}
		signer = s
	}

	tx := mysql.NewGormUoW(gdb)
	loans := mysql.NewLoanRepository(gdb)

	machine := lifecycle.NewMachine(tx, locker, notifier, cat.Hints, cat.EscrowFundedLabel, log)
	simUC := ucSimulation.NewUsecase(rate.NewResolver(cat.Rates), simulation.NewCalculator(cat.Pricing))
	loanUC := ucLoan.NewUsecase(loans, simUC, locker, cat.Hints)
	docUC := ucDocument.NewUsecase(tx, cat.Requirements, locker, machine, signer)
	escrowUC := ucEscrow.NewUsecase(tx, locker, machine, log)

	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health:      httpadp.NewHandler(checks),
		Simulations: httpadp.NewSimulationHandler(simUC),
		Loans:       httpadp.NewLoanHandler(loanUC, machine),
		Documents:   httpadp.NewDocumentHandler(docUC),
		Escrow:      httpadp.NewEscrowHandler(escrowUC),
	}, mutating...)

	g, gctx := errgroup.WithContext(ctx)

	sched := scheduler.NewScheduler(gctx, loans, docUC, log, cfg.ReconcileBatch)
	if err := sched.RegisterAll(cfg.ReconcileCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	addr := ":" + cfg.AppPort
	g.Go(func() error {
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
