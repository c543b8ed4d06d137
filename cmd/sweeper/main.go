package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	creditapp "github.com/gasflow/backend/internal/application/credit"
	"github.com/gasflow/backend/internal/infrastructure/config"
	"github.com/gasflow/backend/internal/infrastructure/logger"
	"github.com/gasflow/backend/internal/infrastructure/persistence"
	infrapricing "github.com/gasflow/backend/internal/infrastructure/pricing"
	"go.uber.org/zap"
)

// The sweeper expires overdue empty-return credits on an interval. It is a
// standalone worker so deployments without the full service still forfeit
// credits on schedule.
func main() {
	var interval time.Duration
	flag.DurationVar(&interval, "interval", time.Hour, "Time between expiry sweeps")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	deposits, err := infrapricing.NewFallbackDepositResolver(nil, cfg.Deposit, log)
	if err != nil {
		log.Fatal("Failed to build deposit resolver", zap.Error(err))
	}

	credits := persistence.NewGormCreditRepository(db.DB)
	svc := creditapp.NewCreditService(deposits, credits, log).
		WithWindows(cfg.Credit.DueIn, cfg.Credit.ExpireIn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Credit expiry sweeper started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		expired, err := svc.SweepExpired(ctx)
		if err != nil {
			log.Error("Expiry sweep failed", zap.Error(err))
		} else if len(expired) > 0 {
			log.Info("Expiry sweep complete", zap.Int("expired", len(expired)))
		}

		select {
		case <-ctx.Done():
			log.Info("Credit expiry sweeper stopped")
			os.Exit(0)
		case <-ticker.C:
		}
	}
}
