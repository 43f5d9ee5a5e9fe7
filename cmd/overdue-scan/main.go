package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/appctx"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/models"
	"github.com/sirupsen/logrus"
)

// overdue-scan flips Unpaid invoices past their due date to Overdue. Run
// with --once for a single sweep (cron-friendly) or let the built-in
// scheduler re-run the sweep on an interval.
func main() {
	once := flag.Bool("once", false, "Run a single sweep and exit")
	interval := flag.Duration("interval", time.Hour, "Sweep interval when running as a daemon")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	config.ConnectRedis()
	logger := config.GetLogger()

	// the sweep crosses every company
	ctx := appctx.Set(context.Background(), appctx.ContextKeySkipTenantScope, true)

	if *once {
		runSweep(ctx, logger)
		return
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.WithError(err).Fatal("failed to create scheduler")
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(*interval),
		gocron.NewTask(runSweep, ctx, logger),
		gocron.WithName("overdue-invoice-scan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		logger.WithError(err).Fatal("failed to register overdue scan job")
	}

	logger.WithField("interval", interval.String()).Info("starting overdue invoice scanner")
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := scheduler.Shutdown(); err != nil {
		logger.WithError(err).Error("scheduler shutdown failed")
	}
}

func runSweep(ctx context.Context, logger *logrus.Logger) {
	affected, err := models.MarkOverdueInvoices(ctx, time.Now().UTC())
	if err != nil {
		config.LogError(logger, "overdue-scan", "runSweep", "mark overdue invoices", nil, err)
		return
	}
	logger.WithField("invoices", affected).Info("overdue sweep completed")
}
