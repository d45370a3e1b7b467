package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/hirecall/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  "Serves the /api routes and, when reconcile.interval is set, sweeps in-progress calls in the background. Blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Driver,
		"ai_provider", cfg.AI.Provider,
		"mail", cfg.Mail.Type,
		"notification", cfg.Notification.Type,
		"reconcile_interval", cfg.Reconcile.Interval.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      a.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Reconcile.Interval > 0 {
		sched := scheduler.NewScheduler(a.orchestrator, cfg.Reconcile.Interval, cfg.Reconcile.Batch, logger)
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	err = g.Wait()
	a.drain()
	if err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
