// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/event"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/router"
	"github.com/danielhkuo/quickly-vote/voting"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "serve",
		Short:              "Serve the HTTP API (default)",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE:               serveRun,
	}
}

func serveRun(cmd *cobra.Command, args []string) error {
	cfg, ok, err := loadConfig(args)
	if err != nil || !ok {
		return err
	}
	logger := commonRun(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		return err
	}
	defer dbConn.Close()

	if err := db.CreateSchema(ctx, dbConn); err != nil {
		logger.Error("schema creation failed", "error", err)
		return err
	}
	logger.Info("Database schema ready", "type", cfg.DatabaseType)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	bus := event.NewEventBus(m, logger.With("component", "event"))
	defer bus.Stop()
	bus.SubscribeFunc(event.TypeAll, func(evt event.Event) {
		logger.Debug("event published",
			"type", evt.Type,
			"session_id", evt.SessionID,
			"sequence", evt.Sequence,
		)
	})

	engine := voting.NewEngine(db.NewStore(dbConn),
		voting.WithEventBus(bus),
		voting.WithMetrics(m),
		voting.WithLogger(logger),
	)

	server := &http.Server{
		Handler:           middleware.CORS(router.NewRouter(dbConn, engine, cfg, m)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server closed", "error", err)
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("Server closed")
	return nil
}
