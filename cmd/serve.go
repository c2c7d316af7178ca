package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/S1riyS/tfs/internal/handler"
	"github.com/S1riyS/tfs/internal/middleware"
	"github.com/S1riyS/tfs/internal/repository"
	"github.com/S1riyS/tfs/internal/service"
	"github.com/S1riyS/tfs/pkg/database/postgresql"
	"github.com/S1riyS/tfs/pkg/logging/slogext"
)

type ServeCmd struct {
	Port int `help:"Override the listen port."`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, ctx, logger := g.setup()
	if c.Port != 0 {
		cfg.App.Port = c.Port
	}

	params, err := cfg.Filesystem.Params()
	if err != nil {
		return err
	}
	chunkSize, err := cfg.Filesystem.ChunkSize()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := service.NewRegistry(params)
	importer := service.NewImporter(chunkSize)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())

	opts := []handler.Option{handler.WithMetrics(handler.NewMetrics(promRegistry, registry))}
	if cfg.Database.Enabled {
		db, err := postgresql.NewClient(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, handler.WithSource(db, repository.NewSourceRepository(db, cfg.Database.SourceTable)))
	}

	h := handler.NewHandler(registry, importer, params.BlockSize, opts...)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, promRegistry)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      middleware.RequestIDMiddleware(middleware.AccessLogMiddleware(mux)),
		ReadTimeout:  cfg.App.DefaultTimeout,
		WriteTimeout: cfg.App.DefaultTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g2, gctx := errgroup.WithContext(ctx)
	g2.Go(func() error {
		logger.Info("Starting server",
			slog.String("addr", srv.Addr),
			slog.Int("max_inodes", params.MaxInodes),
			slog.Int("block_size", params.BlockSize),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g2.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g2.Wait()
	if cerr := registry.CloseAll(ctx); cerr != nil {
		logger.Warn("Failed to destroy some filesystems", slogext.Err(cerr))
	}
	return err
}
