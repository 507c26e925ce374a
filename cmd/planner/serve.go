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

	"github.com/ahorrat/weekly-planner/internal/api"
	"github.com/ahorrat/weekly-planner/internal/core/ports"
	"github.com/ahorrat/weekly-planner/internal/core/service"
	"github.com/ahorrat/weekly-planner/internal/infrastructure/blob/s3"
	"github.com/ahorrat/weekly-planner/internal/infrastructure/db/redis"
	"github.com/ahorrat/weekly-planner/internal/infrastructure/export"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	// --- Remote store and session flag ---
	rem, err := openRemote(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = rem.close(context.Background()) }()
	if err := rem.prepare(ctx); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	// --- Export ---
	printer := export.NewRodPrinter(export.PrinterConfig{
		Bin:        cfg.Export.ChromeBin,
		ControlURL: cfg.Export.ChromeURL,
		Timeout:    cfg.Export.Timeout,
	}, log)
	defer func() { _ = printer.Close() }()

	var archive ports.ArtifactStore
	if cfg.Export.S3.Bucket != "" {
		store, err := s3.New(ctx, s3.Config{
			Region:    cfg.Export.S3.Region,
			Bucket:    cfg.Export.S3.Bucket,
			Endpoint:  cfg.Export.S3.Endpoint,
			PathStyle: cfg.Export.S3.PathStyle,
		})
		if err != nil {
			return err
		}
		archive = store
		log.Info().Str("bucket", cfg.Export.S3.Bucket).Msg("export archiving enabled")
	}

	// --- Services ---
	authService := service.NewAuthService(rem.users, redis.NewSessionStore(rdb), cfg.JWTSecret, cfg.TokenTTL, log)
	plannerService := service.NewPlannerService(rem.planner, log)
	authService.Subscribe(plannerService.HandleSessionEvent)
	go plannerService.RunSweeper(ctx, sweepInterval)
	exportService := service.NewExportService(export.NewPDFExporter(printer), archive, cfg.Export.Title, log)

	e := api.NewRouter(api.Deps{
		Log:       log,
		JWTSecret: cfg.JWTSecret,
		Auth:      authService,
		Planner:   plannerService,
		Exporter:  exportService,
		Pingers: map[string]ports.Pinger{
			rem.name: rem.pinger,
			"redis":  redis.NewPinger(rdb),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", rem.name).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
