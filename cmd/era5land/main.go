// Command era5land converts daily ERA5-Land GeoTIFF tile pairs into
// per-category NetCDF files, either once over START_DATE..END_DATE or on a
// cron SCHEDULE.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/era5land-etl/internal/adapter/geotiff"
	"github.com/couchcryptid/era5land-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/era5land-etl/internal/adapter/kafka"
	"github.com/couchcryptid/era5land-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/era5land-etl/internal/config"
	"github.com/couchcryptid/era5land-etl/internal/domain"
	"github.com/couchcryptid/era5land-etl/internal/observability"
	"github.com/couchcryptid/era5land-etl/internal/pipeline"
	"github.com/couchcryptid/era5land-etl/internal/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	writer, err := ncfile.NewWriter(cfg.OutputFormat, cfg.CompressionLevel)
	if err != nil {
		logger.Error("invalid output settings", "error", err)
		return 1
	}

	var notifier pipeline.ArtifactNotifier
	if len(cfg.KafkaBrokers) > 0 {
		kn := kafkaadapter.NewNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := kn.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		notifier = kn
		logger.Info("artifact notifications enabled", "topic", cfg.KafkaTopic)
	}

	meta := domain.DefaultMetadata()
	meta.CreatedBy = cfg.CreatedBy
	meta.ContactInfo = cfg.ContactInfo

	p := pipeline.New(geotiff.NewReader(), writer, notifier, pipeline.Options{
		Layout:        cfg.Layout(),
		Categories:    cfg.Categories,
		ApplyEvapSwap: cfg.ApplyEvapSwap,
		Grid:          domain.CanonicalGrid,
		Metadata:      meta,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	code := 0
	if cfg.Schedule != "" {
		sched := scheduler.New(cfg.Schedule, cfg.ScheduleLagDays, cfg.ScheduleWindowDays, p, nil, logger)
		if err := sched.Start(ctx); err != nil {
			logger.Error("scheduler start failed", "error", err)
			code = 1
		} else {
			<-ctx.Done()
			sched.Stop()
		}
	} else {
		sum, err := p.Run(ctx, pipeline.RunRequest{Start: cfg.StartDate, End: cfg.EndDate})
		switch {
		case errors.Is(err, context.Canceled):
			logger.Info("run interrupted by signal", "processed", sum.Processed)
			code = 1
		case err != nil:
			logger.Error("run failed", "error", err)
			code = 1
		case sum.Failed > 0:
			code = 1
		}
	}
	logger.Info("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	logger.Info("shutdown complete", "exit_code", code)
	return code
}
