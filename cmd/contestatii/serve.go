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

	"contestatii/internal/archive"
	"contestatii/internal/auth"
	"contestatii/internal/db"
	"contestatii/internal/report"
	"contestatii/internal/server"
	"contestatii/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Migrate the database and start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadServeConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	complaintRepo := store.NewComplaintRepository(pool)
	claimantRepo := store.NewClaimantRepository(pool)
	userRepo := store.NewUserRepository(pool)

	tokens, err := auth.NewTokens(config.TokenSecret, config.TokenTTL)
	if err != nil {
		return err
	}

	reportConfig, err := report.LoadConfig(config.ReportConfigPath)
	if err != nil {
		return err
	}

	var reportArchive server.ReportArchive
	if config.ReportBucket != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		reportArchive = archive.NewReports(s3.NewFromConfig(awsConfig), config.ReportBucket)
		logger.WithField("bucket", config.ReportBucket).Info("archiving reports to s3")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(
		config,
		logger,
		pool,
		complaintRepo,
		claimantRepo,
		userRepo,
		tokens,
		report.NewRenderer(reportConfig),
		reportArchive,
		registry,
	)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
