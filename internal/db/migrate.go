package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migrations is the embedded migration directory, rooted so goose sees the
// .sql files at the top level.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies every pending embedded migration. A Postgres advisory lock
// keeps concurrent instances from migrating at the same time.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger logrus.FieldLogger) error {
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return fmt.Errorf("failed to create migration lock: %w", err)
	}

	provider, err := goose.NewProvider(
		goose.DialectPostgres,
		stdlib.OpenDBFromPool(pool),
		Migrations(),
		goose.WithSessionLocker(locker),
	)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			logger.WithError(err).Warn("failed to close migration connection")
		}
	}()

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if len(results) == 0 {
		logger.Debug("schema is up to date")
	}

	for _, res := range results {
		logger.WithFields(logrus.Fields{
			"migration": res.Source.Path,
			"version":   res.Source.Version,
			"duration":  res.Duration,
		}).Info("migration applied")
	}

	return nil
}
