package archive

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/texqa/aql-extractor/internal/common"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)

// openDB opens the archive database for cfg.DSN. A postgres:// DSN gets a
// pgx pool wrapped as *sql.DB; anything else is treated as a SQLite path,
// ":memory:" included.
func openDB(ctx context.Context, cfg common.ArchiveConfig, logger *slog.Logger) (*sql.DB, *pgxpool.Pool, string, error) {
	if isPostgresDSN(cfg.DSN) {
		db, pool, err := openPostgres(ctx, cfg, logger)
		return db, pool, dialectPostgres, err
	}
	db, err := openSQLite(ctx, cfg, logger)
	return db, nil, dialectSQLite, err
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// openPostgres creates a pgx pool and wraps it for database/sql.
func openPostgres(ctx context.Context, cfg common.ArchiveConfig, logger *slog.Logger) (*sql.DB, *pgxpool.Pool, error) {
	logger.Info("connecting to archive database", "dialect", dialectPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse archive DSN", "error", err)
		return nil, nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "aql-extractor"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to archive database", "error", err)
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to archive database")
	return db, pool, nil
}

// openSQLite opens a file or in-memory SQLite archive.
func openSQLite(ctx context.Context, cfg common.ArchiveConfig, logger *slog.Logger) (*sql.DB, error) {
	logger.Info("opening archive database", "dialect", dialectSQLite, "path", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		logger.Error("failed to open archive database", "error", err)
		return nil, err
	}
	// an in-memory database lives per connection
	if strings.Contains(cfg.DSN, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
