package archive

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/common"
)

// OutcomeRow is one archived extraction outcome.
type OutcomeRow struct {
	ID            uuid.UUID
	BatchID       uuid.UUID
	DocName       string
	ContentSHA256 string
	Status        constants.OutcomeStatus
	Reason        string
	RecordJSON    []byte
	CreatedAt     time.Time
}

// Store persists extraction outcomes. It speaks database/sql over either a
// pgx pool (Postgres) or modernc SQLite, chosen by DSN.
type Store struct {
	db      *sql.DB
	pool    *pgxpool.Pool
	dialect string
	logger  *slog.Logger
}

// created_at is TEXT ordered lexically, so the fraction must be fixed
// width. RFC3339Nano trims trailing zeros and breaks that ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const ddlOutcomes = `
CREATE TABLE IF NOT EXISTS extraction_outcomes (
	id             TEXT PRIMARY KEY,
	batch_id       TEXT NOT NULL,
	doc_name       TEXT NOT NULL,
	content_sha256 TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	reason         TEXT NOT NULL DEFAULT '',
	record_json    TEXT,
	created_at     TEXT NOT NULL
)`

const ddlOutcomesBatchIdx = `
CREATE INDEX IF NOT EXISTS idx_extraction_outcomes_batch
ON extraction_outcomes (batch_id)`

// Open connects to the archive database and ensures its schema.
func Open(ctx context.Context, cfg common.ArchiveConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, pool, dialect, err := openDB(ctx, cfg, logger)
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_ERROR", "open archive", err)
	}
	s := &Store{db: db, pool: pool, dialect: dialect, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		s.Close()
		return nil, common.NewAppError("ARCHIVE_ERROR", "ensure archive schema", err)
	}
	return s, nil
}

// Close closes the database connections gracefully
func (s *Store) Close() {
	s.logger.Info("closing archive database")
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("failed to close archive database", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks archive connectivity, catching DSN issues early.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ddlOutcomes); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, ddlOutcomesBatchIdx)
	return err
}

// SaveOutcome inserts one outcome row. Missing IDs and timestamps are
// filled in.
func (s *Store) SaveOutcome(ctx context.Context, row OutcomeRow) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	q := s.rebind(`INSERT INTO extraction_outcomes
		(id, batch_id, doc_name, content_sha256, status, reason, record_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, q,
		row.ID.String(),
		row.BatchID.String(),
		row.DocName,
		row.ContentSHA256,
		string(row.Status),
		row.Reason,
		string(row.RecordJSON),
		row.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		s.logger.Error("archive.save.failed", "doc", row.DocName, "error", err)
		return common.NewAppError("ARCHIVE_ERROR", "save outcome", err)
	}
	s.logger.Debug("archive.save.ok", "doc", row.DocName, "batch_id", row.BatchID.String(), "status", string(row.Status))
	return nil
}

// ListBatch returns every outcome of one batch, oldest first.
func (s *Store) ListBatch(ctx context.Context, batchID uuid.UUID) ([]OutcomeRow, error) {
	q := s.rebind(`SELECT id, batch_id, doc_name, content_sha256, status, reason, record_json, created_at
		FROM extraction_outcomes WHERE batch_id = ? ORDER BY created_at`)
	rows, err := s.db.QueryContext(ctx, q, batchID.String())
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_ERROR", "list batch", err)
	}
	defer rows.Close()
	return scanOutcomes(rows)
}

// ListRecent returns the newest outcomes across batches, up to limit.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]OutcomeRow, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.rebind(`SELECT id, batch_id, doc_name, content_sha256, status, reason, record_json, created_at
		FROM extraction_outcomes ORDER BY created_at DESC LIMIT ?`)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_ERROR", "list recent", err)
	}
	defer rows.Close()
	return scanOutcomes(rows)
}

func scanOutcomes(rows *sql.Rows) ([]OutcomeRow, error) {
	var out []OutcomeRow
	for rows.Next() {
		var (
			r          OutcomeRow
			id, batch  string
			status     string
			recordJSON sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&id, &batch, &r.DocName, &r.ContentSHA256, &status, &r.Reason, &recordJSON, &createdAt); err != nil {
			return nil, common.NewAppError("ARCHIVE_ERROR", "scan outcome", err)
		}
		r.ID, _ = uuid.Parse(id)
		r.BatchID, _ = uuid.Parse(batch)
		r.Status = constants.OutcomeStatus(status)
		if recordJSON.Valid {
			r.RecordJSON = []byte(recordJSON.String)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// rebind converts "?" placeholders to the $n form Postgres expects.
func (s *Store) rebind(q string) string {
	if s.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}
