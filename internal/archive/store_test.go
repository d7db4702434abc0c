package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/common"
)

func memoryConfig() common.ArchiveConfig {
	return common.ArchiveConfig{
		DSN:         ":memory:",
		DialTimeout: 2 * time.Second,
	}
}

func openTestStore(t *testing.T, cfg common.ArchiveConfig) *Store {
	t.Helper()
	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestOpen_SQLiteMemory(t *testing.T) {
	s := openTestStore(t, memoryConfig())
	assert.Equal(t, dialectSQLite, s.dialect)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpen_SQLiteFile(t *testing.T) {
	cfg := memoryConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "archive.db")
	s := openTestStore(t, cfg)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSaveOutcome_FillsIDAndTimestamp(t *testing.T) {
	s := openTestStore(t, memoryConfig())
	ctx := context.Background()
	batchID := uuid.New()

	err := s.SaveOutcome(ctx, OutcomeRow{
		BatchID: batchID,
		DocName: "r1.pdf",
		Status:  constants.StatusParsed,
	})
	require.NoError(t, err)

	rows, err := s.ListBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotEqual(t, uuid.Nil, rows[0].ID)
	assert.False(t, rows[0].CreatedAt.IsZero())
	assert.Equal(t, batchID, rows[0].BatchID)
}

func TestListBatch_Roundtrip(t *testing.T) {
	s := openTestStore(t, memoryConfig())
	ctx := context.Background()

	batchA := uuid.New()
	batchB := uuid.New()
	base := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	saved := []OutcomeRow{
		{
			BatchID:       batchA,
			DocName:       "r1.pdf",
			ContentSHA256: "aaaa",
			Status:        constants.StatusParsed,
			RecordJSON:    []byte(`{"Inspection No.":"FIN-1"}`),
			CreatedAt:     base,
		},
		{
			BatchID:   batchA,
			DocName:   "r2.pdf",
			Status:    constants.StatusFailed,
			Reason:    "document has no text content",
			CreatedAt: base.Add(time.Second),
		},
		{
			BatchID:   batchB,
			DocName:   "r3.pdf",
			Status:    constants.StatusParsed,
			CreatedAt: base.Add(2 * time.Second),
		},
	}
	for _, row := range saved {
		require.NoError(t, s.SaveOutcome(ctx, row))
	}

	rows, err := s.ListBatch(ctx, batchA)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "r1.pdf", rows[0].DocName)
	assert.Equal(t, "aaaa", rows[0].ContentSHA256)
	assert.Equal(t, constants.StatusParsed, rows[0].Status)
	assert.JSONEq(t, `{"Inspection No.":"FIN-1"}`, string(rows[0].RecordJSON))
	assert.True(t, rows[0].CreatedAt.Equal(base))

	assert.Equal(t, "r2.pdf", rows[1].DocName)
	assert.Equal(t, constants.StatusFailed, rows[1].Status)
	assert.Equal(t, "document has no text content", rows[1].Reason)
	assert.Empty(t, rows[1].RecordJSON)
}

func TestListRecent_NewestFirstWithLimit(t *testing.T) {
	s := openTestStore(t, memoryConfig())
	ctx := context.Background()
	base := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveOutcome(ctx, OutcomeRow{
			BatchID:   uuid.New(),
			DocName:   "r.pdf",
			Status:    constants.StatusParsed,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	rows, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))
	assert.True(t, rows[0].CreatedAt.Equal(base.Add(4*time.Second)))
}

// Sub-second timestamps must order correctly even though created_at is TEXT.
func TestListRecent_FractionalSecondOrdering(t *testing.T) {
	s := openTestStore(t, memoryConfig())
	ctx := context.Background()
	base := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	times := []time.Time{
		base.Add(510 * time.Millisecond),
		base.Add(500 * time.Millisecond),
		base,
	}
	for i, ts := range times {
		require.NoError(t, s.SaveOutcome(ctx, OutcomeRow{
			BatchID:   uuid.New(),
			DocName:   "r.pdf",
			Reason:    string(rune('a' + i)),
			Status:    constants.StatusParsed,
			CreatedAt: ts,
		}))
	}

	rows, err := s.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Reason)
	assert.Equal(t, "b", rows[1].Reason)
	assert.Equal(t, "c", rows[2].Reason)
}

func TestRebind(t *testing.T) {
	sqlite := &Store{dialect: dialectSQLite}
	assert.Equal(t, "VALUES (?, ?)", sqlite.rebind("VALUES (?, ?)"))

	pg := &Store{dialect: dialectPostgres}
	assert.Equal(t, "VALUES ($1, $2, $3)", pg.rebind("VALUES (?, ?, ?)"))
}
