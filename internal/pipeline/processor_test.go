package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/archive"
	"github.com/texqa/aql-extractor/internal/batch"
	"github.com/texqa/aql-extractor/internal/common"
	"github.com/texqa/aql-extractor/internal/fields"
	"github.com/texqa/aql-extractor/internal/pdftext"
)

const reportText = `Inspection No. FIN-02924877
Inspection Date Mar 11, 24
Vendor / Vendor No. EVERBRIGHT TRADING LTD. / 105544
`

func newTestProcessor(t *testing.T, store *archive.Store) *Processor {
	t.Helper()
	extractor, err := fields.NewExtractor(fields.DefaultOptions(), nil)
	require.NoError(t, err)
	agg := batch.NewAggregator(extractor, nil, batch.WithWorkers(2))
	return NewProcessor(nil, pdftext.NewReader(nil), agg, store)
}

func TestProcessor_Run(t *testing.T) {
	proc := newTestProcessor(t, nil)

	dir := t.TempDir()
	onDisk := filepath.Join(dir, "disk.txt")
	require.NoError(t, os.WriteFile(onDisk, []byte(reportText), 0o644))

	sources := []Source{
		{Name: "disk.txt", Path: onDisk},
		{Name: "upload.txt", Data: []byte(reportText)},
		{Name: "notes.csv", Data: []byte("a,b,c")},
		{Name: "gone.txt", Path: filepath.Join(dir, "missing.txt")},
		{Name: "broken.txt"},
		{Name: "blank.txt", Data: []byte("   \n")},
	}

	results := proc.Run(context.Background(), sources)
	require.Len(t, results, len(sources))

	t.Run("readable sources succeed in order", func(t *testing.T) {
		for _, i := range []int{0, 1} {
			res := results[i]
			require.False(t, res.Outcome.Failed(), res.Outcome.Name)
			assert.Equal(t, sources[i].Name, res.Outcome.Name)
			assert.Equal(t, "FIN-02924877", res.Outcome.Record.Get(constants.FieldInspectionNo))
			assert.Equal(t, reportText, res.Text)
			assert.Len(t, res.SHA256, 64)
		}
		assert.Equal(t, results[0].SHA256, results[1].SHA256, "same bytes, same digest")
	})

	t.Run("unsupported extension fails alone", func(t *testing.T) {
		res := results[2]
		require.True(t, res.Outcome.Failed())
		assert.Contains(t, res.Outcome.Reason, "unsupported file type")
	})

	t.Run("missing file fails alone", func(t *testing.T) {
		res := results[3]
		require.True(t, res.Outcome.Failed())
		assert.Contains(t, res.Outcome.Reason, "read source")
	})

	t.Run("source without path or data fails alone", func(t *testing.T) {
		res := results[4]
		require.True(t, res.Outcome.Failed())
		assert.Contains(t, res.Outcome.Reason, "unreadable upload")
	})

	t.Run("blank text fails with no-content reason", func(t *testing.T) {
		res := results[5]
		require.True(t, res.Outcome.Failed())
		assert.Equal(t, common.ErrNoContent.Error(), res.Outcome.Reason)
		assert.Len(t, res.SHA256, 64, "digest still computed for readable bytes")
	})
}

func TestProcessor_RunArchivesOutcomes(t *testing.T) {
	ctx := context.Background()
	store, err := archive.Open(ctx, common.ArchiveConfig{DSN: ":memory:", DialTimeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	proc := newTestProcessor(t, store)

	results := proc.Run(ctx, []Source{
		{Name: "ok.txt", Data: []byte(reportText)},
		{Name: "bad.csv", Data: []byte("nope")},
	})
	require.Len(t, results, 2)

	rows, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := map[string]archive.OutcomeRow{}
	for _, row := range rows {
		byName[row.DocName] = row
	}

	ok := byName["ok.txt"]
	assert.Equal(t, constants.StatusParsed, ok.Status)
	assert.Contains(t, string(ok.RecordJSON), "FIN-02924877")
	assert.NotEmpty(t, ok.ContentSHA256)

	bad := byName["bad.csv"]
	assert.Equal(t, constants.StatusFailed, bad.Status)
	assert.NotEmpty(t, bad.Reason)
	assert.Empty(t, bad.RecordJSON)

	assert.Equal(t, ok.BatchID, bad.BatchID, "one run is one batch")
}

func TestProcessor_EmptyBatch(t *testing.T) {
	proc := newTestProcessor(t, nil)
	results := proc.Run(context.Background(), nil)
	assert.Empty(t, results)
}
