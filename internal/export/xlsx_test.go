package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/fields"
)

func extractRecords(t *testing.T, texts ...string) ([]string, []fields.Record) {
	t.Helper()
	e, err := fields.NewExtractor(fields.DefaultOptions(), nil)
	require.NoError(t, err)

	records := make([]fields.Record, 0, len(texts))
	for i, text := range texts {
		rec, err := e.Extract(fields.Document{Name: "r.txt", Text: text})
		require.NoError(t, err, i)
		records = append(records, rec)
	}
	return e.Schema(), records
}

func TestWorkbookBytes(t *testing.T) {
	schema, records := extractRecords(t,
		"Inspection No. FIN-0001\nVendor / Vendor No. EVERBRIGHT TRADING LTD. / 105544\n",
		"Inspection No. FIN-0002\nInspection Seq. 3\n",
	)

	b, err := NewWriter(nil).WorkbookBytes(schema, records)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()

	require.Equal(t, []string{"AQL Reports"}, f.GetSheetList())

	// header row carries the schema in column order
	for i, field := range schema {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		got, err := f.GetCellValue("AQL Reports", cell)
		require.NoError(t, err)
		assert.Equal(t, field, got)
	}

	tests := []struct {
		cell     string
		expected string
	}{
		{cell: "A2", expected: "FIN-0001"},
		{cell: "B2", expected: "1"},
		{cell: "M2", expected: "EVERBRIGHT TRADING LTD."},
		{cell: "A3", expected: "FIN-0002"},
		{cell: "B3", expected: "3"},
		{cell: "M3", expected: ""},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue("AQL Reports", tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, tt.cell)
	}
}

func TestWorkbookBytes_NoRecords(t *testing.T) {
	schema := constants.Schema(false)

	b, err := NewWriter(nil).WorkbookBytes(schema, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()

	rows, err := f.GetRows("AQL Reports")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
	assert.Equal(t, schema, rows[0])
}

func TestWriteFile(t *testing.T) {
	schema, records := extractRecords(t, "Inspection No. FIN-0001\n")
	path := filepath.Join(t.TempDir(), DefaultWorkbookName)

	require.NoError(t, NewWriter(nil).WriteFile(path, schema, records))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()
	got, err := f.GetCellValue("AQL Reports", "A2")
	require.NoError(t, err)
	assert.Equal(t, "FIN-0001", got)
}
