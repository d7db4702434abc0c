package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/fields"
)

// DefaultWorkbookName is the filename the merged workbook ships under.
const DefaultWorkbookName = "AQL_Parsed_All.xlsx"

const sheet = "AQL Reports"

// Writer produces the merged XLSX workbook: one header row in schema order,
// one row per extracted record.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// WorkbookBytes renders schema and records into XLSX bytes, ready for an
// HTTP download or a file write.
func (w *Writer) WorkbookBytes(schema []string, records []fields.Record) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	for i, h := range schema {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		for i, field := range schema {
			write(i+1, rec.Get(field))
		}
		row++
	}

	for i, field := range schema {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, columnWidth(field))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	w.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"columns", len(schema),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile renders the workbook and writes it to path.
func (w *Writer) WriteFile(path string, schema []string, records []fields.Record) error {
	b, err := w.WorkbookBytes(schema, records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("xlsx save: %w", err)
	}
	w.logger.Info("export.xlsx.saved", "path", path, "bytes", len(b))
	return nil
}

// columnWidth widens the name-bearing columns; the rest hold short tokens.
func columnWidth(field string) float64 {
	switch field {
	case constants.FieldCustomer, constants.FieldFactory, constants.FieldVendor:
		return 36
	default:
		return 15
	}
}
