package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/texqa/aql-extractor/internal/common"
)

// Result carries the text pulled out of one PDF.
type Result struct {
	Text     string
	Pages    int
	Method   string
	Duration time.Duration
	Warnings []string
}

// Reader extracts the embedded text layer of AQL report PDFs. Reports are
// born digital, so no OCR pass is needed; a PDF without a text layer simply
// yields empty text and fails downstream with a no-content reason.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ExtractFile reads path and extracts its text layer.
func (r *Reader) ExtractFile(ctx context.Context, path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, common.WrapError(err, "read pdf")
	}
	return r.ExtractBytes(ctx, path, b)
}

// ExtractBytes extracts the text layer from an in-memory PDF. Pages are
// joined with blank lines; a page that fails to decode becomes a warning,
// not an error.
func (r *Reader) ExtractBytes(ctx context.Context, name string, b []byte) (res Result, err error) {
	start := time.Now()

	// the pdf package panics on some malformed xref tables; surface those
	// as a per-file error so one bad upload cannot take the process down
	defer func() {
		if rec := recover(); rec != nil {
			err = common.NewAppError("PDF_ERROR", fmt.Sprintf("parse %s: %v", name, rec), common.ErrInvalidInput)
		}
	}()

	rd, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return Result{}, common.NewAppError("PDF_ERROR", "parse "+name, err)
	}

	var pages []string
	var warnings []string
	total := rd.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		p := rd.Page(i)
		if p.V.IsNull() {
			warnings = append(warnings, fmt.Sprintf("page %d: missing", i))
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		pages = append(pages, txt)
	}

	res = Result{
		Text:     strings.Join(pages, "\n\n"),
		Pages:    total,
		Method:   "pdf-text",
		Duration: time.Since(start),
		Warnings: warnings,
	}
	r.logger.Debug("pdftext.extract.ok",
		"doc", name,
		"pages", total,
		"chars", len(res.Text),
		"warnings", len(warnings),
		"elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}
