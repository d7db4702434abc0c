package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/archive"
	"github.com/texqa/aql-extractor/internal/batch"
	"github.com/texqa/aql-extractor/internal/common"
	"github.com/texqa/aql-extractor/internal/fields"
	"github.com/texqa/aql-extractor/internal/pdftext"
)

// Source is one report to process: a filesystem path or in-memory bytes
// (uploads). Name is the display name carried through outcomes.
type Source struct {
	Name string
	Path string
	Data []byte
}

// Result is one processed source: its outcome plus the text stage's
// byproducts needed by callers (snippets, archive rows).
type Result struct {
	Outcome batch.Outcome
	Text    string
	Pages   int
	SHA256  string
}

// Processor coordinates the text stage (PDF text layer or verbatim .txt)
// and the field stage (strategy chains) for whole batches, and archives
// outcomes when a store is configured.
type Processor struct {
	logger  *slog.Logger
	reader  *pdftext.Reader
	agg     *batch.Aggregator
	archive *archive.Store
}

// NewProcessor wires the two stages. store may be nil to disable archiving.
func NewProcessor(logger *slog.Logger, reader *pdftext.Reader, agg *batch.Aggregator, store *archive.Store) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, reader: reader, agg: agg, archive: store}
}

// Run processes sources and returns one Result per source, in input order.
// A source that cannot be read or parsed fails alone; the rest of the batch
// is unaffected.
func (p *Processor) Run(ctx context.Context, sources []Source) []Result {
	batchID := uuid.New()
	docs := make([]fields.Document, len(sources))
	results := make([]Result, len(sources))
	loadErrs := make([]error, len(sources))

	for i, src := range sources {
		text, pages, sum, err := p.textStage(ctx, src)
		docs[i] = fields.Document{Name: src.Name, Text: text}
		loadErrs[i] = err
		results[i].Text = text
		results[i].Pages = pages
		results[i].SHA256 = sum
		if err != nil {
			p.logger.Error("pipeline.text.failed", "doc", src.Name, "err", err)
		}
	}

	outcomes := p.agg.ExtractAll(ctx, docs)
	for i := range results {
		if loadErrs[i] != nil {
			outcomes[i] = batch.Outcome{Name: sources[i].Name, Reason: loadErrs[i].Error()}
		}
		results[i].Outcome = outcomes[i]
	}

	if p.archive != nil {
		p.archiveResults(ctx, batchID, results)
	}
	return results
}

// textStage reads one source and pulls its text by format.
func (p *Processor) textStage(ctx context.Context, src Source) (text string, pages int, sum string, err error) {
	format := constants.MapExtToFormat(filepath.Ext(src.Name))
	if format == "" {
		return "", 0, "", common.NewAppError("SOURCE_ERROR", src.Name, common.ErrUnsupported)
	}

	data := src.Data
	if data == nil {
		if src.Path == "" {
			return "", 0, "", common.NewAppError("SOURCE_ERROR", src.Name, errors.New("unreadable upload"))
		}
		data, err = os.ReadFile(src.Path)
		if err != nil {
			return "", 0, "", common.WrapError(err, "read source")
		}
	}
	digest := sha256.Sum256(data)
	sum = hex.EncodeToString(digest[:])

	if format == constants.FormatText {
		return string(data), 0, sum, nil
	}
	res, err := p.reader.ExtractBytes(ctx, src.Name, data)
	if err != nil {
		return "", 0, sum, err
	}
	return res.Text, res.Pages, sum, nil
}

func (p *Processor) archiveResults(ctx context.Context, batchID uuid.UUID, results []Result) {
	for _, r := range results {
		row := archive.OutcomeRow{
			BatchID:       batchID,
			DocName:       r.Outcome.Name,
			ContentSHA256: r.SHA256,
			Status:        constants.StatusParsed,
			Reason:        r.Outcome.Reason,
		}
		if r.Outcome.Failed() {
			row.Status = constants.StatusFailed
		} else if b, err := r.Outcome.Record.MarshalJSON(); err == nil {
			row.RecordJSON = b
		}
		if err := p.archive.SaveOutcome(ctx, row); err != nil {
			p.logger.Warn("pipeline.archive.failed", "doc", r.Outcome.Name, "err", err)
		}
	}
}
