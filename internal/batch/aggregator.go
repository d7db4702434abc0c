package batch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/texqa/aql-extractor/internal/fields"
)

// Outcome is the per-document result of a batch run: either a Record or a
// failure reason, never both.
type Outcome struct {
	Name   string
	Record *fields.Record
	Reason string
}

// Failed reports whether this document produced no record.
func (o Outcome) Failed() bool { return o.Record == nil }

// Aggregator fans a batch of documents across a bounded worker pool and
// collects one Outcome per document in input order.
type Aggregator struct {
	extractor *fields.Extractor
	logger    *slog.Logger
	workers   int
}

type Option func(*Aggregator)

func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

func NewAggregator(extractor *fields.Extractor, logger *slog.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{
		extractor: extractor,
		logger:    logger,
		workers:   4,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ExtractAll processes docs concurrently and returns outcomes aligned with
// the input: len(out) == len(docs) and out[i] belongs to docs[i], whatever
// order the workers finish in. One failing document never affects another;
// its Outcome carries the reason instead of a record.
func (a *Aggregator) ExtractAll(ctx context.Context, docs []fields.Document) []Outcome {
	start := time.Now()
	out := make([]Outcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range docs {
		i := i
		g.Go(func() error {
			out[i] = a.one(gctx, docs[i])
			return nil
		})
	}
	// workers report failures as data, never as errors
	_ = g.Wait()

	failed := 0
	for _, o := range out {
		if o.Failed() {
			failed++
		}
	}
	a.logger.Info("batch.extract.done",
		"docs", len(docs),
		"failed", failed,
		"workers", a.workers,
		"elapsed_ms", time.Since(start).Milliseconds())
	return out
}

func (a *Aggregator) one(ctx context.Context, doc fields.Document) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Name: doc.Name, Reason: err.Error()}
	}
	rec, err := a.extractor.Extract(doc)
	if err != nil {
		a.logger.Warn("batch.extract.failed", "doc", doc.Name, "error", err)
		return Outcome{Name: doc.Name, Reason: err.Error()}
	}
	return Outcome{Name: doc.Name, Record: &rec}
}
