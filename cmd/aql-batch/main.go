package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/texqa/aql-extractor/internal/archive"
	"github.com/texqa/aql-extractor/internal/batch"
	"github.com/texqa/aql-extractor/internal/common"
	"github.com/texqa/aql-extractor/internal/export"
	"github.com/texqa/aql-extractor/internal/fields"
	"github.com/texqa/aql-extractor/internal/pdftext"
	"github.com/texqa/aql-extractor/internal/pipeline"
	"github.com/texqa/aql-extractor/internal/profile"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir         = flag.String("dir", "", "directory of AQL report files to process (required)")
		out         = flag.String("out", "", "output XLSX file path (defaults to parent directory)")
		workers     = flag.Int("workers", 0, "extraction workers (defaults to EXTRACT_WORKERS)")
		profilePath = flag.String("profile", "", "extraction profile JSON (defaults to PROFILE_PATH)")
		archiveDSN  = flag.String("archive", "", "archive DSN: postgres:// URL or SQLite path (defaults to ARCHIVE_DSN)")
		watch       = flag.Bool("watch", false, "keep watching the directory and re-export on new reports")
		debounce    = flag.Duration("debounce", 500*time.Millisecond, "watch debounce window")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), export.DefaultWorkbookName)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Extract.Workers = *workers
	}
	if *profilePath != "" {
		cfg.Extract.ProfilePath = *profilePath
	}
	if *archiveDSN != "" {
		cfg.Archive.DSN = *archiveDSN
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := profile.Resolve(cfg.Extract.ProfilePath, logger)
	if err != nil {
		logger.Error("failed to load profile", "error", err)
		os.Exit(1)
	}
	extractor, err := fields.NewExtractor(opts, logger)
	if err != nil {
		logger.Error("failed to build extractor", "error", err)
		os.Exit(1)
	}

	var store *archive.Store
	if cfg.Archive.DSN != "" {
		store, err = archive.Open(ctx, cfg.Archive, logger)
		if err != nil {
			logger.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	reader := pdftext.NewReader(logger)
	agg := batch.NewAggregator(extractor, logger, batch.WithWorkers(cfg.Extract.Workers))
	proc := pipeline.NewProcessor(logger, reader, agg, store)
	writer := export.NewWriter(logger)

	logger.Info("scanning directory", "dir", *dir)
	paths, stats, err := pipeline.ScanDirectory(*dir, true)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"failed", stats.Failed)

	sources := make([]pipeline.Source, len(paths))
	for i, p := range paths {
		sources[i] = pipeline.Source{Name: filepath.Base(p), Path: p}
	}

	results := proc.Run(ctx, sources)
	book := newWorkbookState(extractor.Schema())
	for _, res := range results {
		book.add(res)
	}
	if err := book.write(writer, *out); err != nil {
		logger.Error("failed to export workbook", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_processed", book.processed,
		"failures", book.failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", book.processed)
	fmt.Printf("- Failures: %d\n", book.failures)
	fmt.Printf("- Output: %s\n", *out)

	if *watch {
		if err := watchLoop(ctx, *dir, *debounce, proc, writer, *out, book, logger); err != nil {
			logger.Error("watch mode failed", "error", err)
			os.Exit(1)
		}
	}
}

// watchLoop re-extracts reports as they land in dir and rewrites the
// workbook after every flush.
func watchLoop(ctx context.Context, dir string, debounce time.Duration, proc *pipeline.Processor, writer *export.Writer, out string, book *workbookState, logger *slog.Logger) error {
	evCh, errCh, err := pipeline.StartWatcher(ctx, pipeline.WatchConfig{
		Roots:    []string{dir},
		Debounce: debounce,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("watching directory", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-evCh:
			if !ok {
				return nil
			}
			res := proc.Run(ctx, []pipeline.Source{{Name: filepath.Base(p), Path: p}})[0]
			book.add(res)
			if res.Outcome.Failed() {
				logger.Warn("watch.extract.failed", "doc", res.Outcome.Name, "reason", res.Outcome.Reason)
				continue
			}
			if err := book.write(writer, out); err != nil {
				logger.Error("watch.export.failed", "error", err)
			}
		case werr, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			logger.Error("watch.error", "error", werr)
		}
	}
}

// workbookState accumulates records across runs, replacing a record when
// the same report name is dropped again.
type workbookState struct {
	schema    []string
	order     []string
	byName    map[string]fields.Record
	processed int
	failures  int
}

func newWorkbookState(schema []string) *workbookState {
	return &workbookState{
		schema: schema,
		byName: make(map[string]fields.Record),
	}
}

func (b *workbookState) add(res pipeline.Result) {
	if res.Outcome.Failed() {
		b.failures++
		return
	}
	name := res.Outcome.Name
	if _, seen := b.byName[name]; !seen {
		b.order = append(b.order, name)
	}
	b.byName[name] = *res.Outcome.Record
	b.processed++
}

func (b *workbookState) write(writer *export.Writer, out string) error {
	records := make([]fields.Record, 0, len(b.order))
	for _, name := range b.order {
		records = append(records, b.byName[name])
	}
	return writer.WriteFile(out, b.schema, records)
}
