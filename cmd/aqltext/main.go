package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/fields"
	"github.com/texqa/aql-extractor/internal/pdftext"
	"github.com/texqa/aql-extractor/internal/profile"
	"github.com/texqa/aql-extractor/internal/textnorm"
)

func main() {
	var (
		profilePath = flag.String("profile", "", "extraction profile JSON")
		showText    = flag.Bool("text", false, "also print the normalized report text")
		asJSON      = flag.Bool("json", false, "print the record as JSON instead of field lines")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage: aqltext [-profile file] [-text] [-json] <report.pdf|report.txt>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	opts, err := profile.Resolve(*profilePath, logger)
	if err != nil {
		logger.Error("failed to load profile", "error", err)
		os.Exit(1)
	}
	extractor, err := fields.NewExtractor(opts, logger)
	if err != nil {
		logger.Error("failed to build extractor", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	text, pages, err := loadText(path, logger)
	if err != nil {
		logger.Error("failed to read report", "path", path, "error", err)
		os.Exit(1)
	}

	rec, err := extractor.Extract(fields.Document{Name: filepath.Base(path), Text: text})
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	if *showText {
		fmt.Println("--- text ---")
		fmt.Println(textnorm.Normalize(text))
		fmt.Println("--- fields ---")
	}
	if *asJSON {
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			logger.Error("failed to encode record", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	} else {
		for _, field := range extractor.Schema() {
			fmt.Printf("%s: %s\n", field, rec.Get(field))
		}
	}

	logger.Info("extraction complete",
		"path", path,
		"pages", pages,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds())
}

func loadText(path string, logger *slog.Logger) (string, int, error) {
	if constants.MapExtToFormat(filepath.Ext(path)) == constants.FormatText {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", 0, err
		}
		return string(data), 0, nil
	}
	res, err := pdftext.NewReader(logger).ExtractFile(context.Background(), path)
	if err != nil {
		return "", 0, err
	}
	for _, w := range res.Warnings {
		logger.Warn("page skipped", "warning", w)
	}
	return res.Text, res.Pages, nil
}
