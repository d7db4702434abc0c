package server

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/export"
	"github.com/texqa/aql-extractor/internal/fields"
	"github.com/texqa/aql-extractor/internal/pipeline"
	"github.com/texqa/aql-extractor/internal/textnorm"
)

type outcomePayload struct {
	Name    string          `json:"name"`
	Status  string          `json:"status"`
	Record  json.RawMessage `json:"record,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Snippet string          `json:"snippet,omitempty"`
}

type extractResponse struct {
	Count    int              `json:"count"`
	Failed   int              `json:"failed"`
	Columns  []string         `json:"columns"`
	Outcomes []outcomePayload `json:"outcomes"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			resp["archive"] = "degraded"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp["archive"] = "ok"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"columns": s.schema})
}

// handleExtract accepts multipart report uploads (repeatable "files" field)
// and returns per-document outcomes in upload order, each with a bounded
// text snippet for debugging.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	results, ok := s.runUploads(w, r)
	if !ok {
		return
	}

	resp := extractResponse{Columns: s.schema, Outcomes: make([]outcomePayload, 0, len(results))}
	for _, res := range results {
		p := outcomePayload{
			Name:    res.Outcome.Name,
			Status:  string(constants.StatusParsed),
			Snippet: snippet(res.Text, s.snippetLimit),
		}
		if res.Outcome.Failed() {
			p.Status = string(constants.StatusFailed)
			p.Reason = res.Outcome.Reason
			resp.Failed++
		} else if b, err := res.Outcome.Record.MarshalJSON(); err == nil {
			p.Record = b
		}
		resp.Outcomes = append(resp.Outcomes, p)
		resp.Count++
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExtractXLSX accepts the same uploads and responds with the merged
// workbook download.
func (s *Server) handleExtractXLSX(w http.ResponseWriter, r *http.Request) {
	results, ok := s.runUploads(w, r)
	if !ok {
		return
	}

	records := make([]fields.Record, 0, len(results))
	for _, res := range results {
		if !res.Outcome.Failed() {
			records = append(records, *res.Outcome.Record)
		}
	}
	b, err := s.exporter.WorkbookBytes(s.schema, records)
	if err != nil {
		s.logger.Error("server.export.failed", "err", err)
		writeError(w, http.StatusInternalServerError, "workbook rendering failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultWorkbookName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "archive is not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("server.outcomes.failed", "err", err)
		writeError(w, http.StatusInternalServerError, "archive query failed")
		return
	}

	type rowPayload struct {
		ID        string          `json:"id"`
		BatchID   string          `json:"batch_id"`
		Name      string          `json:"name"`
		SHA256    string          `json:"sha256,omitempty"`
		Status    string          `json:"status"`
		Reason    string          `json:"reason,omitempty"`
		Record    json.RawMessage `json:"record,omitempty"`
		CreatedAt time.Time       `json:"created_at"`
	}
	out := make([]rowPayload, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowPayload{
			ID:        row.ID.String(),
			BatchID:   row.BatchID.String(),
			Name:      row.DocName,
			SHA256:    row.ContentSHA256,
			Status:    string(row.Status),
			Reason:    row.Reason,
			Record:    json.RawMessage(row.RecordJSON),
			CreatedAt: row.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": out})
}

// runUploads parses the multipart form and pushes every uploaded file
// through the processor, preserving upload order.
func (s *Server) runUploads(w http.ResponseWriter, r *http.Request) ([]pipeline.Result, bool) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, `no files uploaded; use repeatable "files" form field`)
		return nil, false
	}

	sources := make([]pipeline.Source, 0, len(headers))
	for _, fh := range headers {
		data, err := readUpload(fh)
		if err != nil {
			// carried as a failed source so the response stays aligned
			// with the upload order
			sources = append(sources, pipeline.Source{Name: fh.Filename})
			continue
		}
		sources = append(sources, pipeline.Source{Name: fh.Filename, Data: data})
	}
	return s.proc.Run(r.Context(), sources), true
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(f)
}

// snippet bounds the raw text kept for diagnostics.
func snippet(text string, limit int) string {
	t := textnorm.Normalize(text)
	if limit <= 0 || len(t) <= limit {
		return t
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(t[cut]) {
		cut--
	}
	return t[:cut]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
