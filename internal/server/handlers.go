package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-tablegen/pkg/dataset"
	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/orchestrator"
	"github.com/goliatone/go-tablegen/pkg/performance"
)

type tableSummary struct {
	ID          string           `json:"id"`
	Description string           `json:"description,omitempty"`
	Layout      model.LayoutType `json:"layout"`
	Columns     int              `json:"columns"`
}

// renderRequest is the POST /api/render body.
type renderRequest struct {
	TableType       string         `json:"table_type"`
	Config          map[string]any `json:"config"`
	Data            []model.Record `json:"data"`
	Section         string         `json:"section"`
	TableID         string         `json:"table_id"`
	Renderer        string         `json:"renderer"`
	FallbackOnError *bool          `json:"fallback_on_error"`
	Theme           string         `json:"theme"`
	Variant         string         `json:"variant"`
	Standalone      bool           `json:"standalone"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, _ *http.Request) {
	ids := s.app.Store.IDs()
	out := make([]tableSummary, 0, len(ids))
	for _, id := range ids {
		tt, _ := s.app.Store.Lookup(id)
		out = append(out, tableSummary{
			ID:          id,
			Description: tt.Description,
			Layout:      tt.Config.Layout.Type,
			Columns:     len(tt.Config.Columns),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSampleTable renders the sample dataset for a table type.
func (s *Server) handleSampleTable(w http.ResponseWriter, r *http.Request) {
	tableType := chi.URLParam(r, "tableType")
	if !s.app.Store.Has(tableType) {
		writeError(w, http.StatusNotFound, "unknown table type "+strconv.Quote(tableType))
		return
	}
	rows, err := s.samples(tableType)
	if err != nil {
		s.logger(r.Context()).Error("load sample data", "table_type", tableType, "error", err)
		writeError(w, http.StatusInternalServerError, "sample data could not be loaded")
		return
	}
	s.renderTable(w, r, tableType, rows, true)
}

// handlePostedTable renders a JSON or YAML body as the table type.
func (s *Server) handlePostedTable(w http.ResponseWriter, r *http.Request) {
	tableType := chi.URLParam(r, "tableType")
	body := http.MaxBytesReader(w, r.Body, s.app.Config.Server.MaxBodyBytes)
	rows, err := dataset.Read(body, dataset.FormatFor(r.Header.Get("Content-Type")))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.renderTable(w, r, tableType, rows, false)
}

func (s *Server) renderTable(w http.ResponseWriter, r *http.Request, tableType string, rows []model.Record, standalone bool) {
	query := r.URL.Query()
	if v := query.Get("standalone"); v != "" {
		standalone, _ = strconv.ParseBool(v)
	}
	options := s.app.RenderOptions()
	options.Standalone = standalone

	result, err := s.app.Orchestrator.Generate(r.Context(), orchestrator.Request{
		TableType:       tableType,
		Data:            rows,
		Section:         query.Get("section"),
		Renderer:        query.Get("renderer"),
		ThemeName:       query.Get("theme"),
		ThemeVariant:    query.Get("variant"),
		FallbackOnError: s.app.Config.Render.FallbackOnError,
		RenderOptions:   options,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, result)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.app.Config.Server.MaxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeError(w, statusFor(err), "invalid request body: "+err.Error())
		return
	}

	fallback := s.app.Config.Render.FallbackOnError
	if req.FallbackOnError != nil {
		fallback = *req.FallbackOnError
	}
	options := s.app.RenderOptions()
	options.Standalone = req.Standalone

	result, err := s.app.Orchestrator.Generate(r.Context(), orchestrator.Request{
		TableType:       req.TableType,
		Config:          req.Config,
		Data:            req.Data,
		Section:         req.Section,
		TableID:         req.TableID,
		Renderer:        req.Renderer,
		FallbackOnError: fallback,
		ThemeName:       req.Theme,
		ThemeVariant:    req.Variant,
		RenderOptions:   options,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, result)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	rows, err := strconv.Atoi(r.URL.Query().Get("rows"))
	if err != nil || rows < 0 {
		writeError(w, http.StatusBadRequest, "rows must be a non-negative integer")
		return
	}
	writeJSON(w, http.StatusOK, performance.Classify(rows))
}

// samples loads <SampleDir>/<tableType>.{yaml,yml,json}. A missing file is
// an empty dataset.
func (s *Server) samples(tableType string) ([]model.Record, error) {
	dir := s.app.Config.Server.SampleDir
	if dir == "" {
		return []model.Record{}, nil
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, tableType+ext)
		rows, err := dataset.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return rows, err
	}
	return []model.Record{}, nil
}

func writeResult(w http.ResponseWriter, result orchestrator.Result) {
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("X-Table-Id", result.TableID)
	w.Header().Set("X-Performance-Strategy", string(result.Strategy))
	if id := result.Document.ErrorID(); id != "" {
		w.Header().Set("X-Error-Id", id)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Output)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
