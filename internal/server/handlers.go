package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"

	"github.com/KaramelBytes/tabula/internal/loader"
	"github.com/KaramelBytes/tabula/internal/table"
)

const (
	defaultHintLimit = 10
	maxBodyBytes     = 64 << 10
)

type statusResponse struct {
	State    loader.State `json:"state"`
	Error    string       `json:"error,omitempty"`
	Source   string       `json:"source,omitempty"`
	Rows     int          `json:"rows"`
	Coerced  int          `json:"coerced"`
	Sessions int          `json:"sessions"`
}

type sessionResponse struct {
	ID       string         `json:"id"`
	Snapshot table.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Error    string          `json:"error"`
	Snapshot *table.Snapshot `json:"snapshot,omitempty"`
}

type createRequest struct {
	PageSize int `json:"page_size"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type sortRequest struct {
	Column string `json:"column"`
	// Direction forces asc/desc/none; empty applies a header click.
	Direction string `json:"direction"`
}

type pageRequest struct {
	// Page is 1-based.
	Page int  `json:"page"`
	All  bool `json:"all"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{State: s.pending.State(), Sessions: s.sessions.len()}
	if resp.State != loader.StateLoading {
		ds, err := s.Dataset()
		if err != nil {
			resp.State = loader.StateFailed
			resp.Error = err.Error()
		} else {
			resp.Source = ds.Source
			resp.Rows = len(ds.Records)
			resp.Coerced = ds.Stats.CoercedTotal()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.ready(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ds.Columns)
}

// handleHints lists the column's distinct values whose text contains q.
func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.ready(w)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	col, found := ds.Column(name)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", table.ErrUnknownColumn, name))
		return
	}
	limit := defaultHintLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	distinct := col.Distinct
	if distinct == nil {
		values := make([]table.Value, len(ds.Records))
		for i, rec := range ds.Records {
			values[i] = rec.Get(name)
		}
		distinct = table.DistinctOf(values)
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(r.URL.Query().Get("q")))
	hints := make([]string, 0, limit)
	for _, v := range distinct {
		text := v.Text()
		if text == "" || !strings.Contains(fold.String(text), needle) {
			continue
		}
		hints = append(hints, text)
		if len(hints) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, hints)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.ready(w)
	if !ok {
		return
	}
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	size := s.pageSize
	if req.PageSize != 0 {
		size = req.PageSize
	}
	v, err := table.NewView(ds, size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess := s.sessions.create(v)
	s.logger.Debug("session created", "id", sess.id, "page_size", size)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.id, Snapshot: v.Snapshot(formatContext(r))})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.id, Snapshot: sess.current().Snapshot(formatContext(r))})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	s.interact(w, r, &req, func(v table.View) (table.View, error) {
		return v.Search(req.Query), nil
	})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	s.interact(w, r, &req, func(v table.View) (table.View, error) {
		if req.Direction == "" {
			return v.ClickHeader(req.Column)
		}
		dir, ok := table.ParseDirection(req.Direction)
		if !ok {
			return v, fmt.Errorf("invalid direction %q", req.Direction)
		}
		return v.SortBy(req.Column, dir)
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	s.interact(w, r, &req, func(v table.View) (table.View, error) {
		if req.All {
			return v.ShowAll(), nil
		}
		if req.Page < 1 {
			return v, fmt.Errorf("%w: page numbers start at 1, got %d", table.ErrPageOutOfRange, req.Page)
		}
		return v.GoTo(req.Page - 1)
	})
}

// interact decodes req, applies fn to the session's view and answers with
// the resulting snapshot. A rejected interaction keeps the current view and
// reports it alongside the error.
func (s *Server) interact(w http.ResponseWriter, r *http.Request, req any, fn func(table.View) (table.View, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := decodeBody(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fc := formatContext(r)
	v, err := sess.apply(fn)
	if err != nil {
		snap := v.Snapshot(fc)
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Snapshot: &snap})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.id, Snapshot: v.Snapshot(fc)})
}

func (s *Server) ready(w http.ResponseWriter) (*table.Dataset, bool) {
	ds, err := s.Dataset()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return nil, false
	}
	return ds, true
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	if _, ok := s.ready(w); !ok {
		return nil, false
	}
	sess, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return nil, false
	}
	return sess, true
}

func statusFor(err error) int {
	if errors.Is(err, table.ErrPageOutOfRange) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// formatContext returns HTML cells when the client asks for ?html=true.
func formatContext(r *http.Request) table.FormatContext {
	h, _ := strconv.ParseBool(r.URL.Query().Get("html"))
	return table.FormatContext{HTML: h}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
