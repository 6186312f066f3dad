// Package server exposes dataset views over a small JSON HTTP API.
//
// Each client opens a session holding one table.View. Interactions
// (search, sort, page) replace the session's view under its own lock and
// return the new snapshot, so requests on one session are serialised.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KaramelBytes/tabula/internal/loader"
	"github.com/KaramelBytes/tabula/internal/schema"
	"github.com/KaramelBytes/tabula/internal/table"
)

// Options configures a Server.
type Options struct {
	// Pending is the dataset load the server waits on.
	Pending *loader.Pending
	// Columns is the schema; nil picks one from the header (schema.ForHeader).
	Columns []table.Column
	// PageSize is the default rows per page for new sessions.
	PageSize int
	Logger   *log.Logger
}

// Server serves the API. Use Handler to mount it.
type Server struct {
	pending  *loader.Pending
	columns  []table.Column
	pageSize int
	logger   *log.Logger

	once     sync.Once
	dataset  *table.Dataset
	buildErr error

	sessions *sessionStore
}

// New validates opts and returns a Server.
func New(opts Options) (*Server, error) {
	if opts.Pending == nil {
		return nil, &table.ConfigurationError{Field: "pending", Reason: "no dataset load given"}
	}
	if opts.PageSize <= 0 {
		return nil, &table.ConfigurationError{Field: "rows_per_page", Reason: "must be greater than zero"}
	}
	if len(opts.Columns) > 0 {
		if err := table.Validate(opts.Columns); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		pending:  opts.Pending,
		columns:  opts.Columns,
		pageSize: opts.PageSize,
		logger:   logger,
		sessions: newSessionStore(),
	}, nil
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/columns", s.handleColumns)
		r.Get("/columns/{name}/hints", s.handleHints)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/search", s.handleSearch)
			r.Post("/sort", s.handleSort)
			r.Post("/page", s.handlePage)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// errNotReady is returned while the dataset is loading.
var errNotReady = errors.New("dataset is still loading")

// Dataset returns the built dataset once the load has resolved.
func (s *Server) Dataset() (*table.Dataset, error) {
	select {
	case <-s.pending.Done():
	default:
		return nil, errNotReady
	}
	s.once.Do(func() {
		res, err := s.pending.Result()
		if err != nil {
			s.buildErr = err
			return
		}
		cols := s.columns
		if len(cols) == 0 {
			cols = schema.ForHeader(res.Header)
		}
		s.dataset, s.buildErr = table.Build(res.Source, res.Records, cols)
		if s.buildErr == nil {
			s.logger.Info("dataset ready", "source", res.Source, "rows", len(s.dataset.Records), "coerced", s.dataset.Stats.CoercedTotal())
		}
	})
	return s.dataset, s.buildErr
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
