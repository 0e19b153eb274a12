package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tiliavir/punchclock/internal/export"
	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/preview"
	"github.com/Tiliavir/punchclock/internal/storage"
	"github.com/Tiliavir/punchclock/internal/timecalc"
)

//go:embed static
var staticFiles embed.FS

const shutdownTimeout = 5 * time.Second

// Store is the subset of *storage.Store the HTTP API needs.
type Store interface {
	GetOrCreateToday() (model.DailyEntry, error)
	SetField(name string) (model.DailyEntry, error)
	ListEntries() ([]model.DailyEntry, error)
}

// Options tunes a Server.
type Options struct {
	// RecentDays bounds the "recent" list of /api/preview.
	RecentDays int
	// Now replaces time.Now, mainly for tests.
	Now func() time.Time
}

// Server exposes the timesheet over HTTP. It holds no per-user state: every
// request reads the store afresh.
type Server struct {
	store      Store
	logger     *slog.Logger
	recentDays int
	now        func() time.Time
	handler    http.Handler
}

// New wires the routes and middleware around store.
func New(store Store, logger *slog.Logger, opts Options) *Server {
	s := &Server{
		store:      store,
		logger:     logger,
		recentDays: opts.RecentDays,
		now:        opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/today", s.handleToday)
	mux.HandleFunc("POST /api/update/{field}", s.handleUpdate)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("GET /api/download", s.handleDownload)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /", http.FileServerFS(static))

	s.handler = requestID(cors(s.logRequests(mux)))
	return s
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type updateResponse struct {
	Success bool             `json:"success"`
	Entry   model.DailyEntry `json:"entry"`
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.GetOrCreateToday()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to load today's data", err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	field := r.PathValue("field")
	entry, err := s.store.SetField(field)

	var invalid *model.InvalidFieldError
	switch {
	case err == nil:
		s.logger.Info("punch recorded",
			slog.String("field", field),
			slog.String("date", entry.Date),
			slog.String("request_id", RequestIDFrom(r.Context())))
		s.writeJSON(w, http.StatusOK, updateResponse{Success: true, Entry: entry})
	case errors.As(err, &invalid):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid field"})
	case storage.IsIOError(err):
		s.fail(w, r, http.StatusInternalServerError, "Failed to save data", err)
	default:
		s.fail(w, r, http.StatusInternalServerError, "Failed to update time", err)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEntries()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to load preview data", err)
		return
	}

	if r.URL.Query().Get("shape") == "entries" {
		s.writeJSON(w, http.StatusOK, preview.Legacy(entries))
		return
	}

	// Previewing must not create today's entry; an unsaved blank stands in.
	key := timecalc.DateKey(s.now())
	today := model.NewDailyEntry(key)
	for _, e := range entries {
		if e.Date == key {
			today = e
			break
		}
	}
	s.writeJSON(w, http.StatusOK, preview.Build(entries, today, s.recentDays))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEntries()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to generate Excel file", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, entries); err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to generate Excel file", err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(s.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("writing download", slog.Any("error", err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	s.logger.Error(msg,
		slog.String("path", r.URL.Path),
		slog.String("request_id", RequestIDFrom(r.Context())),
		slog.Any("error", err))
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", slog.Any("error", err))
	}
}
