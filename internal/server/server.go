// Package server exposes the views over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kopilka-dev/kopilka/internal/logger"
	"github.com/kopilka-dev/kopilka/internal/views"
)

const shutdownTimeout = 10 * time.Second

// Viewer builds the answers served by the API.
type Viewer interface {
	Dashboard(ctx context.Context, at string) views.Dashboard
	Report(category, date string) views.Report
	Investment(month string, limit int) views.Investment
	Application(ctx context.Context, req views.ApplicationRequest) views.Application
}

// Handler serves the API endpoints.
type Handler struct {
	views Viewer
}

// NewRouter returns the API router.
func NewRouter(v Viewer, log zerolog.Logger) http.Handler {
	h := &Handler{views: v}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))

	r.Get("/healthz", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)
		r.Get("/report", h.Report)
		r.Get("/investment", h.Investment)
		r.Get("/application", h.Application)
	})
	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Dashboard handles GET /api/dashboard?at=YYYY-MM-DD HH:MM:SS.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.views.Dashboard(r.Context(), r.URL.Query().Get("at")))
}

// Report handles GET /api/report?category=&date=.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		WriteError(w, http.StatusBadRequest, "category is required")
		return
	}
	WriteJSON(w, http.StatusOK, h.views.Report(category, q.Get("date")))
}

// Investment handles GET /api/investment?month=YYYY-MM&limit=.
func (h *Handler) Investment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month := q.Get("month")
	if month == "" {
		WriteError(w, http.StatusBadRequest, "month is required")
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Msg("bad limit")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, h.views.Investment(month, limit))
}

// Application handles GET /api/application with the union of the other
// endpoints' parameters.
func (h *Handler) Application(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	for _, name := range []string{"month", "category"} {
		if q.Get(name) == "" {
			WriteError(w, http.StatusBadRequest, name+" is required")
			return
		}
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, h.views.Application(r.Context(), views.ApplicationRequest{
		At:       q.Get("at"),
		Month:    q.Get("month"),
		Limit:    limit,
		Category: q.Get("category"),
		Date:     q.Get("date"),
	}))
}

// parseLimit returns 0 for an absent limit.
func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit %q must be a positive integer", s)
	}
	return n, nil
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
