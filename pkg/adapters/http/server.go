// Package http serves the dashboard to browsers: a JSON API over the chart
// coordinator and an SSE stream of chart lifecycle events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Dashboard is the part of tally.Dashboard the API drives.
type Dashboard interface {
	RefreshAll(ctx context.Context) error
	Resize(source string)
	SetTheme(name string) error
	Theme() string
	Themes() []string
	Style() domain.Style
	Chart(slot domain.Slot) (domain.ChartConfig, bool)
	Charts() map[domain.Slot]domain.ChartConfig
	Store() ports.RecordStore
}

var _ Dashboard = (*tally.Dashboard)(nil)

// Server holds the handlers of the API.
type Server struct {
	Dashboard Dashboard
	Streams   *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithStreams shares a stream manager, typically the one the live Renderer
// broadcasts on.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for d.
func NewHandler(d Dashboard, opts ...Option) http.Handler {
	s := &Server{Dashboard: d}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/charts", s.ListCharts)
	r.Get("/charts/{slot}", s.GetChart)
	r.Post("/refresh", s.Refresh)
	r.Post("/viewport", s.Resize)
	r.Get("/style", s.GetStyle)
	r.Post("/theme", s.SetTheme)
	r.Post("/leads", replaceHandler(s, func(ctx context.Context, st ports.RecordStore, v []domain.Lead) error {
		return st.ReplaceLeads(ctx, v)
	}))
	r.Post("/projects", replaceHandler(s, func(ctx context.Context, st ports.RecordStore, v []domain.Project) error {
		return st.ReplaceProjects(ctx, v)
	}))
	r.Post("/payments", replaceHandler(s, func(ctx context.Context, st ports.RecordStore, v []domain.Payment) error {
		return st.ReplacePayments(ctx, v)
	}))
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Tally API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := loadSpec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	} else if err != nil {
		s.logger.Error("failed to load OpenAPI spec", "err", err)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "tally-http",
		"version":     tally.Version,
		"api_version": apiVersion,
	})
}

// ListCharts handles GET /charts.
func (s *Server) ListCharts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Dashboard.Charts())
}

// GetChart handles GET /charts/{slot}.
func (s *Server) GetChart(w http.ResponseWriter, r *http.Request) {
	slot, err := domain.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	cfg, ok := s.Dashboard.Chart(slot)
	if !ok {
		http.Error(w, fmt.Sprintf("slot %s is empty", slot), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

// Refresh handles POST /refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	err := s.Dashboard.RefreshAll(r.Context())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrNotInitialized):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.logger.Error("refresh failed", "err", err)
		http.Error(w, fmt.Sprintf("Refresh error: %v", err), http.StatusInternalServerError)
	}
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Resize handles POST /viewport. The body is optional and only logged.
func (s *Server) Resize(w http.ResponseWriter, r *http.Request) {
	var body viewportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	s.logger.Debug("viewport resized", "width", body.Width, "height", body.Height)
	s.Dashboard.Resize("http")
	w.WriteHeader(http.StatusAccepted)
}

type styleResponse struct {
	Theme  string       `json:"theme"`
	Themes []string     `json:"themes"`
	Style  domain.Style `json:"style"`
}

func (s *Server) style() styleResponse {
	return styleResponse{
		Theme:  s.Dashboard.Theme(),
		Themes: s.Dashboard.Themes(),
		Style:  s.Dashboard.Style(),
	}
}

// GetStyle handles GET /style.
func (s *Server) GetStyle(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.style())
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// SetTheme handles POST /theme.
func (s *Server) SetTheme(w http.ResponseWriter, r *http.Request) {
	var body themeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Theme == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Dashboard.SetTheme(body.Theme); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnknownTheme) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.writeJSON(w, http.StatusOK, s.style())
}

func replaceHandler[T any](s *Server, replace func(context.Context, ports.RecordStore, []T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var records []T
		if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("replace: invalid request body", "path", r.URL.Path, "err", err)
			return
		}
		err := replace(r.Context(), s.Dashboard.Store(), records)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, domain.ErrReadOnly):
			http.Error(w, err.Error(), http.StatusMethodNotAllowed)
		default:
			s.logger.Error("replace failed", "path", r.URL.Path, "err", err)
			http.Error(w, fmt.Sprintf("Store error: %v", err), http.StatusInternalServerError)
		}
	}
}

// SubscribeEvents handles GET /events (SSE). A client first receives the
// current charts, then every change, optionally filtered by ?slot=a,b.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var slots []domain.Slot
	if raw := r.URL.Query().Get("slot"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			slot, err := domain.ParseSlot(strings.TrimSpace(name))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			slots = append(slots, slot)
		}
	}

	ch, cancel := s.Streams.Subscribe(slots...)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	current := s.Dashboard.Charts()
	for _, slot := range domain.Slots() {
		cfg, ok := current[slot]
		if !ok || (len(slots) > 0 && !slices.Contains(slots, slot)) {
			continue
		}
		s.writeEvent(w, ChartEvent{Kind: EventUpdate, Slot: slot, Config: &cfg})
	}
	flusher.Flush()

	s.logger.Info("SSE client connected", "slots", slots)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected")
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			s.writeEvent(w, evt)
			flusher.Flush()
		}
	}
}

func (s *Server) writeEvent(w http.ResponseWriter, evt ChartEvent) {
	data, err := evt.encode()
	if err != nil {
		s.logger.Error("SSE: event encode failed", "err", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Kind, data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
