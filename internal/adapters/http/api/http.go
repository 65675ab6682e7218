// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/medaldash/internal/domain/analytics"
	"github.com/okian/medaldash/internal/domain/charts"
	"github.com/okian/medaldash/pkg/logger"
)

// maxSportLen bounds the sport query parameter.
const maxSportLen = 128

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Sports(ctx context.Context) ([]string, error)
	Chart(ctx context.Context, id charts.ID, sport string) (charts.Chart, error)
	Dashboard(ctx context.Context, sport string) ([]charts.Chart, error)
	Forecast(ctx context.Context, sport string) (analytics.Forecast, error)
	Export(ctx context.Context, sport string, w io.Writer) error

	// RecordSelection counts a dashboard view for sport.
	RecordSelection(ctx context.Context, sport string)
}

// Renderer draws a chart as an image.
type Renderer interface {
	Render(ctx context.Context, c charts.Chart, w io.Writer) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	chartsHandler *ChartsHandler
	imageHandler  *ImageHandler
	limiter       *RateLimiter
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRateLimiter enables per-client rate limiting on the data routes.
func WithRateLimiter(l *RateLimiter) ServerOption {
	return func(s *Server) {
		s.limiter = l
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, renderer Renderer, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		chartsHandler: NewChartsHandler(deps),
		imageHandler:  NewImageHandler(deps, renderer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	if s.limiter != nil {
		s.limiter.StartJanitor(ctx)
	}

	mux.HandleFunc("GET /healthz", s.wrap("healthz", s.healthHandler.HandleHealth, false))
	mux.HandleFunc("GET /metrics", s.wrap("metrics", s.healthHandler.HandleHealth, false))
	mux.HandleFunc("GET /stats", s.wrap("stats", s.statsHandler.HandleStats, false))

	mux.HandleFunc("GET /api/sports", s.wrap("sports", s.chartsHandler.HandleSports, true))
	mux.HandleFunc("GET /api/charts/{chart}", s.wrap("charts", s.chartsHandler.HandleChart, true))
	mux.HandleFunc("GET /api/dashboard", s.wrap("dashboard", s.chartsHandler.HandleDashboard, true))
	mux.HandleFunc("GET /api/forecast", s.wrap("forecast", s.chartsHandler.HandleForecast, true))
	mux.HandleFunc("GET /api/export.xlsx", s.wrap("export", s.chartsHandler.HandleExport, true))
	mux.HandleFunc("GET /charts/{file}", s.wrap("chart_png", s.imageHandler.HandleImage, true))
}

// wrap applies the middleware chain: request id, metrics, then the optional
// rate limit.
func (s *Server) wrap(endpoint string, h http.HandlerFunc, limited bool) http.HandlerFunc {
	if limited && s.limiter != nil {
		h = s.limiter.Middleware(h, endpoint)
	}
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeInternal logs err and answers 500 without leaking details.
func writeInternal(ctx context.Context, w http.ResponseWriter, err error) {
	logger.Get().Error(ctx, "request failed", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal", nil)
}

// SportParam reads the optional sport filter. An absent or blank value means
// no filter.
func SportParam(r *http.Request) (string, error) {
	sport := strings.TrimSpace(r.URL.Query().Get("sport"))
	if len(sport) > maxSportLen {
		return "", fmt.Errorf("%w: sport longer than %d bytes", ErrBadRequest, maxSportLen)
	}
	return sport, nil
}
