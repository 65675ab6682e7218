// Package site serves the dashboard page and its static assets.
package site

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/okian/medaldash/internal/domain/charts"
	"github.com/okian/medaldash/pkg/logger"
)

// Error constants
var (
	ErrRender = errors.New("dashboard page render failed")
)

// Dependencies the page needs.
type Dependencies interface {
	Sports(ctx context.Context) ([]string, error)
	RecordSelection(ctx context.Context, sport string)
}

// Handler renders the dashboard page.
type Handler struct {
	deps     Dependencies
	title    string
	subtitle string
}

// Option configures a Handler.
type Option func(*Handler)

// WithTitle sets the page heading and the line below it.
func WithTitle(title, subtitle string) Option {
	return func(h *Handler) {
		if title != "" {
			h.title = title
		}
		h.subtitle = subtitle
	}
}

// NewHandler creates the dashboard page handler.
func NewHandler(deps Dependencies, opts ...Option) *Handler {
	h := &Handler{
		deps:     deps,
		title:    "Brasil nas Olimpíadas: Dashboard Interativo",
		subtitle: "Jogos de Verão",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the page and asset routes to mux.
func Register(_ context.Context, mux *http.ServeMux, h *Handler) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// HandleRoot handles GET / and GET /?sport=.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sports, err := h.deps.Sports(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to list sports", logger.Error(errors.Join(ErrRender, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sport := strings.TrimSpace(r.URL.Query().Get("sport"))
	h.deps.RecordSelection(ctx, sport)

	page := DashboardPage(PageData{
		Title:    h.title,
		Subtitle: h.subtitle,
		Sports:   sports,
		Selected: sport,
		Charts:   charts.All(),
	})
	templ.Handler(page).ServeHTTP(w, r)
}
