package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/medaldash/internal/adapters/export"
	"github.com/okian/medaldash/internal/domain/charts"
	"github.com/okian/medaldash/pkg/logger"
)

// ChartsHandler serves the JSON data routes and the workbook export.
type ChartsHandler struct {
	deps Dependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps Dependencies) *ChartsHandler {
	return &ChartsHandler{deps: deps}
}

type sportsResponse struct {
	Sports []string `json:"sports"`
}

type dashboardResponse struct {
	Sport  string         `json:"sport"`
	Charts []charts.Chart `json:"charts"`
}

// HandleSports handles GET /api/sports.
func (h *ChartsHandler) HandleSports(w http.ResponseWriter, r *http.Request) {
	sports, err := h.deps.Sports(r.Context())
	if err != nil {
		writeInternal(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, sportsResponse{Sports: sports})
}

// HandleChart handles GET /api/charts/{chart}.
func (h *ChartsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	id := charts.ID(r.PathValue("chart"))
	if !charts.Known(id) {
		writeError(w, http.StatusNotFound, "unknown_chart", fmt.Errorf("%w: %s", ErrUnknownChart, id))
		return
	}
	sport, err := SportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	c, err := h.deps.Chart(r.Context(), id, sport)
	if err != nil {
		writeInternal(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDashboard handles GET /api/dashboard: every chart in one response.
func (h *ChartsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sport, err := SportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	list, err := h.deps.Dashboard(r.Context(), sport)
	if err != nil {
		writeInternal(r.Context(), w, err)
		return
	}
	h.deps.RecordSelection(r.Context(), sport)
	writeJSON(w, http.StatusOK, dashboardResponse{Sport: sport, Charts: list})
}

// HandleForecast handles GET /api/forecast.
func (h *ChartsHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	sport, err := SportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	f, err := h.deps.Forecast(r.Context(), sport)
	if err != nil {
		writeInternal(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// HandleExport handles GET /api/export.xlsx.
func (h *ChartsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	sport, err := SportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var buf bytes.Buffer
	if err := h.deps.Export(r.Context(), sport, &buf); err != nil {
		writeInternal(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(sport)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logger.Get().Warn(r.Context(), "export write failed", logger.Error(errors.Join(ErrServe, err)))
	}
}

// ImageHandler serves chart PNGs.
type ImageHandler struct {
	deps     Dependencies
	renderer Renderer
}

// NewImageHandler creates a new image handler.
func NewImageHandler(deps Dependencies, renderer Renderer) *ImageHandler {
	return &ImageHandler{deps: deps, renderer: renderer}
}

// HandleImage handles GET /charts/{chart}.png.
func (h *ImageHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	id := charts.ID(name)
	if !ok || !charts.Known(id) {
		writeError(w, http.StatusNotFound, "unknown_chart", fmt.Errorf("%w: %s", ErrUnknownChart, r.PathValue("file")))
		return
	}
	sport, err := SportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	c, err := h.deps.Chart(r.Context(), id, sport)
	if err != nil {
		writeInternal(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(r.Context(), c, &buf); err != nil {
		writeInternal(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logger.Get().Warn(r.Context(), "image write failed", logger.Error(errors.Join(ErrServe, err)))
	}
}
