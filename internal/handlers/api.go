package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const (
	cacheMaxAge    = "private, max-age=60"
	exportFilename = "vendas.xlsx"
)

// StatsSource reports runtime counters for /admin/stats.
type StatsSource interface {
	Stats() map[string]any
}

type APIHandlers struct {
	dashboard *services.Dashboard
	upstream  StatsSource
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, upstream StatsSource, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		upstream:  upstream,
		logger:    logger,
	}
}

// build runs the pipeline for the filters in the query string.
func (h *APIHandlers) build(r *http.Request) (*services.Result, error) {
	filters, err := models.ParseQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}
	return h.dashboard.Build(r.Context(), filters)
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, appError(err), observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleSales(w http.ResponseWriter, r *http.Request) {
	res, err := h.build(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := map[string]any{
		"filters": res.Filters,
		"total":   len(res.Sales),
		"sales":   res.Sales,
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheMaxAge})
}

func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	res, err := h.build(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := map[string]any{
		"filters":        res.Filters,
		"seller_options": res.SellerOptions,
		"report":         res.Report,
		"generated_at":   res.GeneratedAt.Format(time.RFC3339),
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheMaxAge})
}

func (h *APIHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	name := charts.Name(r.PathValue("name"))
	if !charts.Valid(name) {
		h.fail(w, r, errors.NotFound("Unknown chart "+string(name)))
		return
	}

	res, err := h.build(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := charts.Render(name, res.Report)
	if err != nil {
		h.fail(w, r, errors.InternalWrap(err, "Failed to render chart"))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if _, err := w.Write(c.SVG); err != nil {
		h.logger.WarnContext(r.Context(), "write chart", "chart", name, "error", err)
	}
}

func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	res, err := h.build(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, res.Sales, res.Report.Sellers); err != nil {
		h.fail(w, r, errors.InternalWrap(err, "Failed to build spreadsheet"))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "write spreadsheet", "error", err)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := map[string]any{
		"dashboard": h.dashboard.Stats(),
	}
	if h.upstream != nil {
		stats["source"] = h.upstream.Stats()
	}

	errors.WriteSuccess(w, stats)
}
