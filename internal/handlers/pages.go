package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui"
	"sales-dashboard/internal/ui/templates"
)

const renderTimeout = 20 * time.Second

type PageHandlers struct {
	dashboard *services.Dashboard
	view      ui.Options
	logger    *slog.Logger
}

func NewPageHandlers(dashboard *services.Dashboard, view ui.Options, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		dashboard: dashboard,
		view:      view,
		logger:    logger,
	}
}

// HandleDashboard serves the full page for the filters in the query string.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	filters, err := models.ParseQuery(r.URL.Query())
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	res, err := h.dashboard.Build(ctx, filters)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	view, err := ui.Build(ctx, res, h.view)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := templates.Dashboard(view).Render(ctx, w); err != nil {
		h.logger.ErrorContext(ctx, "render dashboard", "error", err)
	}
}

func (h *PageHandlers) fail(ctx context.Context, w http.ResponseWriter, err error) {
	appErr := appError(err)
	h.logger.Log(ctx, levelFor(appErr), "dashboard page failed",
		"error_code", appErr.Code,
		"cause", err,
	)
	http.Error(w, appErr.Message, appErr.StatusCode)
}

func levelFor(appErr *errors.AppError) slog.Level {
	if appErr.StatusCode < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}
