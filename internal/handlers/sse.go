package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui"
	"sales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	view      ui.Options
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, view ui.Options, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		view:      view,
		logger:    logger,
	}
}

// dashboardSignals are the widget values the page sends with every request.
type dashboardSignals struct {
	Region     string   `json:"region"`
	AllYears   bool     `json:"allYears"`
	Year       flexInt  `json:"year"`
	Sellers    []string `json:"sellers"`
	TopSellers flexInt  `json:"topSellers"`
}

func (s dashboardSignals) filters() models.Filters {
	return models.Filters{
		Region:     s.Region,
		AllYears:   s.AllYears || s.Year == 0,
		Year:       int(s.Year),
		Sellers:    s.Sellers,
		TopSellers: int(s.TopSellers),
	}
}

// flexInt accepts numbers and numeric strings; range and number inputs may
// bind either.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// HandleDashboard rebuilds the dashboard from the current signals and patches
// the body, the seller options and the metric signals.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Invalid signals"), observability.GetRequestID(r.Context()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	sse := datastar.NewSSE(w, r)

	res, err := h.dashboard.Build(ctx, signals.filters())
	if err != nil {
		h.patchError(ctx, sse, err)
		return
	}

	view, err := ui.Build(ctx, res, h.view)
	if err != nil {
		h.patchError(ctx, sse, err)
		return
	}

	if err := h.patchView(ctx, sse, view); err != nil {
		h.logger.WarnContext(ctx, "patch dashboard", "error", err)
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patchView(ctx context.Context, sse *datastar.ServerSentEventGenerator, view *ui.View) error {
	for _, c := range []templ.Component{templates.Body(view), templates.SellerOptions(view), templates.Error("")} {
		html, err := templates.String(ctx, c)
		if err != nil {
			return err
		}
		if err := sse.PatchElements(html); err != nil {
			return err
		}
	}

	signals, err := view.UpdateSignals()
	if err != nil {
		return err
	}
	return sse.PatchSignals(signals)
}

func (h *SSEHandlers) patchError(ctx context.Context, sse *datastar.ServerSentEventGenerator, err error) {
	appErr := appError(err)
	h.logger.Log(ctx, levelFor(appErr), "dashboard update failed",
		"error_code", appErr.Code,
		"cause", err,
	)

	html, renderErr := templates.String(ctx, templates.Error(appErr.Message))
	if renderErr != nil {
		h.logger.ErrorContext(ctx, "render error banner", "error", renderErr)
		return
	}
	if patchErr := sse.PatchElements(html); patchErr != nil {
		h.logger.WarnContext(ctx, "patch error banner", "error", patchErr)
	}
}
