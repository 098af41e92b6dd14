package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui"
)

type Server struct {
	mux          *http.ServeMux
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	pageHandlers *handlers.PageHandlers
}

func NewServer(dashboard *services.Dashboard, upstream handlers.StatsSource, view ui.Options, logger *slog.Logger) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		apiHandlers:  handlers.NewAPIHandlers(dashboard, upstream, logger),
		sseHandlers:  handlers.NewSSEHandlers(dashboard, view, logger),
		pageHandlers: handlers.NewPageHandlers(dashboard, view, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/sales", s.apiHandlers.HandleSales)
	s.mux.HandleFunc("GET /api/report", s.apiHandlers.HandleReport)
	s.mux.HandleFunc("GET /charts/{name}", s.apiHandlers.HandleChart)
	s.mux.HandleFunc("GET /export/sales.xlsx", s.apiHandlers.HandleExport)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
