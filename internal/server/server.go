package server

import (
	"log/slog"
	"net/http"

	"somikra/internal/handlers"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(deps handlers.Deps, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(deps, logger),
		sseHandlers: handlers.NewSSEHandlers(deps, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// Sales report
	s.mux.HandleFunc("GET /api/report", s.apiHandlers.HandleReport)
	s.mux.HandleFunc("POST /api/upload", s.apiHandlers.HandleUpload)
	s.mux.HandleFunc("POST /api/reset", s.apiHandlers.HandleReset)
	s.mux.HandleFunc("GET /api/sample.csv", s.apiHandlers.HandleSampleCSV)

	// Marketing tools and the SEO fetch proxy
	s.mux.HandleFunc("GET /api/tools", s.apiHandlers.HandleTools)
	s.mux.HandleFunc("POST /api/tools/{tool}", s.apiHandlers.HandleTool)
	s.mux.HandleFunc("GET /fetch-url", s.apiHandlers.HandleFetchURL)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/report", s.sseHandlers.HandleReport)
	s.mux.HandleFunc("GET /sse/filters", s.sseHandlers.HandleFilters)
	s.mux.HandleFunc("POST /sse/upload", s.sseHandlers.HandleUpload)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
