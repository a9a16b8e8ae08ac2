package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Annotation pipeline
	mux.HandleFunc("/api/annotate", s.app.AnnotateHandler.AnnotateHandler) // POST - run auto-annotation

	// Page routes
	mux.HandleFunc("/api/pages", s.handlePagesRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/pages/", s.handlePageRoutes) // GET/DELETE /{id}, GET /{id}/annotations

	// Annotation routes
	mux.HandleFunc("/api/batches/", s.handleBatchRoutes)         // GET /{id}/annotations
	mux.HandleFunc("/api/annotations/", s.handleAnnotationRoute) // DELETE /{id}

	// System routes
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler) // GET - application status
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Catch-all for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handlePagesRoute routes /api/pages requests (list and create)
func (s *Server) handlePagesRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.PagesHandler.ListPagesHandler(w, r)
	case "POST":
		s.app.PagesHandler.CreatePageHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePageRoutes routes /api/pages/{id} requests
func (s *Server) handlePageRoutes(w http.ResponseWriter, r *http.Request) {
	// GET /api/pages/{id}/annotations
	if r.Method == "GET" && strings.HasSuffix(r.URL.Path, "/annotations") {
		s.app.PagesHandler.PageAnnotationsHandler(w, r)
		return
	}

	switch r.Method {
	case "GET":
		s.app.PagesHandler.GetPageHandler(w, r)
	case "DELETE":
		s.app.PagesHandler.DeletePageHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleBatchRoutes routes /api/batches/{id}/annotations requests
func (s *Server) handleBatchRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" && strings.HasSuffix(r.URL.Path, "/annotations") {
		s.app.PagesHandler.BatchAnnotationsHandler(w, r)
		return
	}
	http.Error(w, "Not found", http.StatusNotFound)
}

// handleAnnotationRoute routes /api/annotations/{id} requests
func (s *Server) handleAnnotationRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method == "DELETE" {
		s.app.PagesHandler.DeleteAnnotationHandler(w, r)
		return
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
