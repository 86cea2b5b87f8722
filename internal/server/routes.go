package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// UI Page routes (HTML templates)
	mux.HandleFunc("/", s.handleRoot)

	// API routes - Search
	mux.HandleFunc("/search", s.app.SearchHandler.HandleSearch)
	mux.HandleFunc("/search-multiple", s.app.SearchHandler.HandleSearchMultiple)
	mux.HandleFunc("/search-deep", s.app.SearchHandler.HandleSearchDeep)

	// API routes - System
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/version", s.app.APIHandler.VersionHandler)

	return mux
}

// handleRoot serves the landing page at the root path only; everything else
// is an unmatched route and gets the JSON 404.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}

	s.app.PageHandler.ServePage("index.html", "home")(w, r)
}
