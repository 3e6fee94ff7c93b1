// Package server exposes the admin HTTP API: content CRUD, page text,
// login/logout, the activity feed and the health endpoint. Handlers
// translate between the JSON envelope convention and the service
// packages; no business logic lives here.
package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"groundcms/internal/activity"
	"groundcms/internal/auth"
	"groundcms/internal/blob"
	"groundcms/internal/content"
	"groundcms/internal/logging"
	"groundcms/internal/store"
)

// Deps bundles everything the HTTP layer serves.
type Deps struct {
	Auth     *auth.Authenticator
	Machines *content.Repository[content.Machine]
	Services *content.Repository[content.Service]
	Projects *content.Repository[content.Project]
	Pages    *content.Pages
	Activity *activity.Log
	Blobs    blob.Store
	Store    store.Store
	Logger   logging.Logger

	// UploadsDir, when non-empty, is served statically under /uploads/
	// (filesystem blob backend in development).
	UploadsDir string
}

// Server is the admin API HTTP handler.
type Server struct {
	deps   Deps
	router *mux.Router
}

// New creates a Server with all routes registered.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	s := &Server{deps: deps}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.NotFoundHandler = r.NotFoundHandler
	admin.MethodNotAllowedHandler = r.MethodNotAllowedHandler

	// The login page is the only admin route outside the session gate.
	admin.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	// No NotFoundHandler here: an unmatched path must fall through so a
	// method mismatch recorded by the login route still yields a 405
	// from the admin router.
	protected := admin.NewRoute().Subrouter()
	protected.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	protected.Use(s.requireSession)

	protected.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	protected.HandleFunc("/activity", s.handleActivityGet).Methods(http.MethodGet)
	protected.HandleFunc("/activity", s.handleActivityPost).Methods(http.MethodPost)
	protected.HandleFunc("/content", s.handlePagesGet).Methods(http.MethodGet)
	protected.HandleFunc("/content", s.handlePagesPut).Methods(http.MethodPut)

	machines := &resource[content.Machine]{
		srv:         s,
		repo:        s.deps.Machines,
		parseCreate: parseMachineCreate,
		applyUpdate: applyMachineUpdate,
	}
	services := &resource[content.Service]{
		srv:         s,
		repo:        s.deps.Services,
		parseCreate: parseServiceCreate,
		applyUpdate: applyServiceUpdate,
	}
	projects := &resource[content.Project]{
		srv:         s,
		repo:        s.deps.Projects,
		parseCreate: parseProjectCreate,
		applyUpdate: applyProjectUpdate,
	}
	crud := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}
	protected.HandleFunc("/dynamic/machines", machines.handle).Methods(crud...)
	protected.HandleFunc("/dynamic/services", services.handle).Methods(crud...)
	protected.HandleFunc("/dynamic/projects", projects.handle).Methods(crud...)

	if s.deps.UploadsDir != "" {
		r.PathPrefix(blob.URLPrefix).Handler(
			http.StripPrefix(blob.URLPrefix, http.FileServer(http.Dir(s.deps.UploadsDir)))).Methods(http.MethodGet)
	}

	s.router = r
}
