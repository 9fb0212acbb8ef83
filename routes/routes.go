package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"p9e.in/qac/handlers"
	"p9e.in/qac/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(log *zap.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handlers.Profile).Methods("GET")

	RegisterQACRoutes(api)

	return r
}

type crudHandlers struct {
	getAll func(http.ResponseWriter, *http.Request)
	create func(http.ResponseWriter, *http.Request)
	getOne func(http.ResponseWriter, *http.Request)
	update func(http.ResponseWriter, *http.Request)
	delete func(http.ResponseWriter, *http.Request)

	// nil means any authenticated user
	writeRoles  []string
	deleteRoles []string
}

func guard(roles []string, h func(http.ResponseWriter, *http.Request)) http.Handler {
	if roles == nil {
		return http.HandlerFunc(h)
	}
	return middleware.RequireRole(roles, http.HandlerFunc(h))
}

// registerCRUDRoutes registers standard CRUD routes for a resource keyed by idVar
func registerCRUDRoutes(router *mux.Router, path, idVar string, h crudHandlers) {
	item := path + "/{" + idVar + "}"

	router.Handle(path, http.HandlerFunc(h.getAll)).Methods("GET")
	router.Handle(path, guard(h.writeRoles, h.create)).Methods("POST")
	router.Handle(item, http.HandlerFunc(h.getOne)).Methods("GET")
	router.Handle(item, guard(h.writeRoles, h.update)).Methods("PUT")
	router.Handle(item, guard(h.deleteRoles, h.delete)).Methods("DELETE")
}
