package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"newsharvest/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// Server exposes the read-only article API: a list endpoint with an optional
// source-substring filter and a detail endpoint. It only queries the store;
// ingestion happens elsewhere.
type Server struct {
	store  store.Store
	logger *zap.Logger
	router *mux.Router
	server *http.Server
}

func NewServer(st store.Store, logger *zap.Logger) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/articles", s.handleList).Methods("GET")
	s.router.HandleFunc("/articles/{id}", s.handleGet).Methods("GET")
}

// Start launches the HTTP server
func (s *Server) Start(port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("API server listening", zap.String("addr", port))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleList returns recent articles; ?source=<substr> keeps only URLs
// containing the substring. Heavy body fields are omitted from listings.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")

	articles, err := s.store.List(r.Context(), source, defaultListLimit)
	if err != nil {
		s.logger.Error("Failed to list articles", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, articles)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	article, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		s.logger.Error("Failed to fetch article", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, article)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
