package store

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Document is the wire shape of one object. Keys is null on a full
// response and lists the populated keys (possibly none) on a selective
// one.
type Document struct {
	Class  string         `json:"class"`
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
	Keys   []string       `json:"keys"`
}

type Server struct {
	logger *zap.Logger
	store  *Store
}

func NewServer(store *Store, logger *zap.Logger) *Server {
	return &Server{
		logger: logger,
		store:  store,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route("/api/v1/classes/{class}", func(r chi.Router) {
		r.Get("/", s.listObjects)
		r.Post("/", s.createObject)
		r.Get("/{id}", s.getObject)
		r.Put("/{id}", s.putObject)
	})
	r.Get("/api/v1/stats", s.stats)

	return r
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	s.logger.Info("document store listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	id := chi.URLParam(r, "id")

	var keys []string
	if raw := r.URL.Query().Get("keys"); raw != "" {
		keys = strings.Split(raw, ",")
	}

	fields, populated, ok := s.store.Get(class, id, keys)
	if !ok {
		http.Error(w, "object not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Document{
		Class:  class,
		ID:     id,
		Fields: fields,
		Keys:   populated,
	})
}

func (s *Server) putObject(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	id := chi.URLParam(r, "id")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.store.Put(class, id, fields)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createObject(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := s.store.Create(class, fields)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	ids := s.store.List(class)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ids":   ids,
		"count": len(ids),
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.store.Counts())
}
