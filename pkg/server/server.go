package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/pacer/pkg/model"
	"github.com/m-mizutani/pacer/pkg/repository"
	"github.com/m-mizutani/pacer/pkg/usecase/coach"
	"github.com/m-mizutani/pacer/pkg/utils/logging"
)

// Server is the thin HTTP surface over the coach pipeline. All chat logic
// lives in the usecase layer; handlers only translate request shapes.
type Server struct {
	router    *chi.Mux
	coach     *coach.Coach
	store     repository.VectorStore
	staticDir string
	addr      string
}

func New(c *coach.Coach, store repository.VectorStore, staticDir string, port int) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLogger)

	s := &Server{
		router:    router,
		coach:     c,
		store:     store,
		staticDir: staticDir,
		addr:      ":" + strconv.Itoa(port),
	}

	router.Get("/", s.index)
	router.Post("/chat", s.chat)
	router.Post("/reset", s.reset)
	router.Get("/health", s.health)

	return s
}

func (s *Server) Run(ctx context.Context) error {
	logging.From(ctx).Info("http server starting", "addr", s.addr)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	return srv.ListenAndServe()
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	reply, sessionID, err := s.coach.HandleChat(r.Context(), model.SessionID(req.SessionID), req.Message)
	if err != nil {
		logging.From(r.Context()).Error("chat request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to process request"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		SessionID: string(sessionID),
	})
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	s.coach.HandleReset(model.SessionID(req.SessionID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	vectorStatus := "available"
	vectorCount := 0
	if stats, err := s.store.Stats(r.Context()); err != nil {
		vectorStatus = "unavailable"
	} else {
		vectorCount = stats.Count
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"sessions":  s.coach.Sessions().Len(),
		"vector_db": vectorStatus,
		"vectors":   vectorCount,
	})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if s.staticDir == "" {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.From(r.Context()).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
