// Package gateway is the HTTP surface of the agent: a streaming chat
// endpoint, research shortcuts, and read-only introspection routes.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bbdragon2023/aiSDR/internal/config"
	"github.com/bbdragon2023/aiSDR/internal/events"
	"github.com/bbdragon2023/aiSDR/internal/sessions"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

// Server is the agent gateway HTTP server.
type Server struct {
	httpServer *http.Server
	bus        *events.Bus
	store      *sessions.Store
	registry   *skills.Registry
	host       string
	port       int
}

// NewServer wires routes around the session store and skill registry.
func NewServer(cfg *config.Config, store *sessions.Store, registry *skills.Registry, bus *events.Bus) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s := &Server{
		bus:      bus,
		store:    store,
		registry: registry,
		host:     cfg.Gateway.Host,
		port:     cfg.Gateway.Port,
	}

	r.Post("/api/chat", s.handleChat)
	r.Post("/api/chat/clear", s.handleChatClear)
	r.Get("/api/chat/history", s.handleChatHistory)
	r.Post("/api/research/company", s.handleResearchCompany)
	r.Post("/api/research/prospect", s.handleResearchProspect)
	r.Get("/api/skills", s.handleSkills)
	r.Get("/api/events", s.handleEvents)
	r.Get("/api/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.host, s.port),
		Handler: r,
	}

	return s
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"skills":   len(s.registry.Names()),
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	type skillJSON struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	all := s.registry.All()
	result := make([]skillJSON, len(all))
	for i, sk := range all {
		result[i] = skillJSON{Name: sk.Name, Description: sk.Description}
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": result, "count": len(result)})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		fmt.Sscanf(q, "%d", &limit)
	}

	history := s.bus.History(limit)

	type eventJSON struct {
		ID        string             `json:"id"`
		SessionID string             `json:"session_id,omitempty"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	result := make([]eventJSON, len(history))
	for i, e := range history {
		result[i] = eventJSON{
			ID:        e.ID,
			SessionID: e.SessionID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
