package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mfchat/pkg/interfaces"
)

// Registry is the transport-side view the API needs, kept as a local
// interface to avoid tight coupling to the websocket package
type Registry interface {
	Count() int
}

// Server is the read-only HTTP surface: health and stats
// ARCHITECTURAL DISCOVERY: No moderation endpoints here — all moderation
// flows over the socket protocol, and this layer never mutates anything
type Server struct {
	accounts interfaces.AccountStore
	messages interfaces.MessageStore
	registry Registry
	router   *http.ServeMux
}

// NewServer creates the API server and sets up its routes
func NewServer(accounts interfaces.AccountStore, messages interfaces.MessageStore, registry Registry) *Server {
	s := &Server{
		accounts: accounts,
		messages: messages,
		registry: registry,
		router:   http.NewServeMux(),
	}

	s.router.HandleFunc("/health", s.healthCheck)
	s.router.HandleFunc("/api/stats", s.stats)

	return s
}

// ServeHTTP implements http.Handler for integration with the standard mux
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HealthResponse reports process liveness and store readability
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Storage     string    `json:"storage"`
	Connections int       `json:"connections"`
}

// StatsResponse reports collection sizes and live connection count
type StatsResponse struct {
	Connections int `json:"connections"`
	Accounts    int `json:"accounts"`
	Messages    int `json:"messages"`
}

// healthCheck handles GET /health
// FUNCTIONAL DISCOVERY: Storage health is a read probe — if the stores can't
// be loaded the process is up but degraded, and the status says so
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now(),
		Storage:     "ok",
		Connections: s.registry.Count(),
	}

	if _, err := s.accounts.LoadAll(); err != nil {
		response.Status = "degraded"
		response.Storage = "unavailable"
	}

	s.sendJSON(w, http.StatusOK, response)
}

// stats handles GET /api/stats
func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := StatsResponse{
		Connections: s.registry.Count(),
	}

	if accounts, err := s.accounts.LoadAll(); err == nil {
		response.Accounts = len(accounts)
	}
	if messages, err := s.messages.LoadAll(); err == nil {
		response.Messages = len(messages)
	}

	s.sendJSON(w, http.StatusOK, response)
}

// sendJSON writes a JSON response with the given status
func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
