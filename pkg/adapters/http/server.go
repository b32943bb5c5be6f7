// Package http exposes a conversation session over a JSON/HTTP API.
//
// The adapter is a thin transport layer: it owns no conversation state
// beyond an SSE fan-out of engine notifications, and maps the facade's
// sentinel errors to status codes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dodgeblaster/orange-agent/internal/logging"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
)

// Conversation is the slice of the session facade the HTTP adapter needs.
type Conversation interface {
	Run(ctx context.Context, input string) (string, error)
	ResolveConfirmation(ctx context.Context, toolUseID string, approved bool) error
	Messages() []domain.Message
	Pending() (domain.ToolCall, bool)
	Notifications() *hub.Hub
}

// RunRequest is the body for POST /run.
type RunRequest struct {
	Input string `json:"input"`
}

// RunResponse carries the assistant reply plus the gate state after the turn.
type RunResponse struct {
	Reply   string           `json:"reply"`
	Pending *domain.ToolCall `json:"pending,omitempty"`
}

// ConfirmRequest is the body for POST /confirmations/{toolUseID}.
type ConfirmRequest struct {
	Approved bool `json:"approved"`
}

// Server routes HTTP requests onto a single conversation session.
type Server struct {
	session Conversation
	streams *StreamManager
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler wires the session into a chi router and bridges its
// notifications into the SSE stream.
func NewHandler(session Conversation, opts ...Option) http.Handler {
	s := &Server{
		session: session,
		streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, t := range []domain.EventType{
		domain.EventTurnStarted,
		domain.EventUserMessageAppended,
		domain.EventAssistantMessageAppended,
		domain.EventToolCallStarted,
		domain.EventToolConfirmationRequest,
		domain.EventToolCallFinished,
		domain.EventToolCallFailed,
		domain.EventEngineError,
	} {
		session.Notifications().Subscribe(t, s.broadcastEvent)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Post("/run", s.run)
	r.Post("/confirmations/{toolUseID}", s.confirm)
	r.Get("/messages", s.messages)
	r.Get("/events", s.events)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// run handles POST /run.
func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("run: invalid request body", "err", err)
		return
	}
	if body.Input == "" {
		http.Error(w, "Field 'input' is required", http.StatusBadRequest)
		return
	}

	reply, err := s.session.Run(r.Context(), body.Input)
	if err != nil {
		if errors.Is(err, domain.ErrSessionClosed) {
			http.Error(w, "Session is closed", http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("Run error: %v", err), http.StatusInternalServerError)
		s.logger.Error("run failed", "err", err)
		return
	}

	resp := RunResponse{Reply: reply}
	if call, ok := s.session.Pending(); ok {
		resp.Pending = &call
	}
	writeJSON(w, http.StatusOK, resp)
}

// confirm handles POST /confirmations/{toolUseID}.
func (s *Server) confirm(w http.ResponseWriter, r *http.Request) {
	toolUseID := chi.URLParam(r, "toolUseID")

	var body ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("confirm: invalid request body", "err", err)
		return
	}

	err := s.session.ResolveConfirmation(r.Context(), toolUseID, body.Approved)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoPendingConfirmation):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, domain.ErrSessionClosed):
			http.Error(w, "Session is closed", http.StatusConflict)
		default:
			http.Error(w, fmt.Sprintf("Confirmation error: %v", err), http.StatusInternalServerError)
			s.logger.Error("confirm failed", "tool_use_id", toolUseID, "err", err)
		}
		return
	}

	resp := RunResponse{}
	if messages := s.session.Messages(); len(messages) > 0 {
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Kind == domain.KindAssistant {
				resp.Reply = messages[i].Content
				break
			}
		}
	}
	if call, ok := s.session.Pending(); ok {
		resp.Pending = &call
	}
	writeJSON(w, http.StatusOK, resp)
}

// messages handles GET /messages.
func (s *Server) messages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Messages())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

// broadcastEvent pushes engine notifications to all connected SSE clients.
func (s *Server) broadcastEvent(ctx context.Context, evt domain.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	s.streams.Broadcast(string(payload))
	return nil
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Slow client: drop rather than block the engine.
			sm.logger.Warn("sse client buffer full, dropping event")
		}
	}
}

// events handles GET /events (SSE stream of engine notifications).
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
