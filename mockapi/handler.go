// Package mockapi is an in-memory stand-in for the assistant chat service.
// It serves the same register, login and chat routes so the client can be
// run and tested without the real backend.
package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Handler serves the stub routes
type Handler struct {
	store   *Store
	respond Responder
}

// Option configures a Handler
type Option func(*Handler)

// WithResponder replaces the reply generator
func WithResponder(r Responder) Option {
	return func(h *Handler) {
		h.respond = r
	}
}

// New creates a handler backed by store
func New(store *Store, opts ...Option) *Handler {
	h := &Handler{
		store:   store,
		respond: EchoResponder,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the register, login and chat routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/users/register", h.handleRegister)
	r.Post("/users/login", h.handleLogin)
	r.Post("/chat", h.handleChat)
}

// NewRouter wires the stub routes with request logging and panic recovery
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	h.RegisterRoutes(r)
	return r
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type chatRequest struct {
	Message string `json:"message"`
	Topic   string `json:"topic"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.store.AddUser(creds.Username, creds.Password); err != nil {
		if errors.Is(err, ErrUserExists) {
			respondDetail(w, http.StatusConflict, "Username already exists")
			return
		}
		respondDetail(w, http.StatusInternalServerError, "could not register user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.store.Authenticate(creds.Username, creds.Password); err != nil {
		respondDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	username := r.Header.Get("X-Username")
	if username == "" || !h.store.HasUser(username) {
		respondDetail(w, http.StatusUnauthorized, "Unknown user")
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		respondDetail(w, http.StatusBadRequest, "message is required")
		return
	}
	if payload.Topic == "" {
		payload.Topic = "General"
	}

	reply := h.respond(username, payload.Topic, payload.Message)

	err := h.store.Append(username,
		Message{Sender: username, Content: payload.Message, Topic: payload.Topic},
		Message{Sender: "assistant", Content: reply, Topic: payload.Topic},
	)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Unknown user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return creds, false
	}
	if creds.Username == "" || creds.Password == "" {
		respondDetail(w, http.StatusBadRequest, "username and password are required")
		return creds, false
	}
	return creds, true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// respondDetail writes an error body shaped like the real service's
func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
