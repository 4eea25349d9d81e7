package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/rs/cors"

	"github.com/prepflow/studybuddy/pkg/auth"
	"github.com/prepflow/studybuddy/pkg/chat"
	"github.com/prepflow/studybuddy/pkg/studyprofile"
)

type contextKey string

const userIDKey contextKey = "userID"

// Server exposes the chat and profile endpoints over HTTP. It is a thin
// shell: all behavior lives in the chat service and the applier.
type Server struct {
	logger   *log.Logger
	chat     *chat.Service
	applier  *studyprofile.Applier
	profiles studyprofile.DocumentStore
	verifier *auth.Verifier
}

func New(logger *log.Logger, chatService *chat.Service, applier *studyprofile.Applier, profiles studyprofile.DocumentStore, verifier *auth.Verifier) *Server {
	return &Server{
		logger:   logger,
		chat:     chatService,
		applier:  applier,
		profiles: profiles,
		verifier: verifier,
	}
}

func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/chat", s.handleChat)
		r.Get("/profile", s.handleGetProfile)
		r.Post("/profile/init", s.handleInitProfile)
		r.Post("/profile/complete-setup", s.handleCompleteSetup)
	})

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(router)
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := s.verifier.VerifyToken(token)
		if err != nil {
			s.logger.Debug("Token verification failed", "error", err)
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.chat.SendMessage(r.Context(), userID(r), req.Message)
	if err != nil {
		s.logger.Error("Chat turn failed", "user", userID(r), "error", err)
		s.writeError(w, http.StatusInternalServerError, "chat turn failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	doc, err := s.profiles.GetProfile(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, studyprofile.ErrProfileNotFound) {
			s.writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.logger.Error("Profile read failed", "user", userID(r), "error", err)
		s.writeError(w, http.StatusInternalServerError, "profile read failed")
		return
	}

	s.writeJSON(w, http.StatusOK, doc.Profile)
}

func (s *Server) handleInitProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.applier.InitProfile(r.Context(), userID(r)); err != nil {
		s.logger.Error("Profile init failed", "user", userID(r), "error", err)
		s.writeError(w, http.StatusInternalServerError, "profile init failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"initialized": true})
}

func (s *Server) handleCompleteSetup(w http.ResponseWriter, r *http.Request) {
	if err := s.applier.CompleteSetup(r.Context(), userID(r)); err != nil {
		s.logger.Error("Setup completion failed", "user", userID(r), "error", err)
		s.writeError(w, http.StatusInternalServerError, "setup completion failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"setupCompleted": true})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
