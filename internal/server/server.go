package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tgapp/internal/domain"
	"tgapp/internal/handler"
	"tgapp/internal/repository"
	"tgapp/internal/service"
	"tgapp/internal/telegram"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const initDataHeader = "X-Telegram-Init-Data"

// Server is the HTTP boundary: WebApp REST endpoints, the bot webhook, and
// health checks.
type Server struct {
	botToken   string
	validator  *telegram.Validator
	users      *service.UserService
	dispatcher *handler.Dispatcher
	health     repository.HealthChecker
	logger     *zap.Logger
}

// New creates the HTTP server facade.
func New(
	botToken string,
	validator *telegram.Validator,
	users *service.UserService,
	dispatcher *handler.Dispatcher,
	health repository.HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		botToken:   botToken,
		validator:  validator,
		users:      users,
		dispatcher: dispatcher,
		health:     health,
		logger:     logger,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/user/get_data", s.handleGetUserData)
		r.Post("/user/up_data", s.handleUpdateUserData)
		r.Post("/webhook", s.handleWebhook)
	})

	return r
}

// authenticate validates the init-data header and returns the caller's
// WebApp identity.
func (s *Server) authenticate(r *http.Request) (*domain.WebAppUser, error) {
	user, err := s.validator.Validate(r.Header.Get(initDataHeader), s.botToken)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == 0 {
		return nil, domain.ErrNoUser
	}
	return user, nil
}

func (s *Server) handleGetUserData(w http.ResponseWriter, r *http.Request) {
	if s.botToken == "" {
		writeError(w, http.StatusInternalServerError, "bot token not configured")
		return
	}

	webAppUser, err := s.authenticate(r)
	if err != nil {
		s.logger.Warn("authentication failed", zap.Error(err))
		writeError(w, http.StatusUnauthorized, "invalid authentication data")
		return
	}

	user, created, err := s.users.GetOrCreate(r.Context(), webAppUser)
	if err != nil {
		s.logger.Error("failed to get or create user",
			zap.Int64("user_id", webAppUser.ID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{"user": user})
}

func (s *Server) handleUpdateUserData(w http.ResponseWriter, r *http.Request) {
	if s.botToken == "" {
		writeError(w, http.StatusInternalServerError, "bot token not configured")
		return
	}

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil || len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "no data provided")
		return
	}

	webAppUser, err := s.authenticate(r)
	if err != nil {
		s.logger.Warn("authentication failed", zap.Error(err))
		writeError(w, http.StatusUnauthorized, "invalid authentication data")
		return
	}

	user, err := s.users.Update(r.Context(), webAppUser.ID, updates)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrInvalidPayload), errors.Is(err, domain.ErrBlobTooLarge):
		writeError(w, http.StatusBadRequest, "invalid update data")
	default:
		s.logger.Error("failed to update user",
			zap.Int64("user_id", webAppUser.ID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.botToken == "" {
		writeError(w, http.StatusInternalServerError, "bot token not configured")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook request")
		return
	}

	update, err := telegram.ParseUpdate(body)
	if err != nil {
		s.logger.Warn("rejected webhook body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid webhook request")
		return
	}

	msg := telegram.Normalize(update)
	if err := s.dispatcher.HandleUpdate(r.Context(), msg); err != nil {
		s.logger.Error("failed to process update",
			zap.Int64("update_id", update.UpdateID),
			zap.Int64("user_id", msg.UserID),
			zap.Int64("chat_id", msg.ChatID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to process update")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "unhealthy",
			"redis":  "disconnected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"redis":  "connected",
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Telegram App Backend",
		"status":  "running",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends a generic client-facing error body; details stay in logs.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
