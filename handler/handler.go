// Package handler provides the HTTP boundary: request validation, status
// mapping, and JSON responses.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-backend/internal/usecase"
)

// ChatExecutor runs one conversational turn.
type ChatExecutor interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// ContactSubmitter validates and dispatches one contact submission.
type ContactSubmitter interface {
	Submit(ctx context.Context, in usecase.ContactInput) error
}

// HealthReporter reports credential presence as booleans only.
type HealthReporter interface {
	GeminiConfigured() bool
	GmailConfigured() bool
}

// Handler wires the chat and contact services to HTTP routes.
type Handler struct {
	chat    ChatExecutor
	contact ContactSubmitter
	health  HealthReporter
}

func NewHandler(chat ChatExecutor, contact ContactSubmitter, health HealthReporter) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat service must not be nil")
	}
	if contact == nil {
		return nil, errors.New("handler: contact service must not be nil")
	}
	if health == nil {
		return nil, errors.New("handler: health reporter must not be nil")
	}
	return &Handler{chat: chat, contact: contact, health: health}, nil
}

// RegisterRoutes mounts all routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/health", h.Health)
	r.Post("/chat", h.Chat)
	r.Post("/contact", h.Contact)
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Home reports process liveness.
func (h *Handler) Home(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"message": "Portfolio AI Assistant backend is running!",
	})
}

// Health reports whether required credentials are present. Booleans only,
// never the secret values.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"gemini_configured": h.health.GeminiConfigured(),
		"gmail_configured":  h.health.GmailConfigured(),
	})
}

// Chat executes one conversational turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := h.chat.Chat(r.Context(), usecase.ChatInput{
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, chatResponse{
		Response:       out.Answer,
		ConversationID: out.ConversationID,
	})
}

// Contact validates the submission and dispatches the contact email.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := h.contact.Submit(r.Context(), usecase.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Your message has been sent successfully!",
	})
}

// writeUsecaseError maps usecase error codes to HTTP statuses. Validation
// failures return their reason; server-side failures are logged in full and
// return a generic message.
func writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch uerr.Code {
	case usecase.ErrorInvalidInput:
		Error(w, http.StatusUnprocessableEntity, uerr.Reason)
	case usecase.ErrorRateLimited:
		slog.WarnContext(r.Context(), "upstream rate limited", "path", r.URL.Path, "error", err)
		Error(w, http.StatusTooManyRequests, "rate limited, try again shortly")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "code", string(uerr.Code), "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
