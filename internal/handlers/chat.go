package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/models"
	"gemchat-backend/internal/services"
)

type chatService interface {
	HandleTurn(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, messageText string) (*services.TurnResult, error)
	ListHistory(ctx context.Context, userID, sessionID uuid.UUID) (*services.HistoryResult, error)
	CreateSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]models.SessionSummary, error)
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(chatService chatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeFailure(w, http.StatusBadRequest, "Message is required")
		return
	}

	var sessionID *uuid.UUID
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid session ID")
			return
		}
		sessionID = &id
	}

	userID := middleware.GetUserID(r.Context())

	result, err := h.chatService.HandleTurn(r.Context(), userID, sessionID, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"response":   result.Response,
		"session_id": result.SessionID,
	})
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	userID := middleware.GetUserID(r.Context())

	result, err := h.chatService.ListHistory(r.Context(), userID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"history": result.History,
		"title":   result.Title,
	})
}

func (h *ChatHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	session, err := h.chatService.CreateSession(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"session_id": session.ID,
	})
}

func (h *ChatHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessions, err := h.chatService.ListSessions(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}
