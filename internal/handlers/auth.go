package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/models"
	"gemchat-backend/internal/services"
)

type authService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	authService authService
	sessions    *middleware.SessionAuth
}

func NewAuthHandler(authService authService, sessions *middleware.SessionAuth) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, token, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.sessions.SetCookie(w, token)
	writeSuccess(w, http.StatusCreated, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, token, err := h.authService.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.sessions.SetCookie(w, token)
	writeSuccess(w, http.StatusOK, nil)
}

// Logout always reports success; a missing or bogus cookie still gets the
// cookie cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		token = cookie.Value
	}

	h.authService.Logout(r.Context(), token)
	h.sessions.ClearCookie(w)
	writeSuccess(w, http.StatusOK, nil)
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess wraps the payload in the {"success": true, ...} envelope.
func writeSuccess(w http.ResponseWriter, status int, payload map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeFailure(w, http.StatusBadRequest, e.Message)
	case *services.UnauthorizedError:
		writeFailure(w, http.StatusUnauthorized, e.Message)
	case *services.NotFoundError:
		writeFailure(w, http.StatusNotFound, e.Message)
	case *services.ConflictError:
		writeFailure(w, http.StatusConflict, e.Message)
	case *services.UpstreamError:
		log.Printf("upstream error on %s %s: %v", r.Method, r.URL.Path, e.Unwrap())
		writeFailure(w, http.StatusBadGateway, e.Message)
	default:
		log.Printf("internal error on %s %s: %v", r.Method, r.URL.Path, err)
		writeFailure(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
