package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/models"
	"gemchat-backend/internal/services"
)

type stubChatService struct {
	turnResult    *services.TurnResult
	turnErr       error
	gotSessionID  *uuid.UUID
	gotMessage    string
	historyResult *services.HistoryResult
	historyErr    error
	session       *models.ChatSession
	sessions      []models.SessionSummary
}

func (s *stubChatService) HandleTurn(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, messageText string) (*services.TurnResult, error) {
	s.gotSessionID = sessionID
	s.gotMessage = messageText
	if s.turnErr != nil {
		return nil, s.turnErr
	}
	return s.turnResult, nil
}

func (s *stubChatService) ListHistory(ctx context.Context, userID, sessionID uuid.UUID) (*services.HistoryResult, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.historyResult, nil
}

func (s *stubChatService) CreateSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error) {
	return s.session, nil
}

func (s *stubChatService) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.SessionSummary, error) {
	return s.sessions, nil
}

func withUser(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, uuid.New()))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestChat_Success(t *testing.T) {
	sessionID := uuid.New()
	svc := &stubChatService{turnResult: &services.TurnResult{SessionID: sessionID, Response: "hello back"}}
	h := NewChatHandler(svc)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`)))
	rr := httptest.NewRecorder()
	h.Chat(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != true {
		t.Errorf("expected success=true, got %v", body)
	}
	if body["response"] != "hello back" {
		t.Errorf("expected response field, got %v", body)
	}
	if body["session_id"] != sessionID.String() {
		t.Errorf("expected session_id %s, got %v", sessionID, body["session_id"])
	}
	if svc.gotSessionID != nil {
		t.Errorf("expected nil session id passed to the service, got %v", svc.gotSessionID)
	}
}

func TestChat_PassesExistingSessionID(t *testing.T) {
	sessionID := uuid.New()
	svc := &stubChatService{turnResult: &services.TurnResult{SessionID: sessionID, Response: "ok"}}
	h := NewChatHandler(svc)

	payload := `{"message":"hi","session_id":"` + sessionID.String() + `"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload)))
	rr := httptest.NewRecorder()
	h.Chat(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if svc.gotSessionID == nil || *svc.gotSessionID != sessionID {
		t.Errorf("expected session id %s passed through, got %v", sessionID, svc.gotSessionID)
	}
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message":"  "}`},
		{"missing message", `{}`},
		{"malformed json", `{`},
		{"bad session id", `{"message":"hi","session_id":"not-a-uuid"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubChatService{}
			h := NewChatHandler(svc)

			req := withUser(httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tc.body)))
			rr := httptest.NewRecorder()
			h.Chat(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			body := decodeBody(t, rr)
			if body["success"] != false || body["error"] == "" {
				t.Errorf("expected failure envelope, got %v", body)
			}
		})
	}
}

func TestChat_UpstreamFailureEnvelope(t *testing.T) {
	svc := &stubChatService{turnErr: &services.UpstreamError{Message: "AI service is unavailable"}}
	h := NewChatHandler(svc)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
	rr := httptest.NewRecorder()
	h.Chat(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != false || body["error"] != "AI service is unavailable" {
		t.Errorf("unexpected envelope %v", body)
	}
}

func TestChat_SessionNotFoundEnvelope(t *testing.T) {
	svc := &stubChatService{turnErr: &services.NotFoundError{Message: "Session not found"}}
	h := NewChatHandler(svc)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
	rr := httptest.NewRecorder()
	h.Chat(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["error"] != "Session not found" {
		t.Errorf("unexpected envelope %v", body)
	}
}

func historyRequest(sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/history/"+sessionID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("sessionID", sessionID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return withUser(req)
}

func TestHistory_Success(t *testing.T) {
	svc := &stubChatService{historyResult: &services.HistoryResult{
		Title: "Hello world",
		History: []models.HistoryEntry{
			{Role: "user", Content: "Hello"},
			{Role: "ai", Content: "Hi there"},
		},
	}}
	h := NewChatHandler(svc)

	rr := httptest.NewRecorder()
	h.History(rr, historyRequest(uuid.NewString()))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != true || body["title"] != "Hello world" {
		t.Errorf("unexpected envelope %v", body)
	}

	history, ok := body["history"].([]interface{})
	if !ok || len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %v", body["history"])
	}
	second := history[1].(map[string]interface{})
	if second["role"] != "ai" || second["content"] != "Hi there" {
		t.Errorf("expected ai wire role, got %v", second)
	}
}

func TestHistory_InvalidID(t *testing.T) {
	h := NewChatHandler(&stubChatService{})

	rr := httptest.NewRecorder()
	h.History(rr, historyRequest("42"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestNewChat_ReturnsSessionID(t *testing.T) {
	session := &models.ChatSession{ID: uuid.New(), Title: "New Chat"}
	h := NewChatHandler(&stubChatService{session: session})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/new_chat", nil))
	rr := httptest.NewRecorder()
	h.NewChat(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != true || body["session_id"] != session.ID.String() {
		t.Errorf("unexpected envelope %v", body)
	}
}

func TestSessions_ListsSummaries(t *testing.T) {
	h := NewChatHandler(&stubChatService{sessions: []models.SessionSummary{
		{ID: uuid.New(), Title: "New Chat"},
		{ID: uuid.New(), Title: "Older thread"},
	}})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	rr := httptest.NewRecorder()
	h.Sessions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	sessions, ok := body["sessions"].([]interface{})
	if !ok || len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %v", body["sessions"])
	}
	first := sessions[0].(map[string]interface{})
	if first["title"] != "New Chat" {
		t.Errorf("unexpected first session %v", first)
	}
}
