package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	byJTI map[string]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{byJTI: make(map[string]uuid.UUID)}
}

func (s *fakeStore) Save(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error {
	s.byJTI[jti] = userID
	return nil
}

func (s *fakeStore) Lookup(ctx context.Context, jti string) (uuid.UUID, error) {
	id, ok := s.byJTI[jti]
	if !ok {
		return uuid.Nil, errors.New("session not found")
	}
	return id, nil
}

func (s *fakeStore) Revoke(ctx context.Context, jti string) error {
	delete(s.byJTI, jti)
	return nil
}

func authedRequest(t *testing.T, auth *SessionAuth, userID uuid.UUID) *http.Request {
	t.Helper()
	token, err := auth.Issue(context.Background(), userID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	return req
}

func TestMiddleware_ValidSessionPasses(t *testing.T) {
	auth := NewSessionAuth("secret", newFakeStore(), false)
	userID := uuid.New()

	var gotUserID uuid.UUID
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest(t, auth, userID))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotUserID != userID {
		t.Errorf("expected user id %s in context, got %s", userID, gotUserID)
	}
}

func TestMiddleware_Rejections(t *testing.T) {
	store := newFakeStore()
	auth := NewSessionAuth("secret", store, false)
	userID := uuid.New()

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{
			"missing cookie",
			func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
			},
		},
		{
			"garbage token",
			func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
				return req
			},
		},
		{
			"revoked session",
			func(t *testing.T) *http.Request {
				req := authedRequest(t, auth, userID)
				for jti := range store.byJTI {
					store.Revoke(context.Background(), jti)
				}
				return req
			},
		},
		{
			"token signed with another secret",
			func(t *testing.T) *http.Request {
				other := NewSessionAuth("different-secret", store, false)
				return authedRequest(t, other, userID)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, tc.req(t))

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}

			var body map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["success"] != false {
				t.Errorf("expected success=false envelope, got %v", body)
			}
		})
	}
}

func TestRevoke_IsIdempotent(t *testing.T) {
	store := newFakeStore()
	auth := NewSessionAuth("secret", store, false)

	token, err := auth.Issue(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := auth.Revoke(context.Background(), token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if len(store.byJTI) != 0 {
		t.Errorf("expected store emptied, %d remain", len(store.byJTI))
	}
	if err := auth.Revoke(context.Background(), token); err != nil {
		t.Errorf("second Revoke failed: %v", err)
	}
	if err := auth.Revoke(context.Background(), "mangled"); err != nil {
		t.Errorf("Revoke of mangled token failed: %v", err)
	}
}
