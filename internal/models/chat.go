package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles as stored. The history endpoint maps RoleAssistant to the
// wire label "ai" for backwards compatibility with existing clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"-"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the payload sent to the chat turn endpoint. SessionID is
// optional; an absent or empty value means "start a new session".
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// HistoryEntry is one transcript line as the history endpoint returns it.
// Role here is a wire label ("user" or "ai"), not the stored role.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionSummary is one row of the session picker listing.
type SessionSummary struct {
	ID        uuid.UUID `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
