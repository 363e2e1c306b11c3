package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gemchat-backend/internal/models"
)

const (
	defaultSessionTitle = "New Chat"
	titlePrefixLen      = 30
)

type sessionRepository interface {
	Create(ctx context.Context, s *models.ChatSession) error
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.ChatSession, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatSession, error)
	Touch(ctx context.Context, id uuid.UUID) error
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) error
}

type messageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	ListForSession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
	CountForSession(ctx context.Context, sessionID uuid.UUID) (int, error)
}

type ChatService struct {
	sessionRepo sessionRepository
	messageRepo messageRepository
	generator   TextGenerator
}

func NewChatService(sessionRepo sessionRepository, messageRepo messageRepository, generator TextGenerator) *ChatService {
	return &ChatService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		generator:   generator,
	}
}

// TurnResult is what one completed chat turn hands back to the caller.
type TurnResult struct {
	SessionID uuid.UUID
	Response  string
}

// HandleTurn runs one turn: resolve or create the session, persist the user
// message, call the generator, persist the reply, and reconcile the title.
//
// A nil sessionID starts a new session. A sessionID that does not resolve for
// this user fails before anything is persisted. If the generator fails, the
// user message stays persisted and the error propagates; there is no rollback.
func (s *ChatService) HandleTurn(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, messageText string) (*TurnResult, error) {
	var session *models.ChatSession

	if sessionID != nil {
		found, err := s.sessionRepo.GetForUser(ctx, *sessionID, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Message: "Session not found"}
			}
			return nil, err
		}
		session = found
	} else {
		session = &models.ChatSession{
			UserID: userID,
			Title:  titlePrefix(messageText) + "...",
		}
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			return nil, err
		}
	}

	userMsg := &models.Message{
		SessionID: session.ID,
		Role:      models.RoleUser,
		Content:   messageText,
	}
	if err := s.messageRepo.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	// Only the latest message goes upstream; the stored transcript is not
	// replayed into the prompt.
	reply, err := s.generator.Generate(ctx, messageText)
	if err != nil {
		return nil, err
	}

	assistantMsg := &models.Message{
		SessionID: session.ID,
		Role:      models.RoleAssistant,
		Content:   reply,
	}
	if err := s.messageRepo.Create(ctx, assistantMsg); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Touch(ctx, session.ID); err != nil {
		return nil, err
	}

	// A session with at most two messages was just started by this turn;
	// replace the provisional title with the plain prefix.
	count, err := s.messageRepo.CountForSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if count <= 2 {
		if err := s.sessionRepo.UpdateTitle(ctx, session.ID, titlePrefix(messageText)); err != nil {
			return nil, err
		}
	}

	return &TurnResult{SessionID: session.ID, Response: reply}, nil
}

// HistoryResult is the ordered transcript of one session plus its title.
type HistoryResult struct {
	Title   string
	History []models.HistoryEntry
}

func (s *ChatService) ListHistory(ctx context.Context, userID, sessionID uuid.UUID) (*HistoryResult, error) {
	session, err := s.sessionRepo.GetForUser(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, err
	}

	messages, err := s.messageRepo.ListForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]models.HistoryEntry, 0, len(messages))
	for _, m := range messages {
		history = append(history, models.HistoryEntry{
			Role:    wireRole(m.Role),
			Content: m.Content,
		})
	}

	return &HistoryResult{Title: session.Title, History: history}, nil
}

func (s *ChatService) CreateSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error) {
	session := &models.ChatSession{
		UserID: userID,
		Title:  defaultSessionTitle,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.SessionSummary, error) {
	sessions, err := s.sessionRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, models.SessionSummary{
			ID:        s.ID,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return summaries, nil
}

// wireRole maps a stored role to the label the history API promises: "user"
// stays "user", everything else is "ai".
func wireRole(role string) string {
	if role == models.RoleUser {
		return models.RoleUser
	}
	return "ai"
}

// titlePrefix takes the first 30 characters of the message, rune-safe.
func titlePrefix(s string) string {
	runes := []rune(s)
	if len(runes) <= titlePrefixLen {
		return s
	}
	return string(runes[:titlePrefixLen])
}
