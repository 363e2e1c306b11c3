package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gemchat-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, title)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	s.ID = uuid.New()

	return r.pool.QueryRow(ctx, query, s.ID, s.UserID, s.Title).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetForUser looks up a session scoped to its owner. A session that exists
// but belongs to another user is indistinguishable from one that does not
// exist: both return pgx.ErrNoRows.
func (r *SessionRepo) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.ChatSession, error) {
	s := &models.ChatSession{}
	query := `SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions WHERE id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatSession, error) {
	query := `SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.ChatSession, 0)
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) Touch(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE chat_sessions SET updated_at = NOW() WHERE id = $1", id)
	return err
}

func (r *SessionRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	_, err := r.pool.Exec(ctx, "UPDATE chat_sessions SET title = $1, updated_at = NOW() WHERE id = $2", title, id)
	return err
}
