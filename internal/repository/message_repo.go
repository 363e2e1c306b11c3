package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gemchat-backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (id, session_id, role, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	m.ID = uuid.New()

	return r.pool.QueryRow(ctx, query, m.ID, m.SessionID, m.Role, m.Content).Scan(&m.CreatedAt)
}

func (r *MessageRepo) ListForSession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	query := `SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) CountForSession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM messages WHERE session_id = $1", sessionID).Scan(&count)
	return count, err
}
