package repository

import (
	"context"
	"errors"
	"fmt"

	"account_service/internal/model"

	"github.com/jackc/pgx/v5"
)

// SessionRepository stores the latest issued token per user
type SessionRepository interface {
	// Upsert creates the user's session row or replaces token and timestamps of the existing one.
	Upsert(ctx context.Context, session *model.Session) error
	FindByUserID(ctx context.Context, userID int) (*model.Session, error)
}

type sessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DBTX) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Upsert(ctx context.Context, s *model.Session) error {
	sql := `INSERT INTO sessions (user_id, token, created_at, expires_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (user_id) DO UPDATE
            SET token = EXCLUDED.token, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`
	if _, err := r.db.Exec(ctx, sql, s.UserID, s.Token, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByUserID(ctx context.Context, userID int) (*model.Session, error) {
	s := &model.Session{}
	sql := `SELECT user_id, token, created_at, expires_at FROM sessions WHERE user_id = $1`
	err := r.db.QueryRow(ctx, sql, userID).Scan(&s.UserID, &s.Token, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return s, nil
}
