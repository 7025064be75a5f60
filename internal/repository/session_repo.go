package repository

import (
	"context"
	"errors"
	"fmt"

	"astro_consult/internal/model"

	"github.com/jackc/pgx/v5"
)

// SessionRepository stores issued bearer tokens
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByToken(ctx context.Context, token string) (*model.Session, error)
}

type sessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) error {
	sql := `INSERT INTO sessions (id, user_id, token, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, sql, s.ID.Hex(), s.UserID.Hex(), s.Token, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByToken returns the session for token, nil when absent. Expiry is not checked here.
func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	var (
		s          model.Session
		id, userID string
	)
	sql := `SELECT id, user_id, token, created_at, expires_at FROM sessions WHERE token = $1`
	err := r.db.QueryRow(ctx, sql, token).Scan(&id, &userID, &s.Token, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by token: %w", err)
	}
	if s.ID, err = parseStoredID(id); err != nil {
		return nil, err
	}
	if s.UserID, err = parseStoredID(userID); err != nil {
		return nil, err
	}
	return &s, nil
}
