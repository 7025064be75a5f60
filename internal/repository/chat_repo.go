package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astro_consult/internal/model"

	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ChatRepository defines operations for chat threads
type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Chat, error)
	// AssignUser sets user_id only while it is still unset and reports whether it did
	AssignUser(ctx context.Context, chatID, userID bson.ObjectID, at time.Time) (bool, error)
}

type chatRepository struct {
	db DBTX
}

func NewChatRepository(db DBTX) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, c *model.Chat) error {
	sql := `INSERT INTO chats (id, user_id, astrologer_id, status, min_fee, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, sql, c.ID.Hex(), optionalHex(c.UserID), c.AstrologerID.Hex(), c.Status, c.MinFee, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (r *chatRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Chat, error) {
	var (
		c               model.Chat
		chatID, astroID string
		userID          *string
	)
	sql := `SELECT id, user_id, astrologer_id, status, min_fee, created_at, updated_at FROM chats WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id.Hex()).Scan(&chatID, &userID, &astroID, &c.Status, &c.MinFee, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find chat by ID: %w", err)
	}
	if c.ID, err = parseStoredID(chatID); err != nil {
		return nil, err
	}
	if c.AstrologerID, err = parseStoredID(astroID); err != nil {
		return nil, err
	}
	if c.UserID, err = parseStoredOptionalID(userID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *chatRepository) AssignUser(ctx context.Context, chatID, userID bson.ObjectID, at time.Time) (bool, error) {
	sql := `UPDATE chats SET user_id = $1, updated_at = $2 WHERE id = $3 AND user_id IS NULL`
	cmdTag, err := r.db.Exec(ctx, sql, userID.Hex(), at, chatID.Hex())
	if err != nil {
		return false, fmt.Errorf("failed to assign chat user: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
