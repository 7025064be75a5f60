package repository

import (
	"context"
	"fmt"

	"astro_consult/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MessageRepository defines operations for chat messages
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// FindByChat returns every message of a chat, oldest first
	FindByChat(ctx context.Context, chatID bson.ObjectID) ([]model.Message, error)
}

type messageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	sql := `INSERT INTO messages (id, chat_id, sender_id, content, msg_type, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, sql, m.ID.Hex(), m.ChatID.Hex(), m.SenderID.Hex(), m.Content, m.MsgType, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) FindByChat(ctx context.Context, chatID bson.ObjectID) ([]model.Message, error) {
	sql := `SELECT id, chat_id, sender_id, content, msg_type, created_at
            FROM messages WHERE chat_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, sql, chatID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query messages by chat: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var (
			m                model.Message
			id, chat, sender string
		)
		if err := rows.Scan(&id, &chat, &sender, &m.Content, &m.MsgType, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if m.ID, err = parseStoredID(id); err != nil {
			return nil, err
		}
		if m.ChatID, err = parseStoredID(chat); err != nil {
			return nil, err
		}
		if m.SenderID, err = parseStoredID(sender); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}
