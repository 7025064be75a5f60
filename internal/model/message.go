package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// Message is a single entry in a chat, append-only
type Message struct {
	ID        bson.ObjectID `json:"id" bson:"_id"`
	ChatID    bson.ObjectID `json:"chat_id" bson:"chat_id"`
	SenderID  bson.ObjectID `json:"sender_id" bson:"sender_id"`
	Content   string        `json:"content" bson:"content"`
	MsgType   string        `json:"msg_type" bson:"msg_type"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

type SendMessageRequest struct {
	ChatID   string `json:"chat_id" binding:"required,objectid"`
	SenderID string `json:"sender_id" binding:"required,objectid"`
	Content  string `json:"content" binding:"required"`
}

// MessageView is the listing shape of a message
type MessageView struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) View() MessageView {
	return MessageView{
		ID:        m.ID.Hex(),
		SenderID:  m.SenderID.Hex(),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
