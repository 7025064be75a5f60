package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ChatStatusActive = "active"
	ChatStatusClosed = "closed"
)

// Chat is a consultation thread between a user and an astrologer.
// UserID stays nil until the first message is sent.
type Chat struct {
	ID           bson.ObjectID  `json:"id" bson:"_id"`
	UserID       *bson.ObjectID `json:"user_id" bson:"user_id"`
	AstrologerID bson.ObjectID  `json:"astrologer_id" bson:"astrologer_id"`
	Status       string         `json:"status" bson:"status"`
	MinFee       float64        `json:"min_fee" bson:"min_fee"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
}

type CreateChatRequest struct {
	AstrologerID string  `json:"astrologer_id" binding:"required,objectid"`
	MinFee       float64 `json:"min_fee" binding:"gte=0"`
}

type CreateChatResponse struct {
	ChatID string `json:"chat_id"`
}
