package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	CallTypeAudio = "audio"
	CallTypeVideo = "video"

	// Declared call states. UpdateCallStatus does not enforce them.
	CallStatusInitiated = "initiated"
	CallStatusConnected = "connected"
	CallStatusEnded     = "ended"
)

// Call is a status-only record standing in for call signaling
type Call struct {
	ID        bson.ObjectID  `json:"id" bson:"_id"`
	ChatID    *bson.ObjectID `json:"chat_id,omitempty" bson:"chat_id"`
	CallerID  *bson.ObjectID `json:"caller_id,omitempty" bson:"caller_id"` // never populated
	CalleeID  bson.ObjectID  `json:"callee_id" bson:"callee_id"`
	CallType  string         `json:"call_type" bson:"call_type"`
	Status    string         `json:"status" bson:"status"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type InitCallRequest struct {
	CalleeID string  `json:"callee_id" binding:"required,objectid"`
	CallType string  `json:"call_type" binding:"omitempty,oneof=audio video"`
	ChatID   *string `json:"chat_id" binding:"omitempty,objectid"`
}

type InitCallResponse struct {
	CallID string `json:"call_id"`
}
