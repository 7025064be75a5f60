package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session maps an opaque bearer token to a user
type Session struct {
	ID        bson.ObjectID `json:"id" bson:"_id"`
	UserID    bson.ObjectID `json:"user_id" bson:"user_id"`
	Token     string        `json:"-" bson:"token"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time     `json:"expires_at" bson:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given instant
func (s *Session) Expired(at time.Time) bool {
	return !at.Before(s.ExpiresAt)
}
