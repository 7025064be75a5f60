package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	RoleUser       = "user"
	RoleAstrologer = "astrologer"
)

// User represents an account on the platform, either a client or an astrologer
type User struct {
	ID           bson.ObjectID `json:"id" bson:"_id"`
	Name         string        `json:"name" bson:"name"`
	Email        string        `json:"email" bson:"email"`
	PasswordHash string        `json:"-" bson:"password_hash"` // Do not expose password hash in JSON responses
	Role         string        `json:"role" bson:"role"`
	RatePerMin   *float64      `json:"rate_per_min,omitempty" bson:"rate_per_min"` // Astrologer specific
	Bio          *string       `json:"bio,omitempty" bson:"bio"`
	Skills       []string      `json:"skills,omitempty" bson:"skills,omitempty"`
	Rating       *float64      `json:"rating,omitempty" bson:"rating,omitempty"` // 0..5
	AvatarURL    *string       `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email" binding:"required"`
	Password   string   `json:"password" binding:"required"`
	Role       string   `json:"role" binding:"omitempty,oneof=user astrologer"`
	RatePerMin *float64 `json:"rate_per_min" binding:"omitempty,gte=0"`
	Bio        *string  `json:"bio"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is returned by both register and login
type SessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// AstrologerPublic is the directory view of an astrologer
type AstrologerPublic struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Bio        *string  `json:"bio"`
	RatePerMin *float64 `json:"rate_per_min"`
	Rating     *float64 `json:"rating"`
	AvatarURL  *string  `json:"avatar_url"`
}

// PublicProfile strips everything the directory must not expose
func (u *User) PublicProfile() AstrologerPublic {
	return AstrologerPublic{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Bio:        u.Bio,
		RatePerMin: u.RatePerMin,
		Rating:     u.Rating,
		AvatarURL:  u.AvatarURL,
	}
}
