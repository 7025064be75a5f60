package service

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Error kinds. Every error a service returns on purpose wraps exactly one of them,
// anything else is an unexpected store failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
)

// Error is a client-facing failure with a short message and a kind
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrInvalidID          = &Error{Kind: ErrValidation, Msg: "invalid id format"}
	ErrStatusRequired     = &Error{Kind: ErrValidation, Msg: "status is required"}
	ErrInvalidRole        = &Error{Kind: ErrValidation, Msg: "role must be user or astrologer"}
	ErrInvalidCallType    = &Error{Kind: ErrValidation, Msg: "call_type must be audio or video"}
	ErrNegativeAmount     = &Error{Kind: ErrValidation, Msg: "amount must not be negative"}
	ErrPasswordTooLong    = &Error{Kind: ErrValidation, Msg: "password must be at most 72 bytes"}
	ErrEmailTaken         = &Error{Kind: ErrConflict, Msg: "email already registered"}
	ErrInvalidCredentials = &Error{Kind: ErrAuth, Msg: "invalid credentials"}
	ErrInvalidToken       = &Error{Kind: ErrAuth, Msg: "invalid or expired token"}
	ErrAstrologerNotFound = &Error{Kind: ErrNotFound, Msg: "astrologer not found"}
	ErrChatNotFound       = &Error{Kind: ErrNotFound, Msg: "chat not found"}
	ErrCallNotFound       = &Error{Kind: ErrNotFound, Msg: "call not found"}
)

// parseID converts a boundary id into a store id
func parseID(s string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return bson.NilObjectID, ErrInvalidID
	}
	return id, nil
}

func parseOptionalID(s *string) (*bson.ObjectID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := parseID(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
