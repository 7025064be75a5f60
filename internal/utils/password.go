package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// legacyHashLen is the length of the unsalted hex SHA-256 digests written by the previous backend
const legacyHashLen = sha256.Size * 2

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash compares a password against a bcrypt hash or a legacy SHA-256 hex digest
func CheckPasswordHash(password, hash string) bool {
	if IsLegacyHash(hash) {
		sum := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(hash)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsLegacyHash reports whether hash looks like an unsalted SHA-256 hex digest
func IsLegacyHash(hash string) bool {
	if len(hash) != legacyHashLen {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
