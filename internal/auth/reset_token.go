package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const resetTokenBytes = 32

// NewResetToken возвращает сырой токен (уходит пользователю) и его
// SHA-256 (хранится в БД)
func NewResetToken() (raw string, hash string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
