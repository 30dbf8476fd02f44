package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken возвращает SHA-256 хэш refresh-токена в hex-представлении.
// В базе хранится только хэш, сам токен — нет.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
