package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashResetToken generates a SHA256 hash of a password-reset token. A fast
// general-purpose hash is sufficient here: the 256 bits of entropy live in
// the token itself, not in a user-chosen secret.
func HashResetToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}
