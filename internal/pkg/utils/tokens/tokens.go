package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HMAC256Hex returns the hex HMAC-SHA256 of secret keyed by pepper.
// Only this digest is ever persisted for user secret keys.
func HMAC256Hex(pepper, secret string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseToken strips prefix from raw and reports whether anything is left.
func ParseToken(raw, prefix string) (string, bool) {
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	secret := strings.TrimPrefix(raw, prefix)
	return secret, secret != ""
}
