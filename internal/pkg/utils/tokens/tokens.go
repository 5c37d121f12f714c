package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ParseToken strips prefix from raw. ok is false when the prefix is missing or
// nothing follows it.
func ParseToken(raw, prefix string) (secret string, ok bool) {
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	secret = strings.TrimPrefix(raw, prefix)
	return secret, secret != ""
}

// FromAuthorization extracts the token from an "Authorization: Bearer <token>" header.
func FromAuthorization(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HMAC256Hex is the store lookup key for a token secret, so the secret itself is never persisted.
func HMAC256Hex(pepper, secret string) string {
	m := hmac.New(sha256.New, []byte(pepper))
	m.Write([]byte(secret))
	return hex.EncodeToString(m.Sum(nil)) // 64 hex chars
}
