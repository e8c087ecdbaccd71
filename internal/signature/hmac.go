package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA256 tag of payload under secret.
// The tag covers the payload string exactly as transmitted.
func Sign(payload string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the tag and compares it in constant time. A missing,
// malformed or differently cased tag is simply not valid.
func Verify(payload, tag string, secret []byte) bool {
	if tag == "" {
		return false
	}
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(tag), []byte(expected))
}
