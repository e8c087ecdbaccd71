package signature

import "fmt"

// Scheme selects how payloads are bound to the shared secret. The two schemes
// are not interchangeable and one deployment uses exactly one.
type Scheme string

const (
	// SchemeHMAC is a base64 JSON payload with a detached hex HMAC-SHA256 tag.
	SchemeHMAC Scheme = "hmac"
	// SchemeToken is a compact HS256 signed token carrying the payload as claims.
	SchemeToken Scheme = "jwt"
)

// ParseScheme validates a configured scheme name. There is no default.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeHMAC, SchemeToken:
		return Scheme(s), nil
	case "":
		return "", fmt.Errorf("signing scheme not set: use %q or %q", SchemeHMAC, SchemeToken)
	}
	return "", fmt.Errorf("unknown signing scheme %q: use %q or %q", s, SchemeHMAC, SchemeToken)
}
