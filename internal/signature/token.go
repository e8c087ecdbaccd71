package signature

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GTDGit/payrelay/internal/codec"
	"github.com/GTDGit/payrelay/internal/utils"
)

// Algorithm is the only token algorithm signed or accepted. The algorithm named
// in an inbound header is checked against it and never trusted on its own.
const Algorithm = "HS256"

// payloadClaims carries the payload object as the token's claim set. The
// registered claims (exp, nbf, iat, ...) are read from the same object so the
// parser can validate them.
type payloadClaims struct {
	jwt.RegisteredClaims
	raw json.RawMessage
}

func (c *payloadClaims) UnmarshalJSON(b []byte) error {
	c.raw = append(json.RawMessage(nil), b...)
	return json.Unmarshal(b, &c.RegisteredClaims)
}

// SignToken returns a compact HS256 token whose claim set is the canonical
// JSON of claims. claims must encode to a JSON object. The body segment is
// those exact bytes; jwt's own marshaling would re-escape '&', '<' and '>'.
func SignToken(claims any, secret []byte) (string, error) {
	raw, err := codec.Marshal(claims)
	if err != nil {
		return "", err
	}
	if !bytes.HasPrefix(raw, []byte("{")) {
		return "", fmt.Errorf("%w: token claims must be a JSON object", utils.ErrEncoding)
	}
	var c payloadClaims
	if err := c.UnmarshalJSON(raw); err != nil {
		return "", fmt.Errorf("%w: registered claims: %v", utils.ErrEncoding, err)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	header, err := json.Marshal(tok.Header)
	if err != nil {
		return "", fmt.Errorf("%w: header: %v", utils.ErrEncoding, err)
	}
	signing := tok.EncodeSegment(header) + "." + tok.EncodeSegment(raw)
	sig, err := tok.Method.Sign(signing, secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrEncoding, err)
	}
	return signing + "." + tok.EncodeSegment(sig), nil
}

// VerifyToken checks the token's algorithm, structure and signature, then
// parses its claim set into out. Any verification failure is ErrSignature;
// a verified claim set that does not fit out is ErrDecode.
func VerifyToken(token string, secret []byte, out any) error {
	var c payloadClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithStrictDecoding(),
	)
	_, err := parser.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != Algorithm {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrSignature, err)
	}
	return codec.Unmarshal(c.raw, out)
}
