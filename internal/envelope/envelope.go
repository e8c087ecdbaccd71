// Package envelope binds transport payloads to the shared secret under the
// one signing scheme a deployment is configured with.
package envelope

import (
	"errors"
	"fmt"

	"github.com/GTDGit/payrelay/internal/codec"
	"github.com/GTDGit/payrelay/internal/signature"
	"github.com/GTDGit/payrelay/internal/utils"
)

// Envelope is a transport payload and its detached tag. Under the token
// scheme Payload is the signed token and Signature stays empty.
type Envelope struct {
	Payload   string `json:"payload" form:"payload"`
	Signature string `json:"signature,omitempty" form:"signature"`
}

// Sealer seals outbound objects and opens inbound envelopes.
type Sealer struct {
	scheme signature.Scheme
	secret []byte
}

// NewSealer constructs a Sealer. The secret is copied and never changes.
func NewSealer(scheme signature.Scheme, secret []byte) (*Sealer, error) {
	if _, err := signature.ParseScheme(string(scheme)); err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, errors.New("secret key must not be empty")
	}
	return &Sealer{
		scheme: scheme,
		secret: append([]byte(nil), secret...),
	}, nil
}

// Scheme returns the configured scheme.
func (s *Sealer) Scheme() signature.Scheme {
	return s.scheme
}

// Seal encodes v and binds it to the secret.
func (s *Sealer) Seal(v any) (Envelope, error) {
	if s.scheme == signature.SchemeToken {
		tok, err := signature.SignToken(v, s.secret)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{Payload: tok}, nil
	}

	payload, err := codec.Encode(v)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Payload:   payload,
		Signature: signature.Sign(payload, s.secret),
	}, nil
}

// Open verifies env and only then decodes it into out. Nothing is parsed from
// a payload that fails verification. Errors are ErrSignature for a forged,
// corrupted or mixed-scheme envelope, and ErrDecode for a verified payload that
// is not valid base64 JSON of the expected shape.
func (s *Sealer) Open(env Envelope, out any) error {
	if env.Payload == "" {
		return fmt.Errorf("%w: empty payload", utils.ErrDecode)
	}

	if s.scheme == signature.SchemeToken {
		if env.Signature != "" {
			return fmt.Errorf("%w: detached tag sent to token scheme", utils.ErrSignature)
		}
		return signature.VerifyToken(env.Payload, s.secret, out)
	}

	if !signature.Verify(env.Payload, env.Signature, s.secret) {
		return fmt.Errorf("%w: tag mismatch", utils.ErrSignature)
	}
	return codec.Decode(env.Payload, out)
}
