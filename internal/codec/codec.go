// Package codec turns request and result objects into transport payloads
// (base64 of canonical JSON) and back.
//
// Canonical JSON here means the bytes produced from the value as constructed:
// struct fields in declaration order, Object keys in insertion order, no
// alphabetizing, null fields kept, numbers written as supplied. A payload is
// signed and verified as these exact bytes and is never re-serialized in
// between.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/GTDGit/payrelay/internal/utils"
)

// Marshal returns the canonical JSON bytes of v.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

// Encode returns the transport payload for v: standard base64, padded, over
// the canonical JSON of v.
func Encode(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode reverses Encode into out, which must be a pointer.
func Decode(payload string, out any) error {
	raw, err := decodeBase64(payload)
	if err != nil {
		return err
	}
	return Unmarshal(raw, out)
}

// DecodeObject decodes a payload into an ordered Object.
func DecodeObject(payload string) (Object, error) {
	var obj Object
	if err := Decode(payload, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Unmarshal parses canonical JSON into out, reporting failures as ErrDecode.
func Unmarshal(raw []byte, out any) error {
	if !json.Valid(raw) {
		return fmt.Errorf("%w: payload is not valid JSON", utils.ErrDecode)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDecode, err)
	}
	return nil
}

func decodeBase64(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", utils.ErrDecode)
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", utils.ErrDecode, err)
	}
	return raw, nil
}
