// Package tokencodec serializes the 3-part compact token format:
// base64url(header) "." base64url(payload) "." base64url(signature), RFC 4648
// url-safe alphabet, no padding. It knows nothing about cryptographic
// validity; signatures are opaque bytes here.
package tokencodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/model"
)

// Decoded is the parsed form of a token. SigningInput is the exact substring
// the signature covers (header segment + "." + payload segment).
type Decoded struct {
	Header       model.Header
	Payload      model.TokenPayload
	Signature    []byte
	SigningInput string
}

// Encode builds the signing input from header and payload.
func Encode(header model.Header, payload model.TokenPayload) (string, error) {
	hb, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("encode header: %w", err)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(hb) + "." + base64.RawURLEncoding.EncodeToString(pb), nil
}

// Finalize appends the encoded signature to a signing input, producing the
// complete token.
func Finalize(signingInput string, signature []byte) string {
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)
}

// Decode splits and parses a token. Any structural defect — wrong segment
// count, empty segment, bad base64url, unparseable JSON — is ErrMalformed.
func Decode(token string) (*Decoded, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", errs.ErrMalformed, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty segment", errs.ErrMalformed)
		}
	}

	hb, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header segment: %v", errs.ErrMalformed, err)
	}
	var header model.Header
	if err := json.Unmarshal(hb, &header); err != nil {
		return nil, fmt.Errorf("%w: header JSON: %v", errs.ErrMalformed, err)
	}

	pb, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload segment: %v", errs.ErrMalformed, err)
	}
	var payload model.TokenPayload
	if err := json.Unmarshal(pb, &payload); err != nil {
		return nil, fmt.Errorf("%w: payload JSON: %v", errs.ErrMalformed, err)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature segment: %v", errs.ErrMalformed, err)
	}

	return &Decoded{
		Header:       header,
		Payload:      payload,
		Signature:    sig,
		SigningInput: parts[0] + "." + parts[1],
	}, nil
}
