package card

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/tokencodec"
	"github.com/ampa-nova/carnet/internal/verifier"
)

var compactTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`)

// ExtractToken pulls a token out of scanned QR text. Accepted shapes: a
// verification URL with the token in the fragment or the query, a bare
// "token=..." pair, or the plain compact token itself.
func ExtractToken(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: QR content is empty", errs.ErrValidation)
	}

	var token string
	if u, err := url.Parse(text); err == nil && u.Scheme != "" && u.Host != "" {
		if t, ok := verifier.TokenFromFragment(text); ok {
			token = t
		} else {
			token = u.Query().Get("token")
		}
	}
	if token == "" && strings.HasPrefix(text, "token=") {
		if vals, err := url.ParseQuery(text); err == nil {
			token = vals.Get("token")
		}
	}
	if token == "" && compactTokenPattern.MatchString(text) {
		token = text
	}
	if token == "" || !compactTokenPattern.MatchString(token) {
		return "", fmt.Errorf("%w: no token found in QR content", errs.ErrValidation)
	}
	return token, nil
}

// Identifiers are the claims an operator needs for revocation lookups, decoded
// without signature verification. Issuer-side convenience only — nothing here
// is trusted.
type Identifiers struct {
	Jti   string `json:"jti"`
	Sub   string `json:"sub"`
	Iss   string `json:"iss"`
	Name  string `json:"name"`
	Exp   int64  `json:"exp"`
	Token string `json:"token"`
}

// ExtractIdentifiers decodes a token's payload without verifying it.
func ExtractIdentifiers(token string) (Identifiers, error) {
	dec, err := tokencodec.Decode(token)
	if err != nil {
		return Identifiers{}, err
	}
	return Identifiers{
		Jti:   dec.Payload.Jti,
		Sub:   dec.Payload.Sub,
		Iss:   dec.Payload.Iss,
		Name:  dec.Payload.Name,
		Exp:   dec.Payload.Exp,
		Token: token,
	}, nil
}

// ExtractIdentifiersFromQR combines ExtractToken and ExtractIdentifiers.
func ExtractIdentifiersFromQR(raw string) (Identifiers, error) {
	token, err := ExtractToken(raw)
	if err != nil {
		return Identifiers{}, err
	}
	return ExtractIdentifiers(token)
}
