// Package issuer composes membership card payloads and signs them into
// compact tokens.
package issuer

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/model"
	"github.com/ampa-nova/carnet/internal/sigengine"
	"github.com/ampa-nova/carnet/internal/tokencodec"
)

// DefaultIssuer is the association's issuer identifier.
const DefaultIssuer = "ampa:ampa-nova-school-almeria"

// SchemaVersion is the current token payload schema version.
const SchemaVersion = 1

var header = model.Header{Alg: "EdDSA", Typ: "JWT"}

// Issuer builds and signs member tokens for a single issuer identity.
type Issuer struct {
	iss    string
	engine sigengine.Engine
	now    func() time.Time
}

// New constructs an Issuer. An empty iss falls back to DefaultIssuer.
func New(iss string, engine sigengine.Engine) *Issuer {
	if iss == "" {
		iss = DefaultIssuer
	}
	if engine == nil {
		engine = sigengine.New()
	}
	return &Issuer{iss: iss, engine: engine, now: time.Now}
}

// Issuer returns the configured issuer identifier.
func (i *Issuer) Issuer() string { return i.iss }

// CreatePayload builds a claims set for a member. Every call generates a fresh
// jti, so two payloads from identical inputs are distinct tokens. The expiry
// is taken as given; callers enforce "must lie in the future" at input time.
func (i *Issuer) CreatePayload(fullName, memberID string, expiry time.Time) (model.TokenPayload, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return model.TokenPayload{}, fmt.Errorf("generate jti: %w", err)
	}
	return model.TokenPayload{
		V:    SchemaVersion,
		Iss:  i.iss,
		Sub:  memberID,
		Name: fullName,
		Iat:  i.now().Unix(),
		Exp:  expiry.Unix(),
		Jti:  jti.String(),
	}, nil
}

// Issue signs a payload into a complete token. The key check runs before any
// cryptographic work so a missing key surfaces as ErrKeyRequired, not as an
// engine failure.
func (i *Issuer) Issue(payload model.TokenPayload, privateKey []byte) (string, error) {
	if len(privateKey) == 0 {
		return "", errs.ErrKeyRequired
	}
	signingInput, err := tokencodec.Encode(header, payload)
	if err != nil {
		return "", err
	}
	sig, err := i.engine.Sign([]byte(signingInput), privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokencodec.Finalize(signingInput, sig), nil
}
