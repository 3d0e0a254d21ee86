// Package verifier validates membership card tokens: signature first, then
// claims. Revocation is a separate, caller-driven step (it needs I/O and has
// soft-fail semantics); see the revocation package.
package verifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/keycodec"
	"github.com/ampa-nova/carnet/internal/model"
	"github.com/ampa-nova/carnet/internal/sigengine"
	"github.com/ampa-nova/carnet/internal/tokencodec"
)

// Kind tags a verification failure for programmatic branching.
type Kind string

const (
	KindNoToken          Kind = "NO_TOKEN"
	KindMalformed        Kind = "MALFORMED"
	KindInvalidSignature Kind = "INVALID_SIGNATURE"
	KindWrongIssuer      Kind = "WRONG_ISSUER"
	KindExpired          Kind = "EXPIRED"
	KindRevoked          Kind = "REVOKED"
	KindConfigError      Kind = "CONFIG_ERROR"
)

// Failure describes a failed verification: a stable Kind for branching, a
// human-readable message, and optional details.
type Failure struct {
	Kind    Kind
	Message string
	Details string
}

// Result is the outcome of a verification pass. Either Success is true and
// Payload holds the verified claims, or Failure is set.
type Result struct {
	Success bool
	Payload model.TokenPayload
	Failure *Failure
}

func failure(kind Kind, message, details string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: message, Details: details}}
}

// DefaultClockSkew is the expiry tolerance absorbing clock drift between the
// issuing and verifying devices.
const DefaultClockSkew = 120 * time.Second

// Verifier checks tokens against one trusted public key and issuer identity.
type Verifier struct {
	publicKey []byte
	issuer    string
	skew      time.Duration
	engine    sigengine.Engine
	now       func() time.Time
}

// New builds a Verifier from a deployed SPKI public key. A blank or undecodable
// key is a configuration error, reported before any token is looked at.
func New(publicKeyPEM, issuer string, skew time.Duration, engine sigengine.Engine) (*Verifier, error) {
	if strings.TrimSpace(publicKeyPEM) == "" {
		return nil, fmt.Errorf("%w: public key not set", errs.ErrConfig)
	}
	pub, err := keycodec.DecodePublicKey(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", errs.ErrConfig, err)
	}
	if skew <= 0 {
		skew = DefaultClockSkew
	}
	if engine == nil {
		engine = sigengine.New()
	}
	return &Verifier{publicKey: pub, issuer: issuer, skew: skew, engine: engine, now: time.Now}, nil
}

// Verify runs the single-pass verification state machine. The signature is
// checked before any claim is trusted: an unsigned payload must never reach
// the issuer or expiry checks.
func (v *Verifier) Verify(token string) Result {
	if token == "" {
		return failure(KindNoToken, "No membership card detected", "token is empty")
	}

	dec, err := tokencodec.Decode(token)
	if err != nil {
		return failure(KindMalformed, "Invalid card format", err.Error())
	}
	if dec.Header.Alg != "EdDSA" {
		return failure(KindMalformed, "Invalid card format", fmt.Sprintf("unexpected alg %q", dec.Header.Alg))
	}

	ok, err := v.engine.Verify(dec.Signature, []byte(dec.SigningInput), v.publicKey)
	if err != nil {
		return failure(KindInvalidSignature, "Invalid membership card", err.Error())
	}
	if !ok {
		return failure(KindInvalidSignature, "Invalid membership card", "signature verification failed with public key")
	}

	if dec.Payload.Iss != v.issuer {
		return failure(KindWrongIssuer, "Unrecognized issuer",
			fmt.Sprintf("expected %q, got %q", v.issuer, dec.Payload.Iss))
	}

	// Expired iff exp <= now - skew: a token is accepted only while its expiry
	// lies strictly inside the skew window.
	if dec.Payload.Exp <= v.now().Unix()-int64(v.skew/time.Second) {
		return failure(KindExpired, "Membership expired",
			fmt.Sprintf("token expired on %s", dec.Payload.ExpiresAt().Format("02/01/2006")))
	}

	return Result{Success: true, Payload: dec.Payload}
}
