// Package sigengine signs and verifies messages with Ed25519.
//
// Two interchangeable backends exist: a platform backend over crypto/ed25519
// and a pure-software backend built on filippo.io/edwards25519. The default
// engine tries the platform backend and falls back to software only when the
// backend reports it cannot perform Ed25519 at all — an invalid signature is a
// definitive result and never triggers the fallback.
package sigengine

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/model"
)

// Engine signs and verifies over raw 32-byte keys. Sign is deterministic:
// identical inputs always produce the identical 64-byte signature. Verify
// returns (false, nil) for any well-formed but invalid signature; errors are
// reserved for inputs the backend could not process at all.
type Engine interface {
	Sign(message, privateKey []byte) ([]byte, error)
	Verify(signature, message, publicKey []byte) (bool, error)
}

// ErrUnsupported is reported by a backend that cannot perform Ed25519 in the
// current execution context. It is the only error class the fallback
// dispatcher acts on.
var ErrUnsupported = errors.New("ed25519 not supported by backend")

// IsCapabilityError reports whether err means "this backend cannot do Ed25519"
// as opposed to "this input is bad". Kept narrow on purpose: anything else
// propagates to the caller unretried.
func IsCapabilityError(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// New returns the default engine: platform crypto with software fallback.
func New() Engine {
	return WithFallback(Platform(), Software())
}

// GenerateKeyPair creates a fresh Ed25519 keypair from the system CSPRNG.
func GenerateKeyPair() (model.KeyPair, error) {
	seed := make([]byte, model.KeySize)
	if _, err := rand.Read(seed); err != nil {
		return model.KeyPair{}, fmt.Errorf("generate keypair: %w", err)
	}
	pub, err := PublicKeyFromSeed(seed)
	if err != nil {
		return model.KeyPair{}, err
	}
	return model.KeyPair{PrivateKey: seed, PublicKey: pub}, nil
}

// PublicKeyFromSeed deterministically derives the public key from a 32-byte
// private key. Imported private keys go through here so the pair always
// matches.
func PublicKeyFromSeed(seed []byte) ([]byte, error) {
	if len(seed) != model.KeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", errs.ErrInvalidKeyFormat, model.KeySize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := make([]byte, model.KeySize)
	copy(pub, priv[model.KeySize:])
	return pub, nil
}
