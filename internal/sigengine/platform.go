package sigengine

import (
	"crypto/ed25519"
	"fmt"

	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/model"
)

type platformEngine struct{}

// Platform returns the engine backed by the platform crypto implementation
// (crypto/ed25519). Restricted-crypto builds surface ErrUnsupported here,
// which the fallback dispatcher turns into a software retry.
func Platform() Engine {
	return platformEngine{}
}

func (platformEngine) Sign(message, privateKey []byte) ([]byte, error) {
	if len(privateKey) != model.KeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", errs.ErrInvalidKeyFormat, model.KeySize, len(privateKey))
	}
	key := ed25519.NewKeyFromSeed(privateKey)
	return ed25519.Sign(key, message), nil
}

func (platformEngine) Verify(signature, message, publicKey []byte) (bool, error) {
	// A signature or key of the wrong length cannot verify; that is an
	// invalid-signature result, not a processing error.
	if len(signature) != model.SignatureSize || len(publicKey) != model.KeySize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature), nil
}
