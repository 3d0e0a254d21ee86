package sigengine

import (
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/model"
)

type softwareEngine struct{}

// Software returns a pure-software Ed25519 engine implementing RFC 8032 on the
// edwards25519 arithmetic package. It depends on no platform crypto beyond
// SHA-512 and produces signatures byte-identical to the platform engine.
func Software() Engine {
	return softwareEngine{}
}

func (softwareEngine) Sign(message, privateKey []byte) ([]byte, error) {
	if len(privateKey) != model.KeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", errs.ErrInvalidKeyFormat, model.KeySize, len(privateKey))
	}

	h := sha512.Sum512(privateKey)
	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	prefix := h[32:]
	A := new(edwards25519.Point).ScalarBaseMult(s)

	// r = SHA-512(prefix || message) mod L
	mh := sha512.New()
	mh.Write(prefix)
	mh.Write(message)
	r, err := edwards25519.NewScalar().SetUniformBytes(mh.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	R := new(edwards25519.Point).ScalarBaseMult(r)

	// k = SHA-512(R || A || message) mod L
	kh := sha512.New()
	kh.Write(R.Bytes())
	kh.Write(A.Bytes())
	kh.Write(message)
	k, err := edwards25519.NewScalar().SetUniformBytes(kh.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	// S = r + k*s mod L
	S := edwards25519.NewScalar().MultiplyAdd(k, s, r)

	sig := make([]byte, 0, model.SignatureSize)
	sig = append(sig, R.Bytes()...)
	sig = append(sig, S.Bytes()...)
	return sig, nil
}

func (softwareEngine) Verify(signature, message, publicKey []byte) (bool, error) {
	if len(signature) != model.SignatureSize || len(publicKey) != model.KeySize {
		return false, nil
	}
	A, err := new(edwards25519.Point).SetBytes(publicKey)
	if err != nil {
		return false, nil
	}
	// Reject non-canonical S to match platform verification.
	S, err := edwards25519.NewScalar().SetCanonicalBytes(signature[32:])
	if err != nil {
		return false, nil
	}

	kh := sha512.New()
	kh.Write(signature[:32])
	kh.Write(publicKey)
	kh.Write(message)
	k, err := edwards25519.NewScalar().SetUniformBytes(kh.Sum(nil))
	if err != nil {
		return false, nil
	}

	// Check [S]B == R + [k]A, i.e. [S]B + [k](-A) == R.
	minusA := new(edwards25519.Point).Negate(A)
	R := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(k, minusA, S)
	return subtle.ConstantTimeCompare(R.Bytes(), signature[:32]) == 1, nil
}
