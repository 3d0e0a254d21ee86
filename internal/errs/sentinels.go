// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Verification path sentinels. The verifier maps these onto its result kinds;
// CLI layers branch on them with errors.Is.
var (
	// ErrNoToken indicates no token was supplied at all.
	ErrNoToken = errors.New("no token")

	// ErrMalformed indicates the token does not parse as a 3-segment compact JWS.
	ErrMalformed = errors.New("malformed token")

	// ErrInvalidSignature indicates the signature does not verify under the configured public key.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrWrongIssuer indicates the iss claim does not match the expected issuer.
	ErrWrongIssuer = errors.New("wrong issuer")

	// ErrExpired indicates the token expiry lies outside the clock-skew window.
	ErrExpired = errors.New("token expired")

	// ErrRevoked indicates the token or its subject is on the revocation list.
	ErrRevoked = errors.New("revoked")

	// ErrConfig indicates missing or unusable deployment configuration (e.g. blank public key).
	ErrConfig = errors.New("configuration error")
)

// Key management path sentinels.
var (
	// ErrInvalidKeyFormat indicates PEM text that does not decode to a 32-byte Ed25519 key.
	ErrInvalidKeyFormat = errors.New("invalid key format")

	// ErrKeyRequired indicates a signing operation was attempted without a private key.
	ErrKeyRequired = errors.New("private key required")
)

// ErrValidation indicates rejected input (empty revocation id, unknown entry
// type, structurally invalid revocation JSON, bad CSV row).
var ErrValidation = errors.New("validation error")
