// Package model defines domain entities shared by the issuing and verifying sides.
package model

import "time"

// KeySize is the raw length of both halves of an Ed25519 keypair.
const KeySize = 32

// SignatureSize is the raw length of an Ed25519 signature.
const SignatureSize = 64

// KeyPair holds raw Ed25519 key material. PrivateKey is the 32-byte seed; the
// public key is deterministically derivable from it. The private key must stay
// in memory only — PEM export is an explicit operator action, never implicit
// persistence.
type KeyPair struct {
	PrivateKey []byte // 32 bytes
	PublicKey  []byte // 32 bytes
}

// Header is the fixed JOSE header of every issued token.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// TokenPayload is the signed claims set embedded in a membership card.
type TokenPayload struct {
	V    int    `json:"v"`    // schema version, currently 1
	Iss  string `json:"iss"`  // issuer identifier, e.g. "ampa:<org-slug>"
	Sub  string `json:"sub"`  // member identifier (operator-supplied, opaque)
	Name string `json:"name"` // member display name
	Iat  int64  `json:"iat"`  // issued-at, unix seconds
	Exp  int64  `json:"exp"`  // expiry, unix seconds
	Jti  string `json:"jti"`  // unique token id (UUID v4), enables single-card revocation
}

// ExpiresAt returns the expiry as a time value.
func (p TokenPayload) ExpiresAt() time.Time { return time.Unix(p.Exp, 0) }

// IssuedAt returns the issuance instant as a time value.
func (p TokenPayload) IssuedAt() time.Time { return time.Unix(p.Iat, 0) }
