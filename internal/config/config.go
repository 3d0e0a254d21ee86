// Package config loads the per-deployment configuration files for the issuer
// and verifier tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ampa-nova/carnet/internal/errs"
)

// DefaultVerifyBaseURL is the production verification page; cards embed
// "<base>#token=<jwt>".
const DefaultVerifyBaseURL = "https://verify.ampanovaschoolalmeria.org/verify"

// Verifier is the verifier deployment configuration, conventionally shipped as
// config.json next to the verifier. PublicKey is the trusted SPKI PEM text.
type Verifier struct {
	PublicKey         string `json:"publicKey"`
	Issuer            string `json:"issuer"`
	ClockSkewSeconds  int    `json:"clockSkewSeconds"`
	RevocationEnabled bool   `json:"revocationEnabled"`
	RevocationURL     string `json:"revocationUrl"`
}

// ClockSkew returns the configured skew, falling back to the 120s default.
func (v Verifier) ClockSkew() time.Duration {
	if v.ClockSkewSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(v.ClockSkewSeconds) * time.Second
}

// LoadVerifier reads and parses a verifier config file.
func LoadVerifier(path string) (Verifier, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Verifier{}, fmt.Errorf("%w: read %s: %v", errs.ErrConfig, path, err)
	}
	var cfg Verifier
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Verifier{}, fmt.Errorf("%w: parse %s: %v", errs.ErrConfig, path, err)
	}
	if cfg.RevocationEnabled && cfg.RevocationURL == "" {
		return Verifier{}, fmt.Errorf("%w: revocation enabled but revocationUrl is empty", errs.ErrConfig)
	}
	return cfg, nil
}
