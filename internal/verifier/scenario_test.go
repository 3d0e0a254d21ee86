package verifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ampa-nova/carnet/internal/issuer"
	"github.com/ampa-nova/carnet/internal/keycodec"
	"github.com/ampa-nova/carnet/internal/revocation"
	"github.com/ampa-nova/carnet/internal/sigengine"
	"github.com/ampa-nova/carnet/internal/tokencodec"
)

// Full issuance-to-revocation walk: generate keys, issue a card, verify it,
// reject it under a different issuer identity, then revoke the member.
func TestIssueVerifyRevokeScenario(t *testing.T) {
	t.Parallel()

	kp, err := sigengine.GenerateKeyPair()
	require.NoError(t, err)
	pubPEM, err := keycodec.EncodePublicKey(kp.PublicKey)
	require.NoError(t, err)

	iss := issuer.New("ampa:test", sigengine.New())
	payload, err := iss.CreatePayload("Ana", "m-1", time.Now().AddDate(1, 0, 0))
	require.NoError(t, err)
	token, err := iss.Issue(payload, kp.PrivateKey)
	require.NoError(t, err)

	v, err := New(pubPEM, "ampa:test", DefaultClockSkew, sigengine.New())
	require.NoError(t, err)
	res := v.Verify(token)
	require.True(t, res.Success)
	require.Equal(t, "m-1", res.Payload.Sub)

	// Same token under a different expected issuer.
	other, err := New(pubPEM, "ampa:someone-else", DefaultClockSkew, sigengine.New())
	require.NoError(t, err)
	res = other.Verify(token)
	require.False(t, res.Success)
	require.Equal(t, KindWrongIssuer, res.Failure.Kind)

	// Revoke all of the member's cards and check the published list.
	list, err := revocation.Add(revocation.Empty(), "m-1", revocation.TypeSub)
	require.NoError(t, err)
	text, err := revocation.ToJSON(list)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "revoked.json")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	dec, err := tokencodec.Decode(token)
	require.NoError(t, err)
	check := revocation.NewChecker(nil).Check(context.Background(), dec.Payload.Jti, "m-1", path)
	require.True(t, check.Revoked)
	require.False(t, check.Warning)
}

// Keys exported to PEM by the issuing side must round-trip through the
// verifying side's import.
func TestKeyExchangeRoundTrip(t *testing.T) {
	t.Parallel()
	kp, err := sigengine.GenerateKeyPair()
	require.NoError(t, err)

	privPEM, err := keycodec.EncodePrivateKey(kp.PrivateKey)
	require.NoError(t, err)
	pubPEM, err := keycodec.EncodePublicKey(kp.PublicKey)
	require.NoError(t, err)

	priv, err := keycodec.DecodePrivateKey(privPEM)
	require.NoError(t, err)
	require.Equal(t, kp.PrivateKey, priv)

	// Import path derives the matching public key from the private key.
	derived, err := sigengine.PublicKeyFromSeed(priv)
	require.NoError(t, err)
	derivedPEM, err := keycodec.EncodePublicKey(derived)
	require.NoError(t, err)
	require.Equal(t, pubPEM, derivedPEM)
}
