// Command carnet-verify checks a membership card token against the deployed
// public key, issuer identity, and revocation list.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ampa-nova/carnet/internal/config"
	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/model"
	"github.com/ampa-nova/carnet/internal/revocation"
	"github.com/ampa-nova/carnet/internal/sigengine"
	"github.com/ampa-nova/carnet/internal/verifier"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// output is the machine-readable verification verdict.
type output struct {
	Status            string              `json:"status"` // "valid" or "invalid"
	Kind              verifier.Kind       `json:"kind,omitempty"`
	Message           string              `json:"message,omitempty"`
	Details           string              `json:"details,omitempty"`
	Payload           *model.TokenPayload `json:"payload,omitempty"`
	RevocationWarning bool                `json:"revocation_warning,omitempty"`
}

func emit(out output) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	if out.Status != "valid" {
		os.Exit(1)
	}
}

// main verifies one token and prints the verdict as JSON. Exit code 0 means
// the card is valid (possibly with a revocation warning), 1 invalid, 2 usage.
func main() {
	cfgPath := flag.String("config", "config.json", "verifier configuration file")
	revURL := flag.String("revocation-url", "", "override the configured revocation source")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("config", *cfgPath),
	)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: carnet-verify [-config config.json] <token | verification URL>")
		os.Exit(2)
	}

	// Accept either the bare token or the full URL from the QR code. The token
	// rides in the URL fragment, never the query.
	token := flag.Arg(0)
	if t, ok := verifier.TokenFromFragment(token); ok {
		token = t
	}

	cfg, err := config.LoadVerifier(*cfgPath)
	if err != nil {
		emit(output{Status: "invalid", Kind: verifier.KindConfigError, Message: "Verification system not configured", Details: err.Error()})
	}

	v, err := verifier.New(cfg.PublicKey, cfg.Issuer, cfg.ClockSkew(), sigengine.New())
	if err != nil {
		kind := verifier.KindConfigError
		if !errors.Is(err, errs.ErrConfig) {
			kind = verifier.KindMalformed
		}
		emit(output{Status: "invalid", Kind: kind, Message: "Verification system not configured", Details: err.Error()})
	}

	res := v.Verify(token)
	if !res.Success {
		logger.Info("verification failed", zap.String("kind", string(res.Failure.Kind)))
		emit(output{Status: "invalid", Kind: res.Failure.Kind, Message: res.Failure.Message, Details: res.Failure.Details})
	}

	out := output{Status: "valid", Payload: &res.Payload}

	// Revocation is a separate step with soft-fail semantics: an unreachable
	// list warns instead of rejecting the card.
	source := cfg.RevocationURL
	if *revURL != "" {
		source = *revURL
	}
	if (cfg.RevocationEnabled && source != "") || *revURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		check := revocation.NewChecker(nil).Check(ctx, res.Payload.Jti, res.Payload.Sub, source)
		if check.Revoked {
			logger.Info("card revoked", zap.String("jti", res.Payload.Jti))
			emit(output{Status: "invalid", Kind: verifier.KindRevoked, Message: "Membership card revoked", Details: "revoked by the issuer"})
		}
		if check.Warning {
			logger.Warn("unable to check revocation", zap.String("source", source))
			out.RevocationWarning = true
		}
	}

	logger.Info("card valid", zap.String("sub", out.Payload.Sub), zap.String("jti", out.Payload.Jti))
	emit(out)
}
