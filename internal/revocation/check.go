package revocation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// CheckResult is the outcome of a revocation lookup. Warning means the list
// could not be fetched and revocation state is unknown; the card still
// verifies, and the UI surfaces an "unable to check revocation" notice.
type CheckResult struct {
	Revoked bool
	Warning bool
}

// fetchTimeout bounds the revocation fetch; a slow source routes through the
// same soft-fail path as an unreachable one.
const fetchTimeout = 10 * time.Second

// maxListSize caps the fetched document; revoked.json for one association is
// a few kilobytes.
const maxListSize = 1 << 20

// Checker fetches revocation lists and answers revocation lookups.
//
// Fetch failures soft-fail deliberately: a verifier at the school gate must
// keep working when the network does not, so availability wins over strict
// revocation enforcement. Only a successfully fetched, structurally valid list
// can mark a card revoked.
type Checker struct {
	client *http.Client
}

// NewChecker builds a Checker. A nil client gets a default with a finite
// timeout.
func NewChecker(client *http.Client) *Checker {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Checker{client: client}
}

// Check loads the list from source and reports whether jti or sub is revoked.
// Any failure to obtain a valid list returns {Revoked: false, Warning: true};
// it never blocks verification and never returns an error.
func (c *Checker) Check(ctx context.Context, jti, sub, source string) CheckResult {
	list, err := c.Load(ctx, source)
	if err != nil {
		return CheckResult{Revoked: false, Warning: true}
	}
	return CheckResult{Revoked: list.Contains(jti, sub)}
}

// Load fetches and parses a revocation list from a remote URL or local file.
func (c *Checker) Load(ctx context.Context, source string) (*List, error) {
	text, err := c.read(ctx, source)
	if err != nil {
		return nil, err
	}
	return FromJSON(text)
}

func (c *Checker) read(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return "", err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", fmt.Errorf("revocation fetch: unexpected status %d", resp.StatusCode)
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxListSize))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
