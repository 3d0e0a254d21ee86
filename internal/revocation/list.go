// Package revocation maintains the issuer's revocation list: which token ids
// (jti) and member ids (sub) are no longer valid.
//
// Lists are immutable values. Every mutating operation returns a new list; a
// no-op returns the same pointer, which callers use to detect "nothing
// changed" without comparing contents. Merging never drops entries from the
// base list, so a verifier loading a stale or adversarial snapshot cannot
// un-revoke anything.
package revocation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ampa-nova/carnet/internal/errs"
)

// EntryType selects which set an id belongs to.
type EntryType string

const (
	// TypeJti revokes a single card.
	TypeJti EntryType = "jti"
	// TypeSub revokes every card issued to a member.
	TypeSub EntryType = "sub"
)

// List is a snapshot of revocation state. Insertion order is preserved for
// display; membership is what matters.
type List struct {
	UpdatedAt  string   `json:"updated_at"`
	RevokedJti []string `json:"revoked_jti"`
	RevokedSub []string `json:"revoked_sub"`
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Empty returns a fresh list with no entries.
func Empty() *List {
	return &List{
		UpdatedAt:  nowStamp(),
		RevokedJti: []string{},
		RevokedSub: []string{},
	}
}

// Contains reports whether the token or its subject is revoked. Either match
// alone suffices: jti covers "revoke one card", sub covers "revoke all cards
// for a member".
func (l *List) Contains(jti, sub string) bool {
	return contains(l.RevokedJti, jti) || contains(l.RevokedSub, sub)
}

func contains(set []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

func normalizeEntry(id string, typ EntryType) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: revocation entry id is required", errs.ErrValidation)
	}
	if typ != TypeJti && typ != TypeSub {
		return "", fmt.Errorf("%w: revocation entry type must be %q or %q", errs.ErrValidation, TypeJti, TypeSub)
	}
	return id, nil
}

func (l *List) set(typ EntryType) []string {
	if typ == TypeSub {
		return l.RevokedSub
	}
	return l.RevokedJti
}

func (l *List) with(typ EntryType, set []string) *List {
	out := &List{UpdatedAt: nowStamp(), RevokedJti: l.RevokedJti, RevokedSub: l.RevokedSub}
	if typ == TypeSub {
		out.RevokedSub = set
	} else {
		out.RevokedJti = set
	}
	return out
}

// Add returns a list with id in the chosen set. If it was already present the
// original list comes back unchanged.
func Add(l *List, id string, typ EntryType) (*List, error) {
	id, err := normalizeEntry(id, typ)
	if err != nil {
		return nil, err
	}
	set := l.set(typ)
	if contains(set, id) {
		return l, nil
	}
	next := make([]string, 0, len(set)+1)
	next = append(next, set...)
	next = append(next, id)
	return l.with(typ, next), nil
}

// Remove returns a list without id in the chosen set; a miss is a no-op.
func Remove(l *List, id string, typ EntryType) (*List, error) {
	id, err := normalizeEntry(id, typ)
	if err != nil {
		return nil, err
	}
	set := l.set(typ)
	if !contains(set, id) {
		return l, nil
	}
	next := make([]string, 0, len(set)-1)
	for _, v := range set {
		if v != id {
			next = append(next, v)
		}
	}
	return l.with(typ, next), nil
}

// Merge unions incoming into base. Entries already in base always survive,
// whatever incoming holds. If incoming adds nothing, base is returned as-is
// with its timestamp untouched.
func Merge(base, incoming *List) (*List, error) {
	if base == nil || incoming == nil {
		return nil, fmt.Errorf("%w: revocation list must not be nil", errs.ErrValidation)
	}
	jti, jtiChanged := union(base.RevokedJti, incoming.RevokedJti)
	sub, subChanged := union(base.RevokedSub, incoming.RevokedSub)
	if !jtiChanged && !subChanged {
		return base, nil
	}
	return &List{UpdatedAt: nowStamp(), RevokedJti: jti, RevokedSub: sub}, nil
}

func union(base, incoming []string) ([]string, bool) {
	out := base
	changed := false
	for _, id := range incoming {
		if contains(out, id) {
			continue
		}
		if !changed {
			out = append(make([]string, 0, len(base)+1), base...)
			changed = true
		}
		out = append(out, id)
	}
	return out, changed
}

// ToJSON serializes a list as the published revoked.json document:
// pretty-printed, canonical field order.
func ToJSON(l *List) (string, error) {
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode revocation list: %w", err)
	}
	return string(b), nil
}

// FromJSON parses and structurally validates a revocation list. Malformed
// JSON, a non-object document, a missing/non-string updated_at, or
// missing/non-array revocation sets are all validation errors — never a
// silently empty list.
func FromJSON(text string) (*List, error) {
	var raw struct {
		UpdatedAt  *string   `json:"updated_at"`
		RevokedJti *[]string `json:"revoked_jti"`
		RevokedSub *[]string `json:"revoked_sub"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", errs.ErrValidation, err)
	}
	if raw.UpdatedAt == nil {
		return nil, fmt.Errorf("%w: revocation list must have an updated_at string", errs.ErrValidation)
	}
	if raw.RevokedJti == nil {
		return nil, fmt.Errorf("%w: revocation list must have a revoked_jti array", errs.ErrValidation)
	}
	if raw.RevokedSub == nil {
		return nil, fmt.Errorf("%w: revocation list must have a revoked_sub array", errs.ErrValidation)
	}
	return &List{UpdatedAt: *raw.UpdatedAt, RevokedJti: *raw.RevokedJti, RevokedSub: *raw.RevokedSub}, nil
}
