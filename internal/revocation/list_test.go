package revocation

import (
	"errors"
	"testing"

	"github.com/ampa-nova/carnet/internal/errs"
)

func mustAdd(t *testing.T, l *List, id string, typ EntryType) *List {
	t.Helper()
	next, err := Add(l, id, typ)
	if err != nil {
		t.Fatalf("Add(%q, %s): %v", id, typ, err)
	}
	return next
}

func TestEmpty(t *testing.T) {
	t.Parallel()
	l := Empty()
	if l.UpdatedAt == "" {
		t.Fatalf("empty list has no timestamp")
	}
	if len(l.RevokedJti) != 0 || len(l.RevokedSub) != 0 {
		t.Fatalf("empty list is not empty: %+v", l)
	}
}

func TestAdd(t *testing.T) {
	t.Parallel()
	l := Empty()
	l2 := mustAdd(t, l, "jti-1", TypeJti)
	if l2 == l {
		t.Fatalf("Add must return a new list")
	}
	if len(l.RevokedJti) != 0 {
		t.Fatalf("Add mutated the original list")
	}
	if !l2.Contains("jti-1", "") {
		t.Fatalf("added id not present")
	}

	// Duplicate: same list back, timestamp untouched.
	l3 := mustAdd(t, l2, "jti-1", TypeJti)
	if l3 != l2 {
		t.Fatalf("duplicate Add must be a reference-preserving no-op")
	}

	// Trimmed dedup.
	l4 := mustAdd(t, l2, "  jti-1  ", TypeJti)
	if l4 != l2 {
		t.Fatalf("whitespace-padded duplicate must dedup")
	}

	l5 := mustAdd(t, l2, "m-9", TypeSub)
	if !l5.Contains("", "m-9") {
		t.Fatalf("sub entry not present")
	}
	if l5.Contains("m-9", "") {
		t.Fatalf("sub entry leaked into the jti set")
	}
}

func TestAddValidation(t *testing.T) {
	t.Parallel()
	l := Empty()
	for _, id := range []string{"", "   ", "\t\n"} {
		if _, err := Add(l, id, TypeJti); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("id %q: want ErrValidation, got %v", id, err)
		}
	}
	if _, err := Add(l, "x", EntryType("card")); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad type: want ErrValidation, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()
	l := mustAdd(t, mustAdd(t, Empty(), "a", TypeJti), "b", TypeJti)

	l2, err := Remove(l, "a", TypeJti)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if l2 == l || l2.Contains("a", "") || !l2.Contains("b", "") {
		t.Fatalf("Remove wrong result: %+v", l2)
	}

	l3, err := Remove(l2, "missing", TypeJti)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if l3 != l2 {
		t.Fatalf("removing an absent id must be a reference-preserving no-op")
	}
}

func TestMergeUnion(t *testing.T) {
	t.Parallel()
	base := mustAdd(t, mustAdd(t, Empty(), "j1", TypeJti), "s1", TypeSub)
	incoming := mustAdd(t, mustAdd(t, Empty(), "j2", TypeJti), "j1", TypeJti)

	merged, err := Merge(base, incoming)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	for _, jti := range []string{"j1", "j2"} {
		if !merged.Contains(jti, "") {
			t.Fatalf("merged missing %s", jti)
		}
	}
	if !merged.Contains("", "s1") {
		t.Fatalf("merged lost base sub entry")
	}
}

// A stale or adversarial incoming snapshot must never remove base entries.
func TestMergeNeverDropsBaseEntries(t *testing.T) {
	t.Parallel()
	base := mustAdd(t, mustAdd(t, Empty(), "j1", TypeJti), "s1", TypeSub)

	merged, err := Merge(base, Empty())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged != base {
		t.Fatalf("merging an empty list must return base unchanged (no timestamp bump)")
	}
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()
	base := mustAdd(t, Empty(), "j1", TypeJti)
	incoming := mustAdd(t, mustAdd(t, Empty(), "j2", TypeJti), "s2", TypeSub)

	once, err := Merge(base, incoming)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	twice, err := Merge(once, incoming)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if twice != once {
		t.Fatalf("re-merging the same incoming list must be a no-op")
	}
}

func TestMergeNil(t *testing.T) {
	t.Parallel()
	if _, err := Merge(nil, Empty()); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("nil base: want ErrValidation, got %v", err)
	}
	if _, err := Merge(Empty(), nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("nil incoming: want ErrValidation, got %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	l := mustAdd(t, mustAdd(t, mustAdd(t, Empty(), "j1", TypeJti), "j2", TypeJti), "s1", TypeSub)
	text, err := ToJSON(l)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := FromJSON(text)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.UpdatedAt != l.UpdatedAt {
		t.Fatalf("updated_at lost: %q != %q", got.UpdatedAt, l.UpdatedAt)
	}
	if len(got.RevokedJti) != 2 || got.RevokedJti[0] != "j1" || got.RevokedJti[1] != "j2" {
		t.Fatalf("jti order/content lost: %v", got.RevokedJti)
	}
	if len(got.RevokedSub) != 1 || got.RevokedSub[0] != "s1" {
		t.Fatalf("sub lost: %v", got.RevokedSub)
	}
}

func TestFromJSONStructuralValidation(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"not JSON":            "{",
		"null":                "null",
		"array document":      `[1,2]`,
		"missing updated_at":  `{"revoked_jti":[],"revoked_sub":[]}`,
		"updated_at number":   `{"updated_at":5,"revoked_jti":[],"revoked_sub":[]}`,
		"missing jti array":   `{"updated_at":"2025-01-01T00:00:00Z","revoked_sub":[]}`,
		"jti not an array":    `{"updated_at":"2025-01-01T00:00:00Z","revoked_jti":"x","revoked_sub":[]}`,
		"null sub array":      `{"updated_at":"2025-01-01T00:00:00Z","revoked_jti":[],"revoked_sub":null}`,
		"jti array of number": `{"updated_at":"2025-01-01T00:00:00Z","revoked_jti":[1],"revoked_sub":[]}`,
	}
	for name, text := range cases {
		if _, err := FromJSON(text); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("%s: want ErrValidation, got %v", name, err)
		}
	}
}

func TestContainsOrSemantics(t *testing.T) {
	t.Parallel()
	l := mustAdd(t, mustAdd(t, Empty(), "x", TypeJti), "y", TypeSub)
	if !l.Contains("x", "anything") {
		t.Fatalf("jti match alone must revoke")
	}
	if !l.Contains("anything", "y") {
		t.Fatalf("sub match alone must revoke")
	}
	if l.Contains("a", "b") {
		t.Fatalf("no match must not revoke")
	}
	if l.Contains("", "") {
		t.Fatalf("empty ids must never match")
	}
}
