package verifier

import "testing"

func TestTokenFromFragment(t *testing.T) {
	t.Parallel()
	cases := []struct {
		url   string
		token string
		ok    bool
	}{
		{"https://verify.example.org/verify#token=aaa.bbb.ccc", "aaa.bbb.ccc", true},
		{"https://verify.example.org/verify#foo=1&token=aaa.bbb.ccc", "aaa.bbb.ccc", true},
		{"https://verify.example.org/verify", "", false},
		{"https://verify.example.org/verify#token=", "", false},
		// The query string is not the fragment transport.
		{"https://verify.example.org/verify?token=aaa.bbb.ccc", "", false},
		{"", "", false},
		{"://bad", "", false},
	}
	for _, tc := range cases {
		got, ok := TokenFromFragment(tc.url)
		if ok != tc.ok || got != tc.token {
			t.Fatalf("%q: got (%q, %v), want (%q, %v)", tc.url, got, ok, tc.token, tc.ok)
		}
	}
}
