package verifier

import "net/url"

// TokenFromFragment extracts a token from a verification URL's fragment
// ("...#token=<jwt>"). Fragments never reach a server, which keeps tokens out
// of HTTP logs; that is why the query string is not the primary transport.
func TokenFromFragment(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Fragment == "" {
		return "", false
	}
	vals, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return "", false
	}
	tok := vals.Get("token")
	return tok, tok != ""
}
