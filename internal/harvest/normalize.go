package harvest

import (
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a raw, possibly schemeless website string into
// scheme://host/path with any trailing slash stripped. Query, fragment, and
// userinfo are dropped. Malformed input is returned unchanged so that a
// single bad domain never aborts a batch. Normalization is idempotent.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return raw
	}
	path := strings.TrimSuffix(parsed.EscapedPath(), "/")
	return parsed.Scheme + "://" + parsed.Host + path
}
