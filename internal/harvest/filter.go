package harvest

import "strings"

// noisePatterns knock out role-based mailboxes. Matching is substring-based
// over the whole lowercased address, so domain-embedded noise is caught too.
// Discarding the odd legitimate address that contains one of these strings
// is an accepted cost.
var noisePatterns = []string{
	"noreply",
	"no-reply",
	"donotreply",
	"support@",
	"info@",
	"sales@",
	"marketing@",
	"webmaster@",
	"hello@",
	"contact@",
}

// FilterNoise returns emails with role-based addresses removed. The input
// slice is not modified. Filtering is idempotent.
func FilterNoise(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, email := range emails {
		if isNoise(email) {
			continue
		}
		out = append(out, email)
	}
	return out
}

func isNoise(email string) bool {
	lower := strings.ToLower(email)
	for _, pattern := range noisePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
