package harvest

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	emailScanPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	emailStrictPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// strippedSelectors are removed before text extraction. Tracking snippets and
// boilerplate footers are the main source of false-positive addresses.
const strippedSelectors = "script, style, noscript, iframe, img, svg, footer, .footer"

// mailtoSkipScanThreshold skips the free-text scan once this many mailto
// addresses are found on a page, trading a little recall for latency.
const mailtoSkipScanThreshold = 3

// ValidEmail reports whether s is a strictly email-shaped string.
func ValidEmail(s string) bool {
	return emailStrictPattern.MatchString(s)
}

// ExtractEmails parses an HTML document and returns the lowercased,
// deduplicated, strictly validated addresses it contains. mailto: link
// targets are collected first; visible text is only scanned when mailto
// links alone yield too few addresses. Unparseable input yields nil.
func ExtractEmails(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	doc.Find(strippedSelectors).Remove()

	var candidates []string
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.Index(addr, "?"); i >= 0 {
			addr = addr[:i]
		}
		if addr != "" {
			candidates = append(candidates, addr)
		}
	})

	if len(candidates) < mailtoSkipScanThreshold {
		text := doc.Find("body").Text()
		candidates = append(candidates, emailScanPattern.FindAllString(text, -1)...)
	}

	seen := make(map[string]struct{}, len(candidates))
	var emails []string
	for _, c := range candidates {
		email := strings.ToLower(strings.TrimSpace(c))
		if !ValidEmail(email) {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}
