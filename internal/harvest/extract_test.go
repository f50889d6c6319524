package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractEmails_MailtoLinks(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
		<a href="mailto:info@firm.com">Email us</a>
		<a href="mailto:Jane.Doe@Firm.com?subject=Hi">Jane</a>
	</body></html>`)

	emails := ExtractEmails(html)
	require.Equal(t, []string{"info@firm.com", "jane.doe@firm.com"}, emails)
}

func TestExtractEmails_TextScanFallback(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
		<p>Reach our partners at deals@fund.vc or visit the office.</p>
	</body></html>`)

	emails := ExtractEmails(html)
	require.Equal(t, []string{"deals@fund.vc"}, emails)
}

func TestExtractEmails_SkipsTextScanWithEnoughMailtos(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
		<a href="mailto:a@firm.com">a</a>
		<a href="mailto:b@firm.com">b</a>
		<a href="mailto:c@firm.com">c</a>
		<p>text-only@firm.com</p>
	</body></html>`)

	emails := ExtractEmails(html)
	require.Equal(t, []string{"a@firm.com", "b@firm.com", "c@firm.com"}, emails)
}

func TestExtractEmails_StripsNoiseElements(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
		<script>var x = "tracker@analytics.io";</script>
		<noscript>pixel@tracking.net</noscript>
		<footer>footer@firm.com</footer>
		<div class="footer">div-footer@firm.com</div>
		<p>partner@firm.com</p>
	</body></html>`)

	emails := ExtractEmails(html)
	require.Equal(t, []string{"partner@firm.com"}, emails)
}

func TestExtractEmails_DedupesCaseInsensitively(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
		<a href="mailto:Jane@Firm.com">Jane</a>
		<p>jane@firm.com</p>
	</body></html>`)

	emails := ExtractEmails(html)
	require.Equal(t, []string{"jane@firm.com"}, emails)
}

func TestExtractEmails_EveryResultIsStrictlyValid(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
		<a href="mailto:not-an-email">broken</a>
		<a href="mailto:jane@firm.com">ok</a>
		<p>trailing@dot. gibberish@@double.com word@tld.c</p>
	</body></html>`)

	emails := ExtractEmails(html)
	for _, email := range emails {
		require.True(t, ValidEmail(email), "extracted %q fails validation", email)
	}
	require.Contains(t, emails, "jane@firm.com")
}

func TestExtractEmails_UnparseableInput(t *testing.T) {
	t.Parallel()

	require.Empty(t, ExtractEmails(nil))
	require.Empty(t, ExtractEmails([]byte("")))
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	require.True(t, ValidEmail("jane.doe@firm.com"))
	require.True(t, ValidEmail("j+tag@sub.firm.co"))
	require.False(t, ValidEmail("jane@firm"))
	require.False(t, ValidEmail("@firm.com"))
	require.False(t, ValidEmail("jane@firm.c"))
	require.False(t, ValidEmail(""))
}
