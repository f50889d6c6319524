package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL_PrependsScheme(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"acme.vc":                   "https://acme.vc",
		"acme.vc/":                  "https://acme.vc",
		"acme.vc/team/":             "https://acme.vc/team",
		"www.acme.vc/contact":       "https://www.acme.vc/contact",
		"http://acme.vc/about/":     "http://acme.vc/about",
		"https://acme.vc/our-team/": "https://acme.vc/our-team",
	}
	for input, want := range cases {
		require.Equal(t, want, NormalizeURL(input), "input %q", input)
	}
}

func TestNormalizeURL_DropsQueryAndFragment(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://acme.vc/team", NormalizeURL("https://acme.vc/team?utm=x#staff"))
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"acme.vc",
		"acme.vc/team/",
		"https://acme.vc/about-us",
		"not a url at all",
		"",
	}
	for _, input := range inputs {
		once := NormalizeURL(input)
		require.Equal(t, once, NormalizeURL(once), "input %q", input)
	}
}

func TestNormalizeURL_MalformedReturnsInput(t *testing.T) {
	t.Parallel()

	// No interpretable host: the caller gets the original string back and
	// the batch keeps going.
	require.Equal(t, "http://", NormalizeURL("http://"))
	require.Equal(t, "https://", NormalizeURL("https://"))
}

func TestNormalizeURL_EmptyInput(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", NormalizeURL(""))
	require.Equal(t, "", NormalizeURL("   "))
}
