package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterNoise_DropsRoleAddresses(t *testing.T) {
	t.Parallel()

	in := []string{
		"jane@acme.vc",
		"info@acme.vc",
		"support@acme.vc",
		"sales@acme.vc",
		"marketing@acme.vc",
		"webmaster@acme.vc",
		"hello@acme.vc",
		"contact@acme.vc",
		"noreply@acme.vc",
		"no-reply@acme.vc",
		"donotreply@acme.vc",
		"partners@acme.vc",
	}
	require.Equal(t, []string{"jane@acme.vc", "partners@acme.vc"}, FilterNoise(in))
}

func TestFilterNoise_SubstringMatchesWholeAddress(t *testing.T) {
	t.Parallel()

	// The patterns match anywhere in the address, local part or domain.
	require.Empty(t, FilterNoise([]string{"jane@noreply.acme.vc"}))
	require.Empty(t, FilterNoise([]string{"team.donotreply@acme.vc"}))
}

func TestFilterNoise_Idempotent(t *testing.T) {
	t.Parallel()

	in := []string{"jane@acme.vc", "info@acme.vc", "bob@acme.vc"}
	once := FilterNoise(in)
	require.Equal(t, once, FilterNoise(once))
}

func TestFilterNoise_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	in := []string{"info@acme.vc", "jane@acme.vc"}
	_ = FilterNoise(in)
	require.Equal(t, []string{"info@acme.vc", "jane@acme.vc"}, in)
}

func TestFilterNoise_Empty(t *testing.T) {
	t.Parallel()

	require.Empty(t, FilterNoise(nil))
	require.Empty(t, FilterNoise([]string{}))
}
