package phone

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAccepts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want Number
	}{
		{name: "plain digits", raw: "5550000000", want: "5550000000"},
		{name: "plus and hyphens", raw: "+1-234-567-8900", want: "+12345678900"},
		{name: "spaces", raw: "+44 20 7946 0958", want: "+442079460958"},
		{name: "mixed separators", raw: "555 000-0000", want: "5550000000"},
		{name: "tab counts as space", raw: "555\t000\t0000", want: "5550000000"},
		{name: "newline", raw: "555\t000\n0000", want: "5550000000"},
		{name: "vertical tab", raw: "555\v000\v0000", want: "5550000000"},
		{name: "no-break space", raw: "555\u00a0000\u00a00000", want: "5550000000"},
		{name: "ideographic space", raw: "+1\u3000555\u30000000000", want: "+15550000000"},
		{name: "byte order mark", raw: "\ufeff5550000000", want: "5550000000"},
		{name: "long", raw: "0012345678901234", want: "0012345678901234"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"",
		"123456789",       // nine characters
		"+123456789",      // plus does not count toward the ten
		"555-000-000a",    // letter
		"(555) 000-0000",  // parentheses
		"++15550000000",   // double plus
		"1555000000+",     // trailing plus
		" +15550000000",   // plus must lead
		"555.000.0000",    // dots
		"call 5550000000", // substring match is not enough
		// zero-width space is a format character, not whitespace
		"555\u200b000\u200b0000",
	} {
		_, err := Normalize(raw)
		require.Error(t, err, "Normalize(%q)", raw)
		assert.True(t, errors.Is(err, ErrInvalidFormat), "Normalize(%q) should wrap ErrInvalidFormat", raw)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, raw, verr.Input)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"+1-234-567-8900", "555 000 0000", "0123456789"} {
		once, err := Normalize(raw)
		require.NoError(t, err)
		twice, err := Normalize(string(once))
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()
	_, err := Normalize("nope")
	require.EqualError(t, err, `invalid phone number format: "nope"`)
}
