package taxid_test

import (
	"testing"

	"github.com/jhoicas/farmacia-pos/pkg/taxid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationDigit(t *testing.T) {
	cases := map[string]byte{
		"800197268": '4',
		"900123456": '8',
		"860034313": '7',
		"12345":     '8',
	}
	for base, want := range cases {
		got, err := taxid.VerificationDigit(base)
		require.NoError(t, err, base)
		assert.Equal(t, want, got, base)
	}
}

func TestNormalize_Validos(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1020304050", "1020304050"},
		{" 1.020.304.050 ", "1020304050"},
		{"800.197.268-4", "800197268-4"},
		{"900123456-8", "900123456-8"},
	}
	for _, tc := range cases {
		got, err := taxid.Normalize(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalize_Rechazos(t *testing.T) {
	for _, in := range []string{"", "1234", "900123456-7", "900123456-", "900123456-12", "CC1020304050", "1234567890123456"} {
		_, err := taxid.Normalize(in)
		assert.ErrorIs(t, err, taxid.ErrMalformed, in)
	}
}
