package capsule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	sealed, err := Seal([]byte("dear future me"), "hunter2")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "future")

	plain, err := Open(sealed, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "dear future me", string(plain))
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("secret"), "right")
	require.NoError(t, err)

	_, err = Open(sealed, "wrong")
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestOpenTruncated(t *testing.T) {
	_, err := Open([]byte("short"), "any")
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSealIsSalted(t *testing.T) {
	a, err := Seal([]byte("same body"), "pw")
	require.NoError(t, err)
	b, err := Seal([]byte("same body"), "pw")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
