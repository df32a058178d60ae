package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackParseRoundTrip(t *testing.T) {
	data := pack(cbCatalog, 42, 3)
	assert.Equal(t, "cat:42:3", data)

	cb, err := parseCallback(data)
	require.NoError(t, err)
	assert.Equal(t, cbCatalog, cb.Prefix)
	assert.EqualValues(t, 42, cb.Uint(0))
	assert.Equal(t, 3, cb.Int(1))
}

func TestPackStaysUnderTelegramLimit(t *testing.T) {
	// Worst realistic case: two 32-bit ids and a page number.
	data := pack(cbAdmin, "refund", uint(4294967295), 9999)
	assert.LessOrEqual(t, len(data), 64)
}

func TestCallbackLenientReads(t *testing.T) {
	cb, err := parseCallback("prd")
	require.NoError(t, err)
	assert.Equal(t, cbProduct, cb.Prefix)
	assert.Zero(t, cb.Uint(0), "missing args read as 0")
	assert.Zero(t, cb.Int(5))
	assert.Empty(t, cb.Str(0))

	cb, err = parseCallback("adm:credit:not-a-number")
	require.NoError(t, err)
	assert.Equal(t, "credit", cb.Str(0))
	assert.Zero(t, cb.Uint(1), "garbage never panics, it reads as root")

	_, err = parseCallback("")
	assert.Error(t, err)
}

func TestOptID(t *testing.T) {
	assert.Nil(t, optID(0), "0 is the nil-root sentinel")
	id := optID(7)
	require.NotNil(t, id)
	assert.EqualValues(t, 7, *id)
}
