package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed64String(t *testing.T) {
	assert.Equal(t, "0", Fixed64(0).String())
	assert.Equal(t, "1", Fixed64(StorageFactor).String())
	assert.Equal(t, "0.50000000", Fixed64(StorageFactor/2).String())
	assert.Equal(t, "-2.25000000", Fixed64(-225*StorageFactor/100).String())
	assert.Equal(t, "100", Fixed64(100*StorageFactor).String())
}

func TestStringToFixed64(t *testing.T) {
	f, err := StringToFixed64("100")
	require.NoError(t, err)
	assert.Equal(t, Fixed64(100*StorageFactor), f)

	f, err = StringToFixed64("0.5")
	require.NoError(t, err)
	assert.Equal(t, Fixed64(StorageFactor/2), f)

	_, err = StringToFixed64("0.123456789")
	assert.Error(t, err)

	_, err = StringToFixed64("not a number")
	assert.Error(t, err)
}

func TestFixed64RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "42", "0.50000000", "1234.56780000"} {
		f, err := StringToFixed64(s)
		require.NoError(t, err)
		assert.Equal(t, s, f.String())
	}
}

func TestFixed64Div(t *testing.T) {
	amount := Fixed64(100 * StorageFactor)
	assert.Equal(t, Fixed64(50*StorageFactor), amount.Div(2))
	assert.Equal(t, "33.33333333", amount.Div(3).String())
}
