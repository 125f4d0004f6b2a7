package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midpay/midpay/common"
)

func TestSignVerify(t *testing.T) {
	priv, err := GenKeyPair()
	require.NoError(t, err)

	data := []byte("escrow payment record")
	sig, err := Sign(priv, data)
	require.NoError(t, err)

	assert.True(t, Verify(&priv.PublicKey, data, sig))

	// flipping any byte of the signature breaks verification
	bad := make([]byte, len(sig))
	copy(bad, sig)
	bad[0] ^= 0xff
	assert.False(t, Verify(&priv.PublicKey, data, bad))

	// so does flipping the record
	tampered := []byte("escrow payment recorD")
	assert.False(t, Verify(&priv.PublicKey, tampered, sig))
}

func TestSignIsRandomized(t *testing.T) {
	priv, err := GenKeyPair()
	require.NoError(t, err)

	data := []byte("same input")
	sig1, err := Sign(priv, data)
	require.NoError(t, err)
	sig2, err := Sign(priv, data)
	require.NoError(t, err)

	// PSS salts differ, both must still verify
	assert.NotEqual(t, sig1, sig2)
	assert.True(t, Verify(&priv.PublicKey, data, sig1))
	assert.True(t, Verify(&priv.PublicKey, data, sig2))
}

func TestVerifyMalformedInput(t *testing.T) {
	priv, err := GenKeyPair()
	require.NoError(t, err)

	assert.False(t, Verify(nil, []byte("x"), []byte("y")))
	assert.False(t, Verify(&priv.PublicKey, []byte("x"), nil))
	assert.False(t, Verify(&priv.PublicKey, []byte("x"), []byte("garbage")))
}

func TestPrivateKeyPEMRoundTrip(t *testing.T) {
	priv, err := GenKeyPair()
	require.NoError(t, err)

	pemBytes, err := MarshalPrivateKey(priv)
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(pemBytes)
	require.NoError(t, err)
	assert.True(t, priv.Equal(parsed))

	_, err = ParsePrivateKey([]byte("not pem"))
	assert.Error(t, err)
}

func TestAesRoundTrip(t *testing.T) {
	key := ToAesKey([]byte("password"))
	iv := make([]byte, 16)
	plaintext := []byte("vault master key material")

	ciphertext, err := AesEncrypt(plaintext, key, iv)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := AesDecrypt(ciphertext, key, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	_, err = AesDecrypt([]byte("short"), key, iv)
	assert.Error(t, err)
}

func TestCanonicalMarshalSortsKeys(t *testing.T) {
	out, err := CanonicalMarshal(map[string]interface{}{
		"b": "2",
		"a": "1",
		"c": uint64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2","c":3}`, string(out))
}

func TestCanonicalMarshalScalars(t *testing.T) {
	out, err := CanonicalMarshal(map[string]interface{}{
		"amount": common.Fixed64(50 * common.StorageFactor),
		"ts":     1756712345.5,
		"flag":   true,
		"none":   nil,
		"list":   []interface{}{"x", uint64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"amount":50,"flag":true,"list":["x",1],"none":null,"ts":1756712345.5}`, string(out))
}

func TestCanonicalMarshalDeterministic(t *testing.T) {
	fields := map[string]interface{}{
		"transaction_id": "tx-1",
		"amount":         "100",
		"status":         "pending",
	}
	a, err := CanonicalMarshal(fields)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		b, err := CanonicalMarshal(fields)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestCanonicalMarshalUnsupportedType(t *testing.T) {
	_, err := CanonicalMarshal(map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)
}
