package vault

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midpay/midpay/chain"
)

func TestCreateAndGetAccount(t *testing.T) {
	v := NewVault()

	a, err := v.CreateAccount("A")
	require.NoError(t, err)
	assert.Equal(t, "A", a.ID)

	got, err := v.GetAccount("A")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = v.CreateAccount("A")
	assert.Error(t, err)

	_, err = v.GetAccount("missing")
	assert.Error(t, err)
}

func TestEnsureAccounts(t *testing.T) {
	v := NewVault()
	require.NoError(t, v.EnsureAccounts("A", "B", "admin"))
	require.NoError(t, v.EnsureAccounts("A")) // idempotent
	assert.True(t, v.HasAccount("admin"))
	assert.Len(t, v.Principals(), 3)
}

func TestSignAndVerifyRecord(t *testing.T) {
	v := NewVault()
	a, err := v.CreateAccount("A")
	require.NoError(t, err)

	r := chain.NewRecord()
	r.Set("transaction_id", "tx-1")
	r.Set("amount", "100")
	r.Set("status", "pending")

	require.NoError(t, a.SignRecord(r))
	_, hasSig := r.Signature()
	require.True(t, hasSig)

	assert.True(t, VerifyRecord(a.PubKey(), r))

	// tampering with any field invalidates the signature
	r.Set("amount", "999")
	assert.False(t, VerifyRecord(a.PubKey(), r))
}

func TestVerifyRecordWrongKey(t *testing.T) {
	v := NewVault()
	a, err := v.CreateAccount("A")
	require.NoError(t, err)
	b, err := v.CreateAccount("B")
	require.NoError(t, err)

	r := chain.NewRecord()
	r.Set("transaction_id", "tx-1")
	require.NoError(t, a.SignRecord(r))

	assert.False(t, VerifyRecord(b.PubKey(), r))
}

func TestVerifyRecordWithoutSignature(t *testing.T) {
	v := NewVault()
	a, err := v.CreateAccount("A")
	require.NoError(t, err)

	r := chain.NewRecord()
	r.Set("transaction_id", "tx-1")
	assert.False(t, VerifyRecord(a.PubKey(), r))
}

func TestVaultSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.dat")
	password := []byte("secret")

	v := NewVault()
	require.NoError(t, v.EnsureAccounts("A", "B"))
	require.NoError(t, v.Save(path, password))

	loaded, err := LoadVault(path, password)
	require.NoError(t, err)
	require.True(t, loaded.HasAccount("A"))
	require.True(t, loaded.HasAccount("B"))

	// a record signed before saving verifies with the reloaded key
	orig, _ := v.GetAccount("A")
	r := chain.NewRecord()
	r.Set("transaction_id", "tx-1")
	require.NoError(t, orig.SignRecord(r))

	reloaded, _ := loaded.GetAccount("A")
	assert.True(t, VerifyRecord(reloaded.PubKey(), r))
}

func TestVaultWrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.dat")

	v := NewVault()
	require.NoError(t, v.EnsureAccounts("A"))
	require.NoError(t, v.Save(path, []byte("right")))

	_, err := LoadVault(path, []byte("wrong"))
	assert.Error(t, err)
}

func TestOpenVaultMissingFile(t *testing.T) {
	v, err := OpenVault(filepath.Join(t.TempDir(), "absent.dat"), []byte("pw"))
	require.NoError(t, err)
	assert.Empty(t, v.Principals())
}
