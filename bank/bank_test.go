package bank

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midpay/midpay/common"
	"github.com/midpay/midpay/errors"
)

func newTestStore(t *testing.T) *Store {
	s, err := NewStore(filepath.Join(t.TempDir(), "bank"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fixed(t *testing.T, s string) common.Fixed64 {
	f, err := common.StringToFixed64(s)
	require.NoError(t, err)
	return f
}

func TestCreateUserAndBalance(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateUser("A", fixed(t, "1000")))
	assert.True(t, s.HasUser("A"))
	assert.False(t, s.HasUser("B"))

	balance, err := s.GetBalance("A")
	require.NoError(t, err)
	assert.Equal(t, fixed(t, "1000"), balance)

	err = s.CreateUser("A", fixed(t, "1"))
	assert.Equal(t, errors.ErrDuplicateUser, errors.ErrerCode(err))

	_, err = s.GetBalance("B")
	assert.Equal(t, errors.ErrUnknownUser, errors.ErrerCode(err))
}

func TestApplyDelta(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser("A", fixed(t, "1000")))

	require.NoError(t, s.ApplyDelta("A", -fixed(t, "100"), "Payment to escrow [ID: tx-1]"))
	require.NoError(t, s.ApplyDelta("A", fixed(t, "25.5"), "Refund [ID: tx-2]"))

	balance, err := s.GetBalance("A")
	require.NoError(t, err)
	assert.Equal(t, fixed(t, "925.5"), balance)

	entries, err := s.Transactions("A")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, -fixed(t, "100"), entries[0].Amount)
	assert.Equal(t, "Payment to escrow [ID: tx-1]", entries[0].Description)
	assert.Equal(t, fixed(t, "25.5"), entries[1].Amount)

	err = s.ApplyDelta("missing", fixed(t, "1"), "x")
	assert.Equal(t, errors.ErrUnknownUser, errors.ErrerCode(err))
}

func TestSeed(t *testing.T) {
	s := newTestStore(t)

	seed := map[string]string{"A": "1000", "B": "500"}
	require.NoError(t, s.Seed(seed))

	a, err := s.GetBalance("A")
	require.NoError(t, err)
	assert.Equal(t, fixed(t, "1000"), a)

	// seeding again must not reset balances
	require.NoError(t, s.ApplyDelta("A", -fixed(t, "10"), "spend"))
	require.NoError(t, s.Seed(seed))
	a, err = s.GetBalance("A")
	require.NoError(t, err)
	assert.Equal(t, fixed(t, "990"), a)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bank")

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser("A", fixed(t, "42")))
	require.NoError(t, s.Close())

	s2, err := NewStore(dir)
	require.NoError(t, err)
	defer s2.Close()

	balance, err := s2.GetBalance("A")
	require.NoError(t, err)
	assert.Equal(t, fixed(t, "42"), balance)
}
