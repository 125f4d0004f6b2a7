package httpjson

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midpay/midpay/api/common"
	"github.com/midpay/midpay/api/httpjson/client"
	"github.com/midpay/midpay/bank"
	"github.com/midpay/midpay/chain"
	cm "github.com/midpay/midpay/common"
	"github.com/midpay/midpay/escrow"
	"github.com/midpay/midpay/vault"
)

func newTestServer(t *testing.T) (*RPCServer, *httptest.Server) {
	ledger, err := chain.NewBlockchain(1, 1<<20, nil)
	require.NoError(t, err)

	balances, err := bank.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { balances.Close() })

	manager, err := escrow.NewManager(ledger, balances, vault.NewVault())
	require.NoError(t, err)

	initial, err := cm.StringToFixed64("1000")
	require.NoError(t, err)
	require.NoError(t, manager.CreateUser("A", initial))
	initial, err = cm.StringToFixed64("500")
	require.NoError(t, err)
	require.NoError(t, manager.CreateUser("B", initial))

	srv := NewServer(manager, ledger)
	for name, handler := range common.InitialAPIHandlers {
		if handler.IsAccessableByJsonrpc() {
			srv.HandleFunc(name, handler.Handler)
		}
	}

	ts := httptest.NewServer(http.HandlerFunc(srv.Handle))
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestRPCCreateAndQuery(t *testing.T) {
	_, ts := newTestServer(t)

	result, err := client.CallResult(ts.URL, "", "create_transaction", map[string]interface{}{
		"payer":   "A",
		"payee":   "B",
		"amount":  "100",
		"service": "hosting",
	})
	require.NoError(t, err)

	var tx struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(result, &tx))
	assert.Equal(t, "pending", tx.Status)
	require.NotEmpty(t, tx.ID)

	result, err = client.CallResult(ts.URL, "", "get_balance", map[string]interface{}{"user": "A"})
	require.NoError(t, err)
	var bal struct {
		Balance       json.Number `json:"balance"`
		EscrowBalance json.Number `json:"escrow_balance"`
	}
	require.NoError(t, json.Unmarshal(result, &bal))
	assert.Equal(t, "900", bal.Balance.String())
	assert.Equal(t, "100", bal.EscrowBalance.String())

	result, err = client.CallResult(ts.URL, "", "get_transaction_status", map[string]interface{}{
		"transaction_id": tx.ID,
	})
	require.NoError(t, err)
	var st struct {
		History []map[string]interface{} `json:"blockchain_history"`
	}
	require.NoError(t, json.Unmarshal(result, &st))
	assert.Len(t, st.History, 1)

	result, err = client.CallResult(ts.URL, "", "verify_blockchain", nil)
	require.NoError(t, err)
	var report struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(result, &report))
	assert.True(t, report.Valid)
}

func TestRPCErrorMapping(t *testing.T) {
	_, ts := newTestServer(t)

	_, err := client.CallResult(ts.URL, "", "create_transaction", map[string]interface{}{
		"amount": "99999",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSUFFICIENT FUNDS")

	_, err = client.CallResult(ts.URL, "", "mark_service_completed", map[string]interface{}{
		"transaction_id": "no-such-id",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID TRANSACTION")

	_, err = client.CallResult(ts.URL, "", "create_transaction", map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID PARAMS")

	_, err = client.CallResult(ts.URL, "", "no_such_method", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Method not found")
}

func TestRPCAuth(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.auth = NewAPIKeyAuth([]string{"sesame"})

	_, err := client.CallResult(ts.URL, "", "get_balance", map[string]interface{}{"user": "A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VERIFY TOKEN ERROR")

	_, err = client.CallResult(ts.URL, "wrong", "get_balance", map[string]interface{}{"user": "A"})
	require.Error(t, err)

	_, err = client.CallResult(ts.URL, "sesame", "get_balance", map[string]interface{}{"user": "A"})
	assert.NoError(t, err)
}

func TestAPIKeyAuth(t *testing.T) {
	open := NewAPIKeyAuth(nil)
	assert.False(t, open.Enabled())

	auth := NewAPIKeyAuth([]string{"k1", "k2"})
	require.True(t, auth.Enabled())

	r := httptest.NewRequest("POST", "/", nil)
	assert.False(t, auth.CheckAuth(r))
	r.Header.Set(apiKeyHeader, "k2")
	assert.True(t, auth.CheckAuth(r))
	r.Header.Set(apiKeyHeader, "k3")
	assert.False(t, auth.CheckAuth(r))
}
