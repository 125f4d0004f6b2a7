package common

import "context"

const (
	BIT_JSONRPC byte = 1
)

type Handler func(Serverer, map[string]interface{}, context.Context) map[string]interface{}

type APIHandler struct {
	Handler    Handler
	AccessCtrl byte
}

// IsAccessableByJsonrpc return true if the handler is
// able to be invoked by jsonrpc
func (ah *APIHandler) IsAccessableByJsonrpc() bool {
	return ah.AccessCtrl&BIT_JSONRPC == BIT_JSONRPC
}

var InitialAPIHandlers = map[string]APIHandler{
	"create_transaction":             {Handler: createTransaction, AccessCtrl: BIT_JSONRPC},
	"mark_service_completed":         {Handler: markServiceCompleted, AccessCtrl: BIT_JSONRPC},
	"confirm_completion":             {Handler: confirmCompletion, AccessCtrl: BIT_JSONRPC},
	"cancel_transaction":             {Handler: cancelTransaction, AccessCtrl: BIT_JSONRPC},
	"create_dispute":                 {Handler: createDispute, AccessCtrl: BIT_JSONRPC},
	"resolve_dispute":                {Handler: resolveDispute, AccessCtrl: BIT_JSONRPC},
	"create_multi_party_transaction": {Handler: createMultiPartyTransaction, AccessCtrl: BIT_JSONRPC},
	"schedule_transaction":           {Handler: scheduleTransaction, AccessCtrl: BIT_JSONRPC},
	"get_transaction_status":         {Handler: getTransactionStatus, AccessCtrl: BIT_JSONRPC},
	"get_transaction_history":        {Handler: getTransactionHistory, AccessCtrl: BIT_JSONRPC},
	"get_balance":                    {Handler: getBalance, AccessCtrl: BIT_JSONRPC},
	"get_user_analytics":             {Handler: getUserAnalytics, AccessCtrl: BIT_JSONRPC},
	"get_volume_report":              {Handler: getVolumeReport, AccessCtrl: BIT_JSONRPC},
	"verify_blockchain":              {Handler: verifyBlockchain, AccessCtrl: BIT_JSONRPC},
	"get_blockchain":                 {Handler: getBlockchain, AccessCtrl: BIT_JSONRPC},
	"create_user":                    {Handler: createUser, AccessCtrl: BIT_JSONRPC},
}
