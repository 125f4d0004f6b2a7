package common

import (
	"context"
	"time"

	"github.com/midpay/midpay/api/common/errcode"
	"github.com/midpay/midpay/escrow"
)

const timestampLayout = "2006-01-02 15:04:05"

// createTransaction opens an escrow payment.
// params: {"payer":<user>, "payee":<user>, "amount":<amount>, "service":<description>}
// return: {"resultOrData":<transaction>|<error data>, "error":<errcode>}
func createTransaction(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	payer, ok := paramString(params, "payer")
	if !ok {
		payer = "A"
	}
	payee, ok := paramString(params, "payee")
	if !ok {
		payee = "B"
	}
	amount, ok := paramAmount(params, "amount")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "amount")
	}
	service, _ := paramString(params, "service")

	tx, err := s.GetEscrow().Create(ctx, payer, payee, amount, service)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, tx)
}

// markServiceCompleted records the payee's completion claim.
// params: {"transaction_id":<id>}
func markServiceCompleted(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	id, ok := paramString(params, "transaction_id")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "transaction_id")
	}
	tx, err := s.GetEscrow().MarkCompleted(ctx, id)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, tx)
}

// confirmCompletion releases escrowed funds to the payee.
// params: {"transaction_id":<id>}
func confirmCompletion(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	id, ok := paramString(params, "transaction_id")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "transaction_id")
	}
	tx, err := s.GetEscrow().ConfirmCompletion(ctx, id)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, tx)
}

// cancelTransaction refunds the payer(s) and closes the transaction.
// params: {"transaction_id":<id>}
func cancelTransaction(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	id, ok := paramString(params, "transaction_id")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "transaction_id")
	}
	tx, err := s.GetEscrow().Cancel(ctx, id)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, tx)
}

// createDispute freezes a transaction for administrative review.
// params: {"transaction_id":<id>, "reason":<text>}
func createDispute(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	id, ok := paramString(params, "transaction_id")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "transaction_id")
	}
	reason, _ := paramString(params, "reason")
	d, err := s.GetEscrow().CreateDispute(ctx, id, reason)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, d)
}

// resolveDispute closes a dispute with "refund" or "release".
// params: {"dispute_id":<id>, "resolution":<refund|release>}
func resolveDispute(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	id, ok := paramString(params, "dispute_id")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "dispute_id")
	}
	resolution, ok := paramString(params, "resolution")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "resolution")
	}
	d, err := s.GetEscrow().ResolveDispute(ctx, id, resolution)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, d)
}

// createMultiPartyTransaction splits an escrow payment across payers; the
// last party listed is the payee.
// params: {"parties":[<user>...], "amount":<amount>, "service":<description>}
func createMultiPartyTransaction(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	raw, ok := params["parties"].([]interface{})
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "parties")
	}
	parties := make([]string, 0, len(raw))
	for _, p := range raw {
		name, ok := p.(string)
		if !ok {
			return respPacking(errcode.INVALID_PARAMS, "parties")
		}
		parties = append(parties, name)
	}
	amount, ok := paramAmount(params, "amount")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "amount")
	}
	service, _ := paramString(params, "service")

	tx, err := s.GetEscrow().CreateMultiParty(ctx, parties, amount, service)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, tx)
}

// scheduleTransaction registers a future payment without moving funds.
// params: {"payer":<user>, "amount":<amount>, "service":<description>, "execute_at":<timestamp>}
func scheduleTransaction(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	payer, ok := paramString(params, "payer")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "payer")
	}
	amount, ok := paramAmount(params, "amount")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "amount")
	}
	executeAt, ok := paramString(params, "execute_at")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "execute_at")
	}
	service, _ := paramString(params, "service")

	tx, err := s.GetEscrow().Schedule(ctx, payer, amount, service, executeAt)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, tx)
}

// getTransactionStatus returns a transaction and its ledger audit trail.
// params: {"transaction_id":<id>}
func getTransactionStatus(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	id, ok := paramString(params, "transaction_id")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "transaction_id")
	}
	st, err := s.GetEscrow().GetTransactionStatus(id)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, st)
}

// getTransactionHistory lists transactions, optionally filtered.
// params: {"user":<user>, "status":<status>, "from":<timestamp>, "to":<timestamp>}
func getTransactionHistory(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	var filter escrow.HistoryFilter
	filter.User, _ = paramString(params, "user")
	filter.Status, _ = paramString(params, "status")
	if v, ok := paramString(params, "from"); ok {
		t, err := time.ParseInLocation(timestampLayout, v, time.Local)
		if err != nil {
			return respPacking(errcode.INVALID_PARAMS, "from")
		}
		filter.From = t
	}
	if v, ok := paramString(params, "to"); ok {
		t, err := time.ParseInLocation(timestampLayout, v, time.Local)
		if err != nil {
			return respPacking(errcode.INVALID_PARAMS, "to")
		}
		filter.To = t
	}

	txs, err := s.GetEscrow().TransactionHistory(filter)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, txs)
}

// getBalance returns the user's bank balance and the escrow aggregate.
// params: {"user":<user>}
func getBalance(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	user, ok := paramString(params, "user")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "user")
	}
	balance, err := s.GetEscrow().Balance(user)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, map[string]interface{}{
		"user":           user,
		"balance":        balance,
		"escrow_balance": s.GetEscrow().EscrowBalance(),
	})
}

// getUserAnalytics summarizes one user's ledger activity.
// params: {"user":<user>}
func getUserAnalytics(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	user, ok := paramString(params, "user")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "user")
	}
	a, err := s.GetEscrow().GetUserAnalytics(user)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, a)
}

// getVolumeReport totals escrow inflow over a trailing period.
// params: {"period":<day|week|month|year>}
func getVolumeReport(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	period, ok := paramString(params, "period")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "period")
	}
	report, err := s.GetEscrow().GetVolumeReport(period)
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}
	return respPacking(errcode.SUCCESS, report)
}

// verifyBlockchain audits hash linkage, proof-of-work and signatures.
// params: {}
func verifyBlockchain(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	return respPacking(errcode.SUCCESS, s.GetEscrow().VerifyIntegrity())
}

// getBlockchain dumps the sealed chain.
// params: {}
func getBlockchain(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	ledger := s.GetLedger()
	blocks := make([]interface{}, 0, ledger.Len())
	for i := 0; i < ledger.Len(); i++ {
		blocks = append(blocks, ledger.Block(uint64(i)))
	}
	return respPacking(errcode.SUCCESS, map[string]interface{}{
		"height": ledger.Height(),
		"blocks": blocks,
	})
}

// createUser onboards a principal with an initial balance.
// params: {"user":<user>, "initial_balance":<amount>}
func createUser(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	user, ok := paramString(params, "user")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "user")
	}
	initial, ok := paramAmount(params, "initial_balance")
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "initial_balance")
	}
	if err := s.GetEscrow().CreateUser(user, initial); err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, map[string]interface{}{"user": user, "balance": initial})
}
