package escrow

import (
	"context"
	"fmt"
	"time"

	"github.com/pborman/uuid"

	"github.com/midpay/midpay/chain"
	"github.com/midpay/midpay/common"
	"github.com/midpay/midpay/errors"
	"github.com/midpay/midpay/util/log"
)

// CreateMultiParty splits an escrow payment across several payers. The last
// party is the payee; every preceding party funds an equal share. Payers are
// debited in order, each debit staging its own signed record, and one block
// seals the whole batch. If any payer cannot cover its share, every earlier
// debit is reversed and nothing reaches the chain.
func (m *Manager) CreateMultiParty(ctx context.Context, parties []string, amount common.Fixed64, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, errors.NewDetailErr(errors.ErrInvalidTransaction, errors.ErrInvalidTransaction, "amount must be positive")
	}
	if len(parties) < 2 {
		return nil, errors.NewDetailErr(errors.ErrInvalidParty, errors.ErrInvalidParty, "need at least one payer and a payee")
	}
	for _, p := range parties {
		if !m.vault.HasAccount(p) || !m.bank.HasUser(p) {
			return nil, errors.NewDetailErr(errors.ErrInvalidParty, errors.ErrInvalidParty, p)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	payers := parties[:len(parties)-1]
	payee := parties[len(parties)-1]
	share := amount.Div(int64(len(payers)))

	id := "MULTI-" + uuid.NewRandom().String()
	now := time.Now()

	var applied []appliedDelta
	var escrowDelta common.Fixed64

	for _, payer := range payers {
		balance, err := m.bank.GetBalance(payer)
		if err != nil {
			m.unwind(applied, escrowDelta, id)
			return nil, err
		}
		if balance < share {
			m.unwind(applied, escrowDelta, id)
			return nil, errors.NewDetailErr(errors.ErrInsufficientFunds, errors.ErrInsufficientFunds,
				fmt.Sprintf("%s cannot cover share %s", payer, share.String()))
		}

		memo := fmt.Sprintf("Multi-party payment share for %s [ID: %s]", description, id)
		if err := m.bank.ApplyDelta(payer, -share, memo); err != nil {
			m.unwind(applied, escrowDelta, id)
			return nil, err
		}
		applied = append(applied, appliedDelta{payer, -share})
		m.escrowBalance += share
		escrowDelta += share

		rec := chain.NewRecord()
		rec.Set("transaction_id", id)
		rec.Set("type", "multi-party")
		rec.Set("amount", share)
		rec.Set("total_amount", amount)
		rec.Set("service", description)
		rec.Set("status", StatusPending.String())
		rec.Set("created_at", now.Format(timestampLayout))
		rec.Set("from", payer)
		rec.Set("to", "escrow")

		if err := m.signAndStage(payer, rec); err != nil {
			m.unwind(applied, escrowDelta, id)
			return nil, err
		}
	}

	if _, err := m.seal(ctx); err != nil {
		m.unwind(applied, escrowDelta, id)
		return nil, err
	}

	tx := &Transaction{
		ID:          id,
		Amount:      amount,
		EscrowHeld:  escrowDelta,
		Description: description,
		Status:      StatusPending,
		Payee:       payee,
		CreatedAt:   now,
		Parties:     append([]string(nil), parties...),
		Share:       share,
	}
	m.transactions[id] = tx
	log.Infof("multi-party transaction %s created: %d payers, share %s", id, len(payers), share.String())
	return tx.copyForRead(), nil
}

// Schedule registers a future escrow payment. No funds move and no share of
// the escrow aggregate is held until the transaction is executed; the chain
// records the intent.
func (m *Manager) Schedule(ctx context.Context, payer string, amount common.Fixed64, description, executeAt string) (*Transaction, error) {
	if amount <= 0 {
		return nil, errors.NewDetailErr(errors.ErrInvalidTransaction, errors.ErrInvalidTransaction, "amount must be positive")
	}
	if !m.bank.HasUser(payer) {
		return nil, errors.NewDetailErr(errors.ErrUnknownUser, errors.ErrUnknownUser, payer)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := "SCHEDULED-" + uuid.NewRandom().String()
	now := time.Now()

	rec := chain.NewRecord()
	rec.Set("transaction_id", id)
	rec.Set("amount", amount)
	rec.Set("service", description)
	rec.Set("status", StatusScheduled.String())
	rec.Set("created_at", now.Format(timestampLayout))
	rec.Set("execute_at", executeAt)
	rec.Set("from", payer)
	rec.Set("action", "schedule_transaction")

	if err := m.signAndStage(payer, rec); err != nil {
		m.ledger.DropPending()
		return nil, err
	}
	if _, err := m.seal(ctx); err != nil {
		m.ledger.DropPending()
		return nil, err
	}

	tx := &Transaction{
		ID:          id,
		Amount:      amount,
		Description: description,
		Status:      StatusScheduled,
		Payer:       payer,
		CreatedAt:   now,
		ExecuteAt:   executeAt,
	}
	m.transactions[id] = tx
	log.Infof("transaction %s scheduled for %s", id, executeAt)
	return tx.copyForRead(), nil
}
