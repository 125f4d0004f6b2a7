package escrow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pborman/uuid"

	"github.com/midpay/midpay/bank"
	"github.com/midpay/midpay/chain"
	"github.com/midpay/midpay/common"
	"github.com/midpay/midpay/config"
	"github.com/midpay/midpay/errors"
	"github.com/midpay/midpay/util/log"
	"github.com/midpay/midpay/vault"
)

// BalanceStore is the external balance collaborator. Deltas are assumed
// atomic on the collaborator side; the manager never retries a failed one.
type BalanceStore interface {
	GetBalance(user string) (common.Fixed64, error)
	ApplyDelta(user string, delta common.Fixed64, memo string) error
	Transactions(user string) ([]bank.TxEntry, error)
	HasUser(user string) bool
	CreateUser(user string, initial common.Fixed64) error
}

// Manager is the escrow state machine. Every accepted transition moves
// balances, emits signed records and seals exactly one block; rejected
// transitions never touch the chain.
//
// One mutex serializes all transitions; mining happens inside it, so the
// ledger's strictly-increasing-index invariant holds and two transitions can
// never both leave the same state.
type Manager struct {
	mu            sync.Mutex
	transactions  map[string]*Transaction
	disputes      map[string]*Dispute
	escrowBalance common.Fixed64

	ledger *chain.Blockchain
	bank   BalanceStore
	vault  *vault.Vault

	vaultPath string
	vaultPwd  []byte
}

func NewManager(ledger *chain.Blockchain, balances BalanceStore, v *vault.Vault) (*Manager, error) {
	// the admin principal signs dispute and resolution records
	if err := v.EnsureAccounts(config.AdminPrincipal); err != nil {
		return nil, err
	}
	return &Manager{
		transactions: make(map[string]*Transaction),
		disputes:     make(map[string]*Dispute),
		ledger:       ledger,
		bank:         balances,
		vault:        v,
	}, nil
}

// PersistVault makes the manager write the vault to path whenever it creates
// a signing key, so principals onboarded at runtime survive a restart.
// Without it the vault stays memory only.
func (m *Manager) PersistVault(path string, password []byte) {
	m.vaultPath = path
	m.vaultPwd = password
}

// EscrowBalance returns the aggregate of funds currently held in escrow.
func (m *Manager) EscrowBalance() common.Fixed64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.escrowBalance
}

// Balance returns the user's bank balance.
func (m *Manager) Balance(user string) (common.Fixed64, error) {
	return m.bank.GetBalance(user)
}

// GetTransaction returns a snapshot of the transaction, or
// ErrInvalidTransaction.
func (m *Manager) GetTransaction(id string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, errors.NewCodeErr(errors.ErrInvalidTransaction)
	}
	return tx.copyForRead(), nil
}

// GetDispute returns a snapshot of the dispute, or ErrInvalidDispute.
func (m *Manager) GetDispute(id string) (*Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.disputes[id]
	if !ok {
		return nil, errors.NewCodeErr(errors.ErrInvalidDispute)
	}
	return d.copyForRead(), nil
}

// CreateUser onboards a principal: a bank account with an initial balance and
// a signing keypair in the vault.
func (m *Manager) CreateUser(user string, initial common.Fixed64) error {
	if !m.vault.HasAccount(user) {
		if _, err := m.vault.CreateAccount(user); err != nil {
			return err
		}
		if m.vaultPath != "" {
			if err := m.vault.Save(m.vaultPath, m.vaultPwd); err != nil {
				return err
			}
		}
	}
	return m.bank.CreateUser(user, initial)
}

func newTransactionID() string {
	return uuid.NewRandom().String()
}

// signAndStage has the principal sign the record, then stages it for the next
// seal. The chain is not written until Seal. The signer's name goes into the
// record so integrity checks can find the matching public key later.
func (m *Manager) signAndStage(principal string, rec *chain.Record) error {
	account, err := m.vault.GetAccount(principal)
	if err != nil {
		return err
	}
	rec.Set("signed_by", principal)
	if err := account.SignRecord(rec); err != nil {
		return err
	}
	m.ledger.AppendPending(rec)
	return nil
}

func (m *Manager) seal(ctx context.Context) (*chain.Block, error) {
	return m.ledger.Seal(ctx, config.MinerID)
}

// appliedDelta remembers a balance movement so a failed seal can reverse it.
type appliedDelta struct {
	user   string
	amount common.Fixed64
}

// unwind reverses balance movements applied earlier in a transition whose
// seal failed, drops the staged records and restores the escrow aggregate.
func (m *Manager) unwind(deltas []appliedDelta, escrowDelta common.Fixed64, txID string) {
	for i := len(deltas) - 1; i >= 0; i-- {
		d := deltas[i]
		memo := fmt.Sprintf("Reversal of failed transition [ID: %s]", txID)
		if err := m.bank.ApplyDelta(d.user, -d.amount, memo); err != nil {
			log.Errorf("unwind of %s for %s failed: %v", txID, d.user, err)
		}
	}
	m.escrowBalance -= escrowDelta
	m.ledger.DropPending()
}

// Create initiates an escrow payment: the payer's funds move to escrow and
// the transaction starts in pending. Fails with ErrInsufficientFunds without
// any ledger write if the payer cannot cover the amount.
func (m *Manager) Create(ctx context.Context, payer, payee string, amount common.Fixed64, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, errors.NewDetailErr(errors.ErrInvalidTransaction, errors.ErrInvalidTransaction, "amount must be positive")
	}

	if !m.vault.HasAccount(payer) || !m.bank.HasUser(payee) {
		return nil, errors.NewDetailErr(errors.ErrInvalidParty, errors.ErrInvalidParty,
			fmt.Sprintf("%s -> %s", payer, payee))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	balance, err := m.bank.GetBalance(payer)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, errors.NewDetailErr(errors.ErrInsufficientFunds, errors.ErrInsufficientFunds, payer)
	}

	id := newTransactionID()
	now := time.Now()

	memo := fmt.Sprintf("Payment to escrow for %s [ID: %s]", description, id)
	if err := m.bank.ApplyDelta(payer, -amount, memo); err != nil {
		return nil, err
	}
	m.escrowBalance += amount
	applied := []appliedDelta{{payer, -amount}}

	rec := chain.NewRecord()
	rec.Set("transaction_id", id)
	rec.Set("amount", amount)
	rec.Set("service", description)
	rec.Set("status", StatusPending.String())
	rec.Set("created_at", now.Format(timestampLayout))
	rec.Set("from", payer)
	rec.Set("to", "escrow")

	if err := m.signAndStage(payer, rec); err != nil {
		m.unwind(applied, amount, id)
		return nil, err
	}
	if _, err := m.seal(ctx); err != nil {
		m.unwind(applied, amount, id)
		return nil, err
	}

	tx := &Transaction{
		ID:          id,
		Amount:      amount,
		EscrowHeld:  amount,
		Description: description,
		Status:      StatusPending,
		Payer:       payer,
		Payee:       payee,
		CreatedAt:   now,
	}
	m.transactions[id] = tx
	log.Infof("escrow transaction %s created: %s -> %s, amount %s", id, payer, payee, amount.String())
	return tx.copyForRead(), nil
}

// MarkCompleted is the payee's claim that the service was delivered. Legal
// only from pending.
func (m *Manager) MarkCompleted(ctx context.Context, id string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, errors.NewCodeErr(errors.ErrInvalidTransaction)
	}
	if tx.Status != StatusPending {
		return nil, errors.NewDetailErr(errors.ErrInvalidState, errors.ErrInvalidState,
			fmt.Sprintf("cannot complete from %s", tx.Status))
	}

	now := time.Now()
	rec := chain.NewRecord()
	rec.Set("transaction_id", id)
	rec.Set("status", StatusCompleted.String())
	rec.Set("completed_at", now.Format(timestampLayout))
	rec.Set("completed_by", tx.Payee)
	rec.Set("action", "mark_completed")

	if err := m.signAndStage(tx.Payee, rec); err != nil {
		m.ledger.DropPending()
		return nil, err
	}
	if _, err := m.seal(ctx); err != nil {
		m.ledger.DropPending()
		return nil, err
	}

	tx.Status = StatusCompleted
	tx.CompletedAt = &now
	return tx.copyForRead(), nil
}

// ConfirmCompletion is the payer's confirmation, releasing escrowed funds to
// the payee. Legal only from completed.
func (m *Manager) ConfirmCompletion(ctx context.Context, id string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, errors.NewCodeErr(errors.ErrInvalidTransaction)
	}
	if tx.Status != StatusCompleted {
		return nil, errors.NewDetailErr(errors.ErrInvalidState, errors.ErrInvalidState,
			fmt.Sprintf("cannot release from %s", tx.Status))
	}

	now := time.Now()
	memo := fmt.Sprintf("Payment received for %s [ID: %s]", tx.Description, id)
	if err := m.bank.ApplyDelta(tx.Payee, tx.EscrowHeld, memo); err != nil {
		return nil, err
	}
	m.escrowBalance -= tx.EscrowHeld
	applied := []appliedDelta{{tx.Payee, tx.EscrowHeld}}

	rec := chain.NewRecord()
	rec.Set("transaction_id", id)
	rec.Set("status", StatusReleased.String())
	rec.Set("released_at", now.Format(timestampLayout))
	rec.Set("amount", tx.EscrowHeld)
	rec.Set("from", "escrow")
	rec.Set("to", tx.Payee)
	rec.Set("confirmed_by", tx.Payer)
	rec.Set("action", "release_payment")

	if err := m.signAndStage(tx.Payer, rec); err != nil {
		m.unwind(applied, -tx.EscrowHeld, id)
		return nil, err
	}
	if _, err := m.seal(ctx); err != nil {
		m.unwind(applied, -tx.EscrowHeld, id)
		return nil, err
	}

	tx.Status = StatusReleased
	tx.ReleasedAt = &now
	log.Infof("escrow transaction %s released to %s", id, tx.Payee)
	return tx.copyForRead(), nil
}

// Cancel returns escrowed funds to the payer(s). Legal from any state except
// released (AlreadyReleased) and the other terminal states. Cancelling a
// scheduled transaction moves no funds since none were escrowed.
func (m *Manager) Cancel(ctx context.Context, id string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, errors.NewCodeErr(errors.ErrInvalidTransaction)
	}
	switch tx.Status {
	case StatusReleased:
		return nil, errors.NewCodeErr(errors.ErrAlreadyReleased)
	case StatusCancelled, StatusRefunded:
		return nil, errors.NewDetailErr(errors.ErrInvalidState, errors.ErrInvalidState,
			fmt.Sprintf("cannot cancel from %s", tx.Status))
	}

	now := time.Now()
	var applied []appliedDelta
	var escrowDelta common.Fixed64

	if tx.Status != StatusScheduled {
		// return each payer exactly what it escrowed
		refunds := tx.escrowShares()
		for _, r := range refunds {
			memo := fmt.Sprintf("Refund for cancelled service: %s [ID: %s]", tx.Description, id)
			if err := m.bank.ApplyDelta(r.user, r.amount, memo); err != nil {
				m.unwind(applied, escrowDelta, id)
				return nil, err
			}
			applied = append(applied, appliedDelta{r.user, r.amount})
			m.escrowBalance -= r.amount
			escrowDelta -= r.amount
		}
	}

	rec := chain.NewRecord()
	rec.Set("transaction_id", id)
	rec.Set("status", StatusCancelled.String())
	rec.Set("cancelled_at", now.Format(timestampLayout))
	rec.Set("amount", tx.EscrowHeld)
	rec.Set("from", "escrow")
	rec.Set("to", tx.refundTarget())
	rec.Set("cancelled_by", tx.refundTarget())
	rec.Set("action", "cancel_transaction")

	if err := m.signAndStage(tx.signerForCancel(), rec); err != nil {
		m.unwind(applied, escrowDelta, id)
		return nil, err
	}
	if _, err := m.seal(ctx); err != nil {
		m.unwind(applied, escrowDelta, id)
		return nil, err
	}

	tx.Status = StatusCancelled
	// a cancelled transaction has nothing left in escrow, so its dispute
	// must not stay resolvable
	if d, ok := m.disputes[tx.DisputeID]; ok && d.Status == DisputeOpen {
		d.Status = DisputeResolved
		d.ResolvedAt = &now
		d.Resolution = "cancelled"
		log.Infof("dispute %s closed by cancellation of %s", d.ID, id)
	}
	log.Infof("escrow transaction %s cancelled", id)
	return tx.copyForRead(), nil
}
