package escrow

import (
	"time"

	"github.com/midpay/midpay/common"
)

const timestampLayout = "2006-01-02 15:04:05"

// Transaction is the state machine's record of one escrow payment. The block
// ledger is an append-only audit trail of the same facts; this table is the
// source of truth for current status.
type Transaction struct {
	ID          string         `json:"id"`
	Amount      common.Fixed64 `json:"amount"`
	Description string         `json:"service"`
	Status      Status         `json:"status"`
	Payer       string         `json:"payer,omitempty"`
	Payee       string         `json:"payee"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	ReleasedAt  *time.Time     `json:"released_at,omitempty"`
	DisputeID   string         `json:"dispute_id,omitempty"`
	Parties     []string       `json:"parties,omitempty"`
	Share       common.Fixed64 `json:"share,omitempty"`
	ExecuteAt   string         `json:"execute_at,omitempty"`

	// EscrowHeld is the amount actually moved into escrow. Equals Amount for
	// single-payer transactions; for multi-party splits with a remainder it
	// is the sum of the per-payer shares. Zero for scheduled transactions.
	EscrowHeld common.Fixed64 `json:"-"`
}

// payers lists the principals that funded the escrow, in debit order.
func (t *Transaction) payers() []string {
	if len(t.Parties) > 0 {
		return t.Parties[:len(t.Parties)-1]
	}
	return []string{t.Payer}
}

type refundShare struct {
	user   string
	amount common.Fixed64
}

// escrowShares lists what each payer put into escrow, so a refund returns
// exactly the debited amounts. The shares sum to EscrowHeld.
func (t *Transaction) escrowShares() []refundShare {
	if len(t.Parties) > 0 {
		shares := make([]refundShare, 0, len(t.Parties)-1)
		for _, p := range t.payers() {
			shares = append(shares, refundShare{p, t.Share})
		}
		return shares
	}
	return []refundShare{{t.Payer, t.EscrowHeld}}
}

// refundTarget names the principal a cancellation record points at. For
// multi-party transactions the record names the first payer; the actual
// refunds are itemized per payer in the balance memos.
func (t *Transaction) refundTarget() string {
	return t.payers()[0]
}

// signerForCancel picks who signs a cancellation record. The payer cancels
// its own transactions; multi-party cancellations are signed by the first
// payer.
func (t *Transaction) signerForCancel() string {
	return t.payers()[0]
}

// Involves reports whether the user participates in the transaction as
// payer, payee or multi-party member.
func (t *Transaction) Involves(user string) bool {
	if t.Payer == user || t.Payee == user {
		return true
	}
	for _, p := range t.Parties {
		if p == user {
			return true
		}
	}
	return false
}

// copyForRead returns a shallow snapshot safe to hand outside the manager's
// lock.
func (t *Transaction) copyForRead() *Transaction {
	cp := *t
	if t.Parties != nil {
		cp.Parties = append([]string(nil), t.Parties...)
	}
	return &cp
}

// Dispute tracks a contested transaction until an administrator resolves it.
type Dispute struct {
	ID            string        `json:"id"`
	TransactionID string        `json:"transaction_id"`
	Reason        string        `json:"reason"`
	Status        DisputeStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
	Resolution    string        `json:"resolution,omitempty"`
}

func (d *Dispute) copyForRead() *Dispute {
	cp := *d
	return &cp
}
