package escrow

import (
	"context"
	"fmt"
	"time"

	"github.com/pborman/uuid"

	"github.com/midpay/midpay/chain"
	"github.com/midpay/midpay/common"
	"github.com/midpay/midpay/config"
	"github.com/midpay/midpay/errors"
	"github.com/midpay/midpay/util/log"
)

// CreateDispute freezes a transaction pending administrative review. Legal
// from pending or completed; the escrowed funds stay put.
func (m *Manager) CreateDispute(ctx context.Context, txID, reason string) (*Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[txID]
	if !ok {
		return nil, errors.NewCodeErr(errors.ErrInvalidTransaction)
	}
	if tx.Status != StatusPending && tx.Status != StatusCompleted {
		return nil, errors.NewDetailErr(errors.ErrInvalidState, errors.ErrInvalidState,
			fmt.Sprintf("cannot dispute from %s", tx.Status))
	}

	id := "D-" + uuid.NewRandom().String()
	now := time.Now()

	rec := chain.NewRecord()
	rec.Set("transaction_id", txID)
	rec.Set("status", StatusDisputed.String())
	rec.Set("dispute_id", id)
	rec.Set("reason", reason)
	rec.Set("disputed_at", now.Format(timestampLayout))
	rec.Set("action", "create_dispute")

	if err := m.signAndStage(config.AdminPrincipal, rec); err != nil {
		m.ledger.DropPending()
		return nil, err
	}
	if _, err := m.seal(ctx); err != nil {
		m.ledger.DropPending()
		return nil, err
	}

	d := &Dispute{
		ID:            id,
		TransactionID: txID,
		Reason:        reason,
		Status:        DisputeOpen,
		CreatedAt:     now,
	}
	m.disputes[id] = d
	tx.Status = StatusDisputed
	tx.DisputeID = id
	log.Infof("dispute %s opened on transaction %s: %s", id, txID, reason)
	return d.copyForRead(), nil
}

// ResolveDispute closes a dispute by either refunding the payer(s) or
// releasing the funds to the payee. The resolution record is signed by the
// admin principal.
func (m *Manager) ResolveDispute(ctx context.Context, disputeID, resolution string) (*Dispute, error) {
	res, err := ParseResolution(resolution)
	if err != nil {
		return nil, errors.NewDetailErr(err, errors.ErrInvalidResolution, "")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.disputes[disputeID]
	if !ok {
		return nil, errors.NewCodeErr(errors.ErrInvalidDispute)
	}
	if d.Status != DisputeOpen {
		return nil, errors.NewCodeErr(errors.ErrDisputeNotOpen)
	}
	tx, ok := m.transactions[d.TransactionID]
	if !ok {
		return nil, errors.NewCodeErr(errors.ErrInvalidTransaction)
	}
	// the funds a resolution moves are only held while the transaction is
	// still disputed
	if tx.Status != StatusDisputed {
		return nil, errors.NewDetailErr(errors.ErrInvalidState, errors.ErrInvalidState,
			fmt.Sprintf("cannot resolve dispute on %s transaction", tx.Status))
	}

	now := time.Now()
	var applied []appliedDelta
	var escrowDelta common.Fixed64
	var action, target string
	var final Status

	switch res {
	case ResolutionRefund:
		action, final = "refund_to_payer", StatusRefunded
		target = tx.refundTarget()
		for _, r := range tx.escrowShares() {
			memo := fmt.Sprintf("Refund from dispute resolution [Dispute: %s]", disputeID)
			if err := m.bank.ApplyDelta(r.user, r.amount, memo); err != nil {
				m.unwind(applied, escrowDelta, d.TransactionID)
				return nil, err
			}
			applied = append(applied, appliedDelta{r.user, r.amount})
			m.escrowBalance -= r.amount
			escrowDelta -= r.amount
		}
	case ResolutionRelease:
		action, final = "release_to_payee", StatusReleased
		target = tx.Payee
		memo := fmt.Sprintf("Payment released from dispute resolution [Dispute: %s]", disputeID)
		if err := m.bank.ApplyDelta(tx.Payee, tx.EscrowHeld, memo); err != nil {
			return nil, err
		}
		applied = append(applied, appliedDelta{tx.Payee, tx.EscrowHeld})
		m.escrowBalance -= tx.EscrowHeld
		escrowDelta -= tx.EscrowHeld
	}

	rec := chain.NewRecord()
	rec.Set("dispute_id", disputeID)
	rec.Set("transaction_id", d.TransactionID)
	rec.Set("resolution", res.String())
	rec.Set("resolved_at", now.Format(timestampLayout))
	rec.Set("amount", tx.EscrowHeld)
	rec.Set("from", "escrow")
	rec.Set("to", target)
	rec.Set("action", action)

	if err := m.signAndStage(config.AdminPrincipal, rec); err != nil {
		m.unwind(applied, escrowDelta, d.TransactionID)
		return nil, err
	}
	if _, err := m.seal(ctx); err != nil {
		m.unwind(applied, escrowDelta, d.TransactionID)
		return nil, err
	}

	tx.Status = final
	if final == StatusReleased {
		tx.ReleasedAt = &now
	}
	d.Status = DisputeResolved
	d.ResolvedAt = &now
	d.Resolution = res.String()
	log.Infof("dispute %s resolved: %s", disputeID, res)
	return d.copyForRead(), nil
}
