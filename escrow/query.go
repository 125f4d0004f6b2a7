package escrow

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/midpay/midpay/chain"
	"github.com/midpay/midpay/common"
	"github.com/midpay/midpay/errors"
	"github.com/midpay/midpay/vault"
)

// TransactionStatus pairs the current transaction state with its full audit
// trail from the block ledger.
type TransactionStatus struct {
	Transaction *Transaction    `json:"transaction"`
	History     []*chain.Record `json:"blockchain_history"`
}

// GetTransactionStatus returns the transaction together with every ledger
// record that references it, in chain order.
func (m *Manager) GetTransactionStatus(id string) (*TransactionStatus, error) {
	m.mu.Lock()
	tx, ok := m.transactions[id]
	if !ok {
		m.mu.Unlock()
		return nil, errors.NewCodeErr(errors.ErrInvalidTransaction)
	}
	snapshot := tx.copyForRead()
	m.mu.Unlock()

	return &TransactionStatus{
		Transaction: snapshot,
		History:     m.ledger.History(id),
	}, nil
}

// HistoryFilter narrows TransactionHistory results. Zero values match
// everything.
type HistoryFilter struct {
	User   string
	Status string
	From   time.Time
	To     time.Time
}

// TransactionHistory lists transactions matching the filter, oldest first.
func (m *Manager) TransactionHistory(f HistoryFilter) ([]*Transaction, error) {
	var statusSet bool
	var status Status
	if f.Status != "" {
		parsed, err := ParseStatus(f.Status)
		if err != nil {
			return nil, errors.NewDetailErr(err, errors.ErrInvalidState, "")
		}
		status, statusSet = parsed, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Transaction
	for _, tx := range m.transactions {
		if f.User != "" && !tx.Involves(f.User) {
			continue
		}
		if statusSet && tx.Status != status {
			continue
		}
		if !f.From.IsZero() && tx.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && tx.CreatedAt.After(f.To) {
			continue
		}
		out = append(out, tx.copyForRead())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UserAnalytics summarizes one user's activity across the bank's memo log
// and the block ledger.
type UserAnalytics struct {
	User          string         `json:"user"`
	Balance       common.Fixed64 `json:"balance"`
	TotalSent     common.Fixed64 `json:"total_sent"`
	TotalReceived common.Fixed64 `json:"total_received"`
	SentCount     int            `json:"sent_count"`
	ReceivedCount int            `json:"received_count"`
	LedgerEntries int            `json:"ledger_entries"`
}

// GetUserAnalytics scans every sealed block for records naming the user as
// sender or receiver and joins in the bank's view of the balance.
func (m *Manager) GetUserAnalytics(user string) (*UserAnalytics, error) {
	balance, err := m.bank.GetBalance(user)
	if err != nil {
		return nil, err
	}
	entries, err := m.bank.Transactions(user)
	if err != nil {
		return nil, err
	}

	a := &UserAnalytics{
		User:          user,
		Balance:       balance,
		LedgerEntries: len(entries),
	}
	m.scanRecords(func(r *chain.Record) {
		amount, ok := recordAmount(r, "amount")
		if !ok {
			return
		}
		if r.GetString("from") == user {
			a.TotalSent += amount
			a.SentCount++
		}
		if r.GetString("to") == user {
			a.TotalReceived += amount
			a.ReceivedCount++
		}
	})
	return a, nil
}

// VolumeReport sums escrow inflow over a trailing period.
type VolumeReport struct {
	Period      string         `json:"period"`
	Since       time.Time      `json:"since"`
	TotalVolume common.Fixed64 `json:"total_volume"`
	Count       int            `json:"count"`
}

var reportPeriods = map[string]time.Duration{
	"day":   24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  365 * 24 * time.Hour,
}

// GetVolumeReport totals the funds that entered escrow within the period
// ("day", "week", "month" or "year").
func (m *Manager) GetVolumeReport(period string) (*VolumeReport, error) {
	d, ok := reportPeriods[period]
	if !ok {
		return nil, errors.NewErr("unknown report period " + period)
	}
	since := time.Now().Add(-d)

	report := &VolumeReport{Period: period, Since: since}
	m.scanRecords(func(r *chain.Record) {
		if r.GetString("to") != "escrow" {
			return
		}
		created, err := time.ParseInLocation(timestampLayout, r.GetString("created_at"), time.Local)
		if err != nil || created.Before(since) {
			return
		}
		amount, ok := recordAmount(r, "amount")
		if !ok {
			return
		}
		report.TotalVolume += amount
		report.Count++
	})
	return report, nil
}

// IntegrityReport is the result of a full chain and signature audit.
type IntegrityReport struct {
	Valid        bool   `json:"valid"`
	Height       uint64 `json:"height"`
	FirstInvalid int    `json:"first_invalid_index"`
	Reason       string `json:"reason,omitempty"`
}

// VerifyIntegrity walks the whole chain twice: once for hash linkage and
// proof-of-work, once verifying every record signature against the signer's
// key in the vault.
func (m *Manager) VerifyIntegrity() *IntegrityReport {
	report := &IntegrityReport{
		Valid:        true,
		Height:       m.ledger.Height(),
		FirstInvalid: -1,
	}

	if idx, ok := m.ledger.Verify(); !ok {
		report.Valid = false
		report.FirstInvalid = idx
		report.Reason = errors.ErrIntegrityViolation.Error()
		return report
	}

	for i := 0; i < m.ledger.Len(); i++ {
		b := m.ledger.Block(uint64(i))
		for _, r := range b.TransactionData.Transactions {
			signer := r.GetString("signed_by")
			if signer == "" {
				report.Valid = false
				report.FirstInvalid = i
				report.Reason = "record without signer at block " + b.Hash
				return report
			}
			account, err := m.vault.GetAccount(signer)
			if err != nil || !vault.VerifyRecord(account.PubKey(), r) {
				report.Valid = false
				report.FirstInvalid = i
				report.Reason = errors.ErrSignatureInvalid.Error()
				return report
			}
		}
	}
	return report
}

// scanRecords visits every record in every sealed block, oldest first.
func (m *Manager) scanRecords(visit func(*chain.Record)) {
	for i := 0; i < m.ledger.Len(); i++ {
		b := m.ledger.Block(uint64(i))
		if b == nil || b.TransactionData == nil {
			continue
		}
		for _, r := range b.TransactionData.Transactions {
			visit(r)
		}
	}
}

// recordAmount reads a numeric field from a record. Amounts are Fixed64 when
// the record was built in this process and json.Number after a reload.
func recordAmount(r *chain.Record, key string) (common.Fixed64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case common.Fixed64:
		return n, true
	case json.Number:
		f, err := common.StringToFixed64(n.String())
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := common.StringToFixed64(n)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
