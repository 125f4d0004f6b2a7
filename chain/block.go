package chain

import (
	"github.com/midpay/midpay/crypto"
)

// TxData is the payload of a block: the grouped signed records plus the miner
// identifier, or the fixed genesis message.
type TxData struct {
	Message      string    `json:"message,omitempty"`
	Transactions []*Record `json:"transactions,omitempty"`
	Miner        string    `json:"miner,omitempty"`
}

func (t *TxData) CanonicalFields() map[string]interface{} {
	fields := make(map[string]interface{}, 2)
	if t.Message != "" {
		fields["message"] = t.Message
	}
	if t.Transactions != nil {
		txns := make([]interface{}, len(t.Transactions))
		for i, r := range t.Transactions {
			txns[i] = r
		}
		fields["transactions"] = txns
		fields["miner"] = t.Miner
	}
	return fields
}

// Block is one sealed unit of the ledger. Immutable once appended; the mining
// loop mutates Nonce and Hash only during construction.
type Block struct {
	Index           uint64  `json:"index"`
	Timestamp       float64 `json:"timestamp"`
	TransactionData *TxData `json:"transaction_data"`
	PrevHash        string  `json:"previous_hash"`
	Nonce           uint64  `json:"nonce"`
	Hash            string  `json:"hash"`
}

// headerFields is everything the block hash covers. The stored hash itself is
// excluded.
func (b *Block) headerFields() map[string]interface{} {
	return map[string]interface{}{
		"index":            b.Index,
		"timestamp":        b.Timestamp,
		"transaction_data": b.TransactionData,
		"previous_hash":    b.PrevHash,
		"nonce":            b.Nonce,
	}
}

// CalculateHash recomputes the block hash from its stored fields.
func (b *Block) CalculateHash() (string, error) {
	data, err := crypto.CanonicalMarshal(b.headerFields())
	if err != nil {
		return "", err
	}
	return crypto.Sha256Hex(data), nil
}
