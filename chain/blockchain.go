package chain

import (
	"context"
	"sync"
	"time"

	"github.com/midpay/midpay/config"
	"github.com/midpay/midpay/errors"
	"github.com/midpay/midpay/util/log"
)

// Blockchain is the append-only block ledger. It has exactly one writer: all
// mutation happens under mu, and Seal serializes proof-of-work with appends so
// block indexes are strictly increasing.
type Blockchain struct {
	mu         sync.RWMutex
	blocks     []*Block
	pending    []*Record
	difficulty uint32
	maxMining  uint64
	store      *Store // nil for a purely in-memory chain
}

// NewBlockchain opens the ledger. If store holds a persisted chain it is
// reloaded and re-verified; otherwise a fresh genesis block is created.
func NewBlockchain(difficulty uint32, maxMiningAttempts uint64, store *Store) (*Blockchain, error) {
	bc := &Blockchain{
		difficulty: difficulty,
		maxMining:  maxMiningAttempts,
		store:      store,
	}

	if store != nil {
		blocks, err := store.LoadChain()
		if err != nil {
			return nil, err
		}
		if len(blocks) > 0 {
			bc.blocks = blocks
			if idx := bc.firstTamperedIndex(); idx >= 0 {
				return nil, errors.NewDetailErr(errors.ErrIntegrityViolation, errors.ErrIntegrityViolation,
					"persisted chain fails verification")
			}
			log.Infof("loaded chain of height %d from store", len(blocks)-1)
			return bc, nil
		}
	}

	genesis := createGenesisBlock()
	if store != nil {
		if err := store.SaveBlock(genesis); err != nil {
			return nil, err
		}
	}
	bc.blocks = []*Block{genesis}
	return bc, nil
}

func createGenesisBlock() *Block {
	b := &Block{
		Index:           0,
		Timestamp:       now(),
		TransactionData: &TxData{Message: config.GenesisMessage},
		PrevHash:        config.GenesisPrevHash,
		Nonce:           0,
	}
	b.Hash, _ = b.CalculateHash()
	return b
}

func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// AppendPending stages a record for inclusion in the next sealed block and
// returns the index that block will have.
func (bc *Blockchain) AppendPending(r *Record) uint64 {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.pending = append(bc.pending, r)
	return uint64(len(bc.blocks))
}

// PendingCount returns the number of currently staged records.
func (bc *Blockchain) PendingCount() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.pending)
}

// DropPending discards all staged records. Used to roll back a batch whose
// transition failed before sealing.
func (bc *Blockchain) DropPending() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.pending = nil
}

// Seal groups every staged record into one block, mines it, appends it and
// clears the stage. With nothing staged it returns ErrNothingStaged and the
// chain is not perturbed. On mining exhaustion or cancellation the staged
// records are kept so the caller may retry.
func (bc *Blockchain) Seal(ctx context.Context, minerID string) (*Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if len(bc.pending) == 0 {
		return nil, errors.NewCodeErr(errors.ErrNothingStaged)
	}

	latest := bc.blocks[len(bc.blocks)-1]
	block := &Block{
		Index:     uint64(len(bc.blocks)),
		Timestamp: now(),
		TransactionData: &TxData{
			Transactions: bc.pending,
			Miner:        minerID,
		},
		PrevHash: latest.Hash,
	}

	if err := MineBlock(ctx, block, bc.difficulty, bc.maxMining); err != nil {
		return nil, err
	}

	if bc.store != nil {
		if err := bc.store.SaveBlock(block); err != nil {
			return nil, err
		}
	}

	bc.blocks = append(bc.blocks, block)
	bc.pending = nil
	log.Infof("block %d sealed, hash %s, %d record(s)", block.Index, block.Hash, len(block.TransactionData.Transactions))
	return block, nil
}

// Height returns the index of the latest block.
func (bc *Blockchain) Height() uint64 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return uint64(len(bc.blocks) - 1)
}

// Len returns the number of blocks including genesis.
func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// Block returns the block at the given index, or nil.
func (bc *Blockchain) Block(index uint64) *Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if index >= uint64(len(bc.blocks)) {
		return nil
	}
	return bc.blocks[index]
}

// Latest returns the most recently sealed block.
func (bc *Blockchain) Latest() *Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blocks[len(bc.blocks)-1]
}

// VerifyChain reports whether the stored chain is byte-for-byte
// self-consistent: every non-genesis hash recomputes correctly and links to
// its parent.
func (bc *Blockchain) VerifyChain() bool {
	_, ok := bc.Verify()
	return ok
}

// Verify walks the chain in index order. It returns (-1, true) on a valid
// chain, or the index of the first tampered block and false.
func (bc *Blockchain) Verify() (int, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if idx := bc.firstTamperedIndex(); idx >= 0 {
		return idx, false
	}
	return -1, true
}

func (bc *Blockchain) firstTamperedIndex() int {
	for i := 1; i < len(bc.blocks); i++ {
		current := bc.blocks[i]
		previous := bc.blocks[i-1]

		recomputed, err := current.CalculateHash()
		if err != nil || current.Hash != recomputed {
			return i
		}
		if current.PrevHash != previous.Hash {
			return i
		}
	}
	return -1
}

// History scans all non-genesis blocks in chain order and returns their
// grouped records in chain-then-insertion order. A non-empty txID filters by
// the embedded transaction_id field.
func (bc *Blockchain) History(txID string) []*Record {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	var records []*Record
	for _, b := range bc.blocks[1:] {
		if b.TransactionData == nil {
			continue
		}
		for _, r := range b.TransactionData.Transactions {
			if txID != "" && r.GetString("transaction_id") != txID {
				continue
			}
			records = append(records, r)
		}
	}
	return records
}
