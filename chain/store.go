package chain

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/midpay/midpay/chain/db"
)

var (
	blockPrefix = []byte("b:")
	heightKey   = []byte("height")
)

// Store persists sealed blocks to leveldb, keyed by index, plus the current
// chain height.
type Store struct {
	st db.IStore
}

func NewStore(path string) (*Store, error) {
	st, err := db.NewLevelDBStore(path)
	if err != nil {
		return nil, err
	}
	return &Store{st: st}, nil
}

func (s *Store) Close() error {
	return s.st.Close()
}

func blockKey(index uint64) []byte {
	key := make([]byte, len(blockPrefix)+8)
	copy(key, blockPrefix)
	binary.BigEndian.PutUint64(key[len(blockPrefix):], index)
	return key
}

// SaveBlock writes the block and the new height in one batch.
func (s *Store) SaveBlock(b *Block) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}

	height := make([]byte, 8)
	binary.BigEndian.PutUint64(height, b.Index)

	s.st.NewBatch()
	s.st.BatchPut(blockKey(b.Index), data)
	s.st.BatchPut(heightKey, height)
	return s.st.BatchCommit()
}

// LoadChain reads all persisted blocks in index order. An empty store returns
// an empty slice.
func (s *Store) LoadChain() ([]*Block, error) {
	has, err := s.st.Has(heightKey)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}

	raw, err := s.st.Get(heightKey)
	if err != nil {
		return nil, err
	}
	height := binary.BigEndian.Uint64(raw)

	blocks := make([]*Block, 0, height+1)
	for i := uint64(0); i <= height; i++ {
		data, err := s.st.Get(blockKey(i))
		if err != nil {
			return nil, fmt.Errorf("load block %d: %v", i, err)
		}
		b := new(Block)
		if err := json.Unmarshal(data, b); err != nil {
			return nil, fmt.Errorf("decode block %d: %v", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
