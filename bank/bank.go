package bank

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/midpay/midpay/chain/db"
	"github.com/midpay/midpay/common"
	"github.com/midpay/midpay/errors"
	"github.com/midpay/midpay/util/log"
)

const timestampLayout = "2006-01-02 15:04:05"

var userPrefix = []byte("u:")

// TxEntry is one line of a user's memo log.
type TxEntry struct {
	Amount      common.Fixed64 `json:"amount"`
	Description string         `json:"description"`
	Timestamp   string         `json:"timestamp"`
}

type accountData struct {
	Balance      common.Fixed64 `json:"balance"`
	Transactions []TxEntry      `json:"transactions"`
}

// Store is the balance-store collaborator: per-user balances plus a memo log
// of every applied delta, persisted in leveldb. Each ApplyDelta writes the
// balance and the log line in one leveldb put, so the collaborator-side
// update is atomic.
type Store struct {
	mu sync.Mutex
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

func userKey(user string) []byte {
	return append(userPrefix, []byte(user)...)
}

func (s *Store) load(user string) (*accountData, error) {
	raw, err := s.st.Get(userKey(user))
	if err != nil {
		return nil, errors.NewDetailErr(errors.ErrUnknownUser, errors.ErrUnknownUser, user)
	}
	data := new(accountData)
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) save(user string, data *accountData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.st.Put(userKey(user), raw)
}

// HasUser reports whether the user has an account.
func (s *Store) HasUser(user string) bool {
	has, err := s.st.Has(userKey(user))
	return err == nil && has
}

// CreateUser opens an account with an initial balance.
func (s *Store) CreateUser(user string, initial common.Fixed64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.HasUser(user) {
		return errors.NewDetailErr(errors.ErrDuplicateUser, errors.ErrDuplicateUser, user)
	}
	return s.save(user, &accountData{Balance: initial, Transactions: []TxEntry{}})
}

// GetBalance returns the user's current balance.
func (s *Store) GetBalance(user string) (common.Fixed64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(user)
	if err != nil {
		return 0, err
	}
	return data.Balance, nil
}

// ApplyDelta applies a signed balance movement with a memo line. The caller
// is responsible for funds checks; the store applies what it is told.
func (s *Store) ApplyDelta(user string, delta common.Fixed64, memo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(user)
	if err != nil {
		return err
	}

	data.Balance += delta
	data.Transactions = append(data.Transactions, TxEntry{
		Amount:      delta,
		Description: memo,
		Timestamp:   time.Now().Format(timestampLayout),
	})

	if err := s.save(user, data); err != nil {
		return err
	}
	log.Debugf("balance %s delta %s: %s", user, delta.String(), memo)
	return nil
}

// Transactions returns the user's memo log in append order.
func (s *Store) Transactions(user string) ([]TxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(user)
	if err != nil {
		return nil, err
	}
	return data.Transactions, nil
}

// Seed opens any missing accounts with the configured initial balances.
func (s *Store) Seed(accounts map[string]string) error {
	for user, amount := range accounts {
		if s.HasUser(user) {
			continue
		}
		initial, err := common.StringToFixed64(amount)
		if err != nil {
			return err
		}
		if err := s.CreateUser(user, initial); err != nil {
			return err
		}
		log.Infof("seeded account %q with balance %s", user, initial.String())
	}
	return nil
}
