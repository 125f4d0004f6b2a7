package vault

import (
	"fmt"
	"sync"

	"github.com/midpay/midpay/util/log"
)

// Vault owns the principal-to-keypair mapping. Keys are generated once at
// principal creation and never rotated.
type Vault struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewVault() *Vault {
	return &Vault{
		accounts: make(map[string]*Account),
	}
}

// CreateAccount generates a keypair for a new principal. Key generation
// failure is fatal for the caller's operation.
func (v *Vault) CreateAccount(id string) (*Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.accounts[id]; ok {
		return nil, fmt.Errorf("account %q already exists", id)
	}

	account, err := NewAccount(id)
	if err != nil {
		return nil, err
	}
	v.accounts[id] = account
	log.Infof("generated keypair for principal %q", id)
	return account, nil
}

func (v *Vault) GetAccount(id string) (*Account, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	account, ok := v.accounts[id]
	if !ok {
		return nil, fmt.Errorf("no account for principal %q", id)
	}
	return account, nil
}

func (v *Vault) HasAccount(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.accounts[id]
	return ok
}

// EnsureAccounts creates any of the given principals that do not yet have a
// keypair.
func (v *Vault) EnsureAccounts(ids ...string) error {
	for _, id := range ids {
		if v.HasAccount(id) {
			continue
		}
		if _, err := v.CreateAccount(id); err != nil {
			return err
		}
	}
	return nil
}

// Principals returns all known principal ids.
func (v *Vault) Principals() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	ids := make([]string, 0, len(v.accounts))
	for id := range v.accounts {
		ids = append(ids, id)
	}
	return ids
}
