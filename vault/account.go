package vault

import (
	"crypto/rsa"

	"github.com/midpay/midpay/chain"
	"github.com/midpay/midpay/crypto"
)

// Account is one principal's signing identity.
type Account struct {
	ID         string
	PrivateKey *rsa.PrivateKey
}

func NewAccount(id string) (*Account, error) {
	priv, err := crypto.GenKeyPair()
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:         id,
		PrivateKey: priv,
	}, nil
}

func NewAccountWithPrivateKey(id string, priv *rsa.PrivateKey) *Account {
	return &Account{
		ID:         id,
		PrivateKey: priv,
	}
}

func (a *Account) PubKey() *rsa.PublicKey {
	return &a.PrivateKey.PublicKey
}

// SignRecord signs the record's canonical form (signature field excluded) and
// attaches the hex-encoded signature.
func (a *Account) SignRecord(r *chain.Record) error {
	data, err := r.SigningBytes()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(a.PrivateKey, data)
	if err != nil {
		return err
	}
	r.SetSignature(sig)
	return nil
}

// VerifyRecord checks a record's signature against the claimed signer's
// public key. Missing or malformed signatures fail verification, they never
// error.
func VerifyRecord(pub *rsa.PublicKey, r *chain.Record) bool {
	sig, ok := r.Signature()
	if !ok {
		return false
	}
	data, err := r.SigningBytes()
	if err != nil {
		return false
	}
	return crypto.Verify(pub, data, sig)
}
