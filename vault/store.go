package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io/ioutil"

	"github.com/midpay/midpay/common"
	"github.com/midpay/midpay/crypto"
	"github.com/midpay/midpay/util"
)

const (
	VaultIVLength        = 16
	VaultMasterKeyLength = 32
	VaultStoreVersion    = "1.0"
)

// vaultData is the on-disk layout: an AES-CBC encrypted master key under a
// password-derived key, and every account's PEM key encrypted under the
// master key.
type vaultData struct {
	Version      string            `json:"Version"`
	IV           string            `json:"IV"`
	MasterKey    string            `json:"MasterKey"`
	PasswordHash string            `json:"PasswordHash"`
	Accounts     map[string]string `json:"Accounts"`
}

// Save writes the vault to path encrypted under password.
func (v *Vault) Save(path string, password []byte) error {
	passwordKey := crypto.ToAesKey(password)
	pwdhash := sha256.Sum256(passwordKey)

	iv := util.RandomBytes(VaultIVLength)
	masterKey := util.RandomBytes(VaultMasterKeyLength)

	encryptedMasterKey, err := crypto.AesEncrypt(masterKey, passwordKey, iv)
	if err != nil {
		return err
	}

	data := &vaultData{
		Version:      VaultStoreVersion,
		IV:           common.BytesToHexString(iv),
		MasterKey:    common.BytesToHexString(encryptedMasterKey),
		PasswordHash: common.BytesToHexString(pwdhash[:]),
		Accounts:     make(map[string]string),
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	for id, account := range v.accounts {
		pemKey, err := crypto.MarshalPrivateKey(account.PrivateKey)
		if err != nil {
			return err
		}
		encrypted, err := crypto.AesEncrypt(pemKey, masterKey, iv)
		if err != nil {
			return err
		}
		data.Accounts[id] = common.BytesToHexString(encrypted)
	}

	out, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, out, 0600)
}

// LoadVault reads an encrypted vault file. A wrong password is detected by
// the stored password hash before any key material is touched.
func LoadVault(path string, password []byte) (*Vault, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data := new(vaultData)
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, err
	}

	passwordKey := crypto.ToAesKey(password)
	pwdhash := sha256.Sum256(passwordKey)
	storedHash, err := common.HexStringToBytes(data.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(pwdhash[:], storedHash) {
		return nil, errors.New("wrong vault password")
	}

	iv, err := common.HexStringToBytes(data.IV)
	if err != nil {
		return nil, err
	}
	encryptedMasterKey, err := common.HexStringToBytes(data.MasterKey)
	if err != nil {
		return nil, err
	}
	masterKey, err := crypto.AesDecrypt(encryptedMasterKey, passwordKey, iv)
	if err != nil {
		return nil, err
	}

	v := NewVault()
	for id, encHex := range data.Accounts {
		encrypted, err := common.HexStringToBytes(encHex)
		if err != nil {
			return nil, err
		}
		pemKey, err := crypto.AesDecrypt(encrypted, masterKey, iv)
		if err != nil {
			return nil, err
		}
		priv, err := crypto.ParsePrivateKey(pemKey)
		if err != nil {
			return nil, err
		}
		v.accounts[id] = NewAccountWithPrivateKey(id, priv)
	}
	return v, nil
}

// OpenVault loads the vault file if it exists, otherwise starts a fresh one.
func OpenVault(path string, password []byte) (*Vault, error) {
	if !common.FileExisted(path) {
		return NewVault(), nil
	}
	return LoadVault(path, password)
}
