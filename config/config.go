package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
)

const (
	Version = "1.0.0"

	// supported difficulty range, in leading zero hex digits
	MinDifficulty = 1
	MaxDifficulty = 8

	// genesis block constants
	GenesisPrevHash = "0"
	GenesisMessage  = "Genesis Block"

	// principal who signs dispute and resolution records
	AdminPrincipal = "admin"

	// miner identifier stamped into every sealed block
	MinerID = "midpay-system"

	defaultConfigFile = "config.json"
)

type Configuration struct {
	HttpJsonPort      uint16            `json:"HttpJsonPort"`
	LogLevel          int               `json:"LogLevel"`
	LogPath           string            `json:"LogPath"`
	MaxLogFileSize    uint32            `json:"MaxLogSize"` // in MB
	ChainDBPath       string            `json:"ChainDBPath"`
	BankDBPath        string            `json:"BankDBPath"`
	VaultFile         string            `json:"VaultFile"`
	Difficulty        uint32            `json:"Difficulty"`
	MaxMiningAttempts uint64            `json:"MaxMiningAttempts"`
	RPCKeys           []string          `json:"RPCKeys"`
	RPCRateLimit      float64           `json:"RPCRateLimit"`
	RPCRateBurst      int               `json:"RPCRateBurst"`
	SeedAccounts      map[string]string `json:"SeedAccounts"`
}

// ConfigFile overrides the default config file location when set from the
// command line.
var ConfigFile string

var Parameters = &Configuration{
	HttpJsonPort:      30336,
	LogLevel:          1,
	LogPath:           "log",
	MaxLogFileSize:    20,
	ChainDBPath:       "data/chain",
	BankDBPath:        "data/bank",
	VaultFile:         "vault.dat",
	Difficulty:        2,
	MaxMiningAttempts: 1 << 24,
	RPCRateLimit:      1024,
	RPCRateBurst:      1024,
	SeedAccounts: map[string]string{
		"A": "1000",
		"B": "500",
	},
}

// Init loads the config file over the defaults. A missing config file is not
// an error; anything else is.
func Init() error {
	file := defaultConfigFile
	if f := os.Getenv("MIDPAY_CONFIG"); f != "" {
		file = f
	}
	if ConfigFile != "" {
		file = ConfigFile
	}

	data, err := ioutil.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return Parameters.verify()
		}
		return fmt.Errorf("read config file: %v", err)
	}

	if err := json.Unmarshal(data, Parameters); err != nil {
		return fmt.Errorf("parse config file %s: %v", file, err)
	}

	return Parameters.verify()
}

func (config *Configuration) verify() error {
	if config.Difficulty < MinDifficulty || config.Difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty out of range [%d, %d]: %d", MinDifficulty, MaxDifficulty, config.Difficulty)
	}
	if config.MaxMiningAttempts == 0 {
		return fmt.Errorf("MaxMiningAttempts must be positive")
	}
	if config.HttpJsonPort == 0 {
		return fmt.Errorf("HttpJsonPort must be positive")
	}
	return nil
}
