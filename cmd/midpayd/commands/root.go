package commands

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/midpay/midpay/api/httpjson"
	"github.com/midpay/midpay/bank"
	"github.com/midpay/midpay/chain"
	"github.com/midpay/midpay/config"
	"github.com/midpay/midpay/escrow"
	"github.com/midpay/midpay/util/log"
	"github.com/midpay/midpay/util/password"
	"github.com/midpay/midpay/vault"
)

const shutdownTimeout = 10 * time.Second

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "midpayd",
	Version: config.Version,
	Short:   "midpayd - The MidPay escrow payment daemon",
	Long:    "",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := midpayMain(); err != nil {
			log.Error(err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&config.ConfigFile, "config", "", "config file name")
	rootCmd.Flags().StringVar(&config.Parameters.LogPath, "log", config.Parameters.LogPath, "directory where your log file will be generated")
	rootCmd.Flags().StringVar(&config.Parameters.ChainDBPath, "chaindb", config.Parameters.ChainDBPath, "directory where the block ledger will be stored")
	rootCmd.Flags().StringVar(&config.Parameters.BankDBPath, "bankdb", config.Parameters.BankDBPath, "directory where account balances will be stored")
	rootCmd.Flags().StringVar(&config.Parameters.VaultFile, "vault", config.Parameters.VaultFile, "vault file holding signing keys")
	rootCmd.Flags().StringVarP(&password.Passwd, "passwd", "p", "", "Password of your vault file")

	rootCmd.Flags().MarkHidden("passwd")
}

func midpayMain() error {
	if err := config.Init(); err != nil {
		return err
	}
	if err := log.Init(); err != nil {
		return err
	}
	log.Infof("midpayd %s starting", config.Version)

	pwd, err := password.GetVaultPassword()
	if err != nil {
		return err
	}
	v, err := vault.OpenVault(config.Parameters.VaultFile, pwd)
	if err != nil {
		return err
	}

	chainStore, err := chain.NewStore(config.Parameters.ChainDBPath)
	if err != nil {
		return err
	}
	defer chainStore.Close()

	ledger, err := chain.NewBlockchain(config.Parameters.Difficulty, config.Parameters.MaxMiningAttempts, chainStore)
	if err != nil {
		return err
	}
	log.Infof("block ledger open at height %d", ledger.Height())

	balances, err := bank.NewStore(config.Parameters.BankDBPath)
	if err != nil {
		return err
	}
	defer balances.Close()

	if err := balances.Seed(config.Parameters.SeedAccounts); err != nil {
		return err
	}

	manager, err := escrow.NewManager(ledger, balances, v)
	if err != nil {
		return err
	}
	for user := range config.Parameters.SeedAccounts {
		if err := v.EnsureAccounts(user); err != nil {
			return err
		}
	}
	if err := v.Save(config.Parameters.VaultFile, pwd); err != nil {
		return err
	}
	manager.PersistVault(config.Parameters.VaultFile, pwd)

	rpcServer := httpjson.NewServer(manager, ledger)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- rpcServer.Start()
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-signalChan:
		log.Infof("received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rpcServer.Stop(ctx); err != nil {
		log.Errorf("rpc shutdown: %v", err)
	}
	return nil
}
