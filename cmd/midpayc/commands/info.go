package commands

import (
	"github.com/spf13/cobra"
)

var (
	user    string
	status  string
	from    string
	to      string
	period  string
	initial string
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "query transactions, balances and analytics",
}

var infoStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "transaction status with its ledger audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("get_transaction_status", map[string]interface{}{
			"transaction_id": txID,
		})
	},
}

var infoHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "list transactions, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{}
		if user != "" {
			params["user"] = user
		}
		if status != "" {
			params["status"] = status
		}
		if from != "" {
			params["from"] = from
		}
		if to != "" {
			params["to"] = to
		}
		return call("get_transaction_history", params)
	},
}

var infoBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "user balance and the escrow aggregate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("get_balance", map[string]interface{}{"user": user})
	},
}

var infoAnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "per user ledger activity summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("get_user_analytics", map[string]interface{}{"user": user})
	},
}

var infoVolumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "escrow inflow over a trailing period",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("get_volume_report", map[string]interface{}{"period": period})
	},
}

// chainCmd represents the chain command
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "block ledger operations",
}

var chainVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "audit chain hashes, proof-of-work and signatures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("verify_blockchain", nil)
	},
}

var chainDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "print the whole sealed chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("get_blockchain", nil)
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "adduser",
	Short: "onboard a user with an initial balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("create_user", map[string]interface{}{
			"user":            user,
			"initial_balance": initial,
		})
	},
}

func init() {
	rootCmd.AddCommand(infoCmd, chainCmd, userCreateCmd)
	infoCmd.AddCommand(infoStatusCmd, infoHistoryCmd, infoBalanceCmd, infoAnalyticsCmd, infoVolumeCmd)
	chainCmd.AddCommand(chainVerifyCmd, chainDumpCmd)

	infoStatusCmd.Flags().StringVar(&txID, "id", "", "transaction id")
	infoStatusCmd.MarkFlagRequired("id")

	infoHistoryCmd.Flags().StringVar(&user, "user", "", "only transactions involving this user")
	infoHistoryCmd.Flags().StringVar(&status, "status", "", "only transactions in this status")
	infoHistoryCmd.Flags().StringVar(&from, "from", "", "created at or after, e.g. 2026-01-01 00:00:00")
	infoHistoryCmd.Flags().StringVar(&to, "to", "", "created at or before")

	infoBalanceCmd.Flags().StringVar(&user, "user", "", "user name")
	infoBalanceCmd.MarkFlagRequired("user")

	infoAnalyticsCmd.Flags().StringVar(&user, "user", "", "user name")
	infoAnalyticsCmd.MarkFlagRequired("user")

	infoVolumeCmd.Flags().StringVar(&period, "period", "month", "day, week, month or year")

	userCreateCmd.Flags().StringVar(&user, "user", "", "user name")
	userCreateCmd.Flags().StringVar(&initial, "balance", "0", "initial balance")
	userCreateCmd.MarkFlagRequired("user")
}
