package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	payer     string
	payee     string
	amount    string
	service   string
	parties   string
	executeAt string
	txID      string
)

// payCmd represents the pay command
var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "escrow payment operations",
	Long:  "With midpayc pay, you can open, progress and cancel escrow transactions.",
}

var payCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "open an escrow transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("create_transaction", map[string]interface{}{
			"payer":   payer,
			"payee":   payee,
			"amount":  amount,
			"service": service,
		})
	},
}

var payCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "mark the service as completed (payee side)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("mark_service_completed", map[string]interface{}{
			"transaction_id": txID,
		})
	},
}

var payConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "confirm completion and release funds (payer side)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("confirm_completion", map[string]interface{}{
			"transaction_id": txID,
		})
	},
}

var payCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "cancel a transaction and refund the payer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("cancel_transaction", map[string]interface{}{
			"transaction_id": txID,
		})
	},
}

var payMultiCmd = &cobra.Command{
	Use:   "multi",
	Short: "open a multi-party transaction, last party is the payee",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := strings.Split(parties, ",")
		list := make([]interface{}, 0, len(names))
		for _, n := range names {
			list = append(list, strings.TrimSpace(n))
		}
		return call("create_multi_party_transaction", map[string]interface{}{
			"parties": list,
			"amount":  amount,
			"service": service,
		})
	},
}

var payScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "schedule a future payment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("schedule_transaction", map[string]interface{}{
			"payer":      payer,
			"amount":     amount,
			"service":    service,
			"execute_at": executeAt,
		})
	},
}

func init() {
	rootCmd.AddCommand(payCmd)
	payCmd.AddCommand(payCreateCmd, payCompleteCmd, payConfirmCmd, payCancelCmd, payMultiCmd, payScheduleCmd)

	payCreateCmd.Flags().StringVar(&payer, "payer", "A", "paying user")
	payCreateCmd.Flags().StringVar(&payee, "payee", "B", "receiving user")
	payCreateCmd.Flags().StringVar(&amount, "amount", "", "amount to escrow")
	payCreateCmd.Flags().StringVar(&service, "service", "", "service description")
	payCreateCmd.MarkFlagRequired("amount")

	payCompleteCmd.Flags().StringVar(&txID, "id", "", "transaction id")
	payCompleteCmd.MarkFlagRequired("id")
	payConfirmCmd.Flags().StringVar(&txID, "id", "", "transaction id")
	payConfirmCmd.MarkFlagRequired("id")
	payCancelCmd.Flags().StringVar(&txID, "id", "", "transaction id")
	payCancelCmd.MarkFlagRequired("id")

	payMultiCmd.Flags().StringVar(&parties, "parties", "", "comma separated parties, last one is the payee")
	payMultiCmd.Flags().StringVar(&amount, "amount", "", "total amount, split equally between payers")
	payMultiCmd.Flags().StringVar(&service, "service", "", "service description")
	payMultiCmd.MarkFlagRequired("parties")
	payMultiCmd.MarkFlagRequired("amount")

	payScheduleCmd.Flags().StringVar(&payer, "payer", "", "paying user")
	payScheduleCmd.Flags().StringVar(&amount, "amount", "", "amount to escrow at execution time")
	payScheduleCmd.Flags().StringVar(&service, "service", "", "service description")
	payScheduleCmd.Flags().StringVar(&executeAt, "execute-at", "", "execution timestamp, e.g. 2026-10-01 00:00:00")
	payScheduleCmd.MarkFlagRequired("payer")
	payScheduleCmd.MarkFlagRequired("amount")
	payScheduleCmd.MarkFlagRequired("execute-at")
}
