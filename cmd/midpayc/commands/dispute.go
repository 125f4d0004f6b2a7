package commands

import (
	"github.com/spf13/cobra"
)

var (
	disputeID  string
	reason     string
	resolution string
)

// disputeCmd represents the dispute command
var disputeCmd = &cobra.Command{
	Use:   "dispute",
	Short: "dispute operations",
	Long:  "With midpayc dispute, you can contest a transaction and resolve it.",
}

var disputeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "open a dispute on a transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("create_dispute", map[string]interface{}{
			"transaction_id": txID,
			"reason":         reason,
		})
	},
}

var disputeResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "resolve an open dispute with refund or release",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call("resolve_dispute", map[string]interface{}{
			"dispute_id": disputeID,
			"resolution": resolution,
		})
	},
}

func init() {
	rootCmd.AddCommand(disputeCmd)
	disputeCmd.AddCommand(disputeCreateCmd, disputeResolveCmd)

	disputeCreateCmd.Flags().StringVar(&txID, "id", "", "transaction id")
	disputeCreateCmd.Flags().StringVar(&reason, "reason", "", "why the transaction is contested")
	disputeCreateCmd.MarkFlagRequired("id")

	disputeResolveCmd.Flags().StringVar(&disputeID, "id", "", "dispute id")
	disputeResolveCmd.Flags().StringVar(&resolution, "resolution", "", "refund or release")
	disputeResolveCmd.MarkFlagRequired("id")
	disputeResolveCmd.MarkFlagRequired("resolution")
}
