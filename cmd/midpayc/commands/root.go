package commands

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/midpay/midpay/api/httpjson/client"
	"github.com/midpay/midpay/config"
)

// Globals
var (
	ip     string
	port   string
	apiKey string
)

var rootCmd = &cobra.Command{
	Use:     "midpayc",
	Version: config.Version,
	Short:   "midpayc - A cli tool for the MidPay escrow daemon",
	Long:    "",
}

// Execute function
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&ip, "ip", "localhost", "daemon ip address")
	rootCmd.PersistentFlags().StringVar(&port, "port", strconv.Itoa(int(config.Parameters.HttpJsonPort)), "daemon json rpc port")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("MIDPAY_API_KEY"), "api key sent with every request")
}

// Address function
func Address() string {
	return "http://" + net.JoinHostPort(ip, port)
}

// FormatOutput function
func FormatOutput(o []byte) error {
	var out bytes.Buffer
	err := json.Indent(&out, o, "", "\t")
	if err != nil {
		return err
	}
	out.Write([]byte("\n"))
	_, err = out.WriteTo(os.Stdout)

	return err
}

// call invokes the method and pretty prints the result.
func call(method string, params map[string]interface{}) error {
	result, err := client.CallResult(Address(), apiKey, method, params)
	if err != nil {
		return err
	}
	return FormatOutput(result)
}
