package main

import (
	cmd "github.com/midpay/midpay/cmd/midpayc/commands"
)

func main() {
	cmd.Execute()
}
