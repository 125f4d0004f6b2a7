package main

import (
	"log"

	cmd "github.com/midpay/midpay/cmd/midpayd/commands"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("Panic: %+v", r)
		}
	}()

	cmd.Execute()
}
