package main

import (
	"os"

	"github.com/psds-microservice/ticket-desk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log := cmd.NewLogger()
		log.Error("ticket-desk exited", "error", err)
		log.Sync()
		os.Exit(1)
	}
}
