package main

import (
	"os"

	"threadboard/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
