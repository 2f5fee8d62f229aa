package main

import (
	"os"

	"github.com/mohamedkhairy/signal-monitor/cmd/signal-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
