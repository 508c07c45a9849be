package main

import (
	"os"

	"netinv.sh/cmd/netctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
