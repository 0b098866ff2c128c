package main

import (
	"os"

	"github.com/aescanero/dago-node-analyzer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
