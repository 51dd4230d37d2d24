package main

import (
	"os"

	"github.com/scanprep-labs/scanprep/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
