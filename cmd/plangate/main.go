package main

import (
	"os"

	"github.com/dmelton/plangate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
