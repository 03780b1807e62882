package main

import (
	"os"

	"github.com/mesa-labs/mesa/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
