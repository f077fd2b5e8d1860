package main

import (
	"os"

	"github.com/zemerlab/zemer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
