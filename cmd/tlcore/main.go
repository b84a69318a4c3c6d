package main

import (
	"os"

	"github.com/anatolykoptev/go-timelines/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
