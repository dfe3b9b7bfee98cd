package main

import (
	"os"

	"github.com/envelope-zero/forecast/cmd/forecast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
