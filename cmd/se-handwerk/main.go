package main

import (
	"os"

	"github.com/Susa-Sek/se-handwerk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
