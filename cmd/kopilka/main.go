package main

import (
	"os"

	"github.com/kopilka-dev/kopilka/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
