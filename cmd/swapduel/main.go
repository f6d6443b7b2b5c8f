package main

import (
	"os"

	"github.com/peterkuimelis/swapduel/cmd/swapduel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
