package main

import (
	"os"

	"github.com/sitelinkhq/sitelink/cmd/sitelink/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
