// Package main is the entry point for the pharmaseek CLI.
package main

import (
	"os"

	"github.com/pharmaseek/pharmaseek/cmd/pharmaseek/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
