// Package main is the entry point for meli-lister.
package main

import (
	"os"

	"github.com/donaldgifford/meli-lister/cmd/meli-lister/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
