// Package main provides the entry point for the xtree CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/benz9527/xtree/cmd/xtree/commands"
)

func main() {
	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
