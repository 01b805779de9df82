package main

import (
	"os"

	"github.com/conneroisu/wikicore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
