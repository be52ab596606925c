package main

import (
	"os"

	"github.com/devbotsxyz/xcresult-annotate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
