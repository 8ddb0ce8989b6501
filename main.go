package main

import (
	"os"

	"github.com/bugrca/commentlens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
