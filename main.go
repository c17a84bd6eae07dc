package main

import (
	"os"

	"github.com/calcforge/uscfprep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
