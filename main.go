package main

import (
	"os"

	"github.com/rmaia/dispatchboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
