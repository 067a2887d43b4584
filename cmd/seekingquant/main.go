package main

import (
	"os"

	"github.com/Tvpower/seekingQuant/cmd/seekingquant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
