package main

import (
	"os"

	"github.com/epicexcelsior/awaken-long-tail-chains/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
