package main

import (
	"os"

	"github.com/jcii/hunt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
