package main

import (
	"os"

	"go-chi-calculator/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
