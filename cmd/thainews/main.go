package main

import (
	"os"

	"github.com/thuanndbxvp/Thai-news/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
