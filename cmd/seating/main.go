package main

import (
	"os"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
