package main

import (
	"os"

	"github.com/pankajredekar/lemonmenu/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
