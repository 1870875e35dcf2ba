package main

import (
	"os"

	"github.com/reviewer-cli/reviewer/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
