package main

import (
	"os"

	"github.com/dshills/codeinsights/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
