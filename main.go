package main

import (
	"os"

	"github.com/phishguard-labs/phishguard-cli/internal/adapters/driving/cli"
)

func main() {
	os.Exit(cli.Execute())
}
