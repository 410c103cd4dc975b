// Command synastry is the local CLI: it computes readings in process from
// chart JSON files, without an API server.
package main

import (
	"os"

	"github.com/cosmichub/synastry/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
