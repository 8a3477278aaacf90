// Command aska answers questions about local and Google Drive
// documents using a local vector index and Ollama.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/aska-cli/internal/adapters/driving/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
