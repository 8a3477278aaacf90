// Package cli provides the command-line interface for aska.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aska-cli/internal/core/ports/driving"
	"github.com/custodia-labs/aska-cli/internal/logger"
)

// version is reported by the version command. SetVersion overrides it
// from the build.
var version = "dev"

// Services wired at startup. Commands nil-check the one they need so
// that config and version keep working when wiring fails.
var (
	askService      driving.AskService
	ingestService   driving.IngestService
	settingsService driving.SettingsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "aska",
	Short: "Ask questions about your local and Google Drive documents",
	Long: `aska ingests local files and Google Drive documents into a local
vector index and answers questions grounded in their content.
Embeddings and answers come from a local Ollama instance.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Run wires the application services and executes the CLI. A wiring
// failure is reported but does not abort: the config and version
// commands must stay usable so the user can fix the problem.
func Run() error {
	if err := wireServices(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: startup incomplete: %v\n", err)
	}
	return Execute()
}
