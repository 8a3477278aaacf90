package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show indexed corpus statistics",
	Long:  `Shows the number of tracked sources and indexed chunks per enabled corpus.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	ctx := context.Background()

	stats, err := askService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if len(stats) == 0 {
		cmd.Println("No corpora enabled.")
		return nil
	}

	cmd.Println("Indexed corpora:")
	for _, s := range stats {
		cmd.Printf("  %s: %d sources, %d chunks\n", s.Corpus.Description(), s.Sources, s.Chunks)
	}

	return nil
}
