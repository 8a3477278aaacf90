package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

var (
	ingestCorpus string
	ingestWatch  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documents into the vector index",
	Long: `Scans the configured corpora, extracts text from new and changed
sources, chunks and embeds it, and writes the chunks to the vector
index. Unchanged sources are skipped, so repeat runs are fast.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCorpus, "corpus", "all", "corpus to ingest (local, drive or all)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep watching the local corpus and re-ingest on change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	corpus := domain.Corpus(ingestCorpus)
	if ingestCorpus != "all" && !corpus.IsValid() {
		return fmt.Errorf("unknown corpus %q (expected local, drive or all)", ingestCorpus)
	}

	ctx := context.Background()

	if ingestCorpus == "all" {
		reports, err := ingestService.IngestAll(ctx)
		for _, report := range reports {
			printIngestReport(cmd, report)
		}
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
	} else {
		report, err := ingestService.Ingest(ctx, corpus)
		if report != nil {
			printIngestReport(cmd, report)
		}
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
	}

	if ingestWatch {
		return watchLocal(cmd)
	}

	return nil
}

// watchLocal re-ingests the local corpus whenever its files change.
// Only the filesystem connector can watch; watching "all" therefore
// means watching the local corpus.
func watchLocal(cmd *cobra.Command) error {
	cmd.Println("Watching for changes. Press Ctrl+C to stop.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := ingestService.Watch(ctx, domain.CorpusLocal)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("Watch stopped.")
	return nil
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("%s: %d discovered, %d unchanged, %d ingested, %d chunks indexed (%s)\n",
		report.Corpus.Description(), report.Discovered, report.Unchanged,
		report.Ingested, report.ChunksIndexed, report.Duration.Round(time.Millisecond))

	for _, failure := range report.Failures {
		cmd.Printf("  skipped %s at %s: %s\n", failure.SourceID, failure.Stage, failure.Reason)
	}
}
