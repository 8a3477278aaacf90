package cli

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/aska-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/aska-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/aska-cli/internal/adapters/driven/tracker/jsonfile"
	"github.com/custodia-labs/aska-cli/internal/chunker"
	"github.com/custodia-labs/aska-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/aska-cli/internal/connectors/googledrive"
	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
	"github.com/custodia-labs/aska-cli/internal/core/services"
	"github.com/custodia-labs/aska-cli/internal/extractors"
)

// wireServices builds the service graph behind the commands. The
// settings service is assigned as soon as the config store is open so
// `aska config` works even when the rest of the wiring fails, for
// example when no corpus root has been configured yet.
func wireServices() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	svcs, err := ai.CreateServices(settings)
	if err != nil {
		return fmt.Errorf("creating AI services: %w", err)
	}

	windower, err := chunker.New(
		chunker.WithWindowSize(settings.Chunking.WindowSize),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		return fmt.Errorf("creating chunker: %w", err)
	}

	dataDir := filepath.Dir(configStore.Path())
	corpora := settings.EnabledCorpora()

	connectors := make(map[domain.Corpus]driven.Connector, len(corpora))
	trackers := make(map[domain.Corpus]driven.IngestionTracker, len(corpora))
	for _, corpus := range corpora {
		tracker, err := jsonfile.NewTracker(dataDir, corpus)
		if err != nil {
			return fmt.Errorf("opening %s tracker: %w", corpus, err)
		}
		trackers[corpus] = tracker

		switch corpus {
		case domain.CorpusLocal:
			connectors[corpus] = filesystem.New(settings.Local.Root, settings.Local.Ignore)
		case domain.CorpusDrive:
			connectors[corpus] = googledrive.New(settings.Drive.CredentialsFile, settings.Drive.TokenFile)
		}
	}

	ingestService = services.NewIngestionPipeline(
		connectors,
		trackers,
		extractors.NewDefaultRegistry(),
		windower,
		svcs.Embedding,
		svcs.Index,
		corpora,
	)

	retrieval := services.NewRetrievalEngine(svcs.Index, svcs.Embedding, settings.Retrieval.TopK)
	reranker := services.NewReranker(settings.Retrieval)
	ask := services.NewAskService(
		retrieval,
		reranker,
		svcs.LLM,
		svcs.Index,
		trackers,
		corpora,
		settings.Retrieval.TopK,
	)

	promptStore, err := file.NewPromptStore(filepath.Join(dataDir, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}
	ask.SetPromptStore(promptStore)

	askService = ask
	return nil
}
