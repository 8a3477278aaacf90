package services

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyChunkWindow   = "chunking.window_size"
	keyChunkOverlap  = "chunking.overlap"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedDims     = "embedding.dimensions"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyIndexBackend  = "index.backend"
	keyIndexPath     = "index.path"
	keyTopK          = "retrieval.top_k"
	keyThreshold     = "retrieval.threshold"
	keyRecencyWindow = "retrieval.recency_window_days"
	keyRecencyBoost  = "retrieval.recency_max_boost"
	keyBoostProse    = "retrieval.boost.prose"
	keyBoostTabular  = "retrieval.boost.tabular"
	keyLocalEnabled  = "local.enabled"
	keyLocalRoot     = "local.root"
	keyLocalIgnore   = "local.ignore"
	keyDriveEnabled  = "drive.enabled"
	keyDriveCreds    = "drive.credentials_file"
	keyDriveToken    = "drive.token_file"
)

// settingsKeys lists every recognised key in display order.
var settingsKeys = []string{
	keyChunkWindow, keyChunkOverlap,
	keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedDims,
	keyLLMProvider, keyLLMModel, keyLLMBaseURL,
	keyIndexBackend, keyIndexPath,
	keyTopK, keyThreshold, keyRecencyWindow, keyRecencyBoost,
	keyBoostProse, keyBoostTabular,
	keyLocalEnabled, keyLocalRoot, keyLocalIgnore,
	keyDriveEnabled, keyDriveCreds, keyDriveToken,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, filling anything the
// store does not hold from the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Chunking: domain.ChunkingSettings{
			WindowSize: s.getInt(keyChunkWindow, defaults.Chunking.WindowSize),
			Overlap:    s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
		},
		Index: domain.IndexSettings{
			Backend: s.getBackend(keyIndexBackend, defaults.Index.Backend),
			Path:    s.getString(keyIndexPath, s.defaultIndexPath()),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:              s.getInt(keyTopK, defaults.Retrieval.TopK),
			Threshold:         s.getFloat(keyThreshold, defaults.Retrieval.Threshold),
			RecencyWindowDays: s.getInt(keyRecencyWindow, defaults.Retrieval.RecencyWindowDays),
			RecencyMaxBoost:   s.getFloat(keyRecencyBoost, defaults.Retrieval.RecencyMaxBoost),
			TypeBoosts: map[domain.SourceCategory]float64{
				domain.CategoryProse:   s.getFloat(keyBoostProse, defaults.Retrieval.TypeBoosts[domain.CategoryProse]),
				domain.CategoryTabular: s.getFloat(keyBoostTabular, defaults.Retrieval.TypeBoosts[domain.CategoryTabular]),
			},
		},
		Local: domain.LocalSourceSettings{
			Enabled: s.getBool(keyLocalEnabled, defaults.Local.Enabled),
			Root:    s.configStore.GetString(keyLocalRoot),
			Ignore:  s.getStrings(keyLocalIgnore, defaults.Local.Ignore),
		},
		Drive: domain.DriveSourceSettings{
			Enabled:         s.getBool(keyDriveEnabled, defaults.Drive.Enabled),
			CredentialsFile: s.configStore.GetString(keyDriveCreds),
			TokenFile:       s.configStore.GetString(keyDriveToken),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyChunkWindow:   settings.Chunking.WindowSize,
		keyChunkOverlap:  settings.Chunking.Overlap,
		keyEmbedProvider: settings.Embedding.Provider.String(),
		keyEmbedModel:    settings.Embedding.Model,
		keyEmbedBaseURL:  settings.Embedding.BaseURL,
		keyEmbedDims:     settings.Embedding.Dimensions,
		keyLLMProvider:   settings.LLM.Provider.String(),
		keyLLMModel:      settings.LLM.Model,
		keyLLMBaseURL:    settings.LLM.BaseURL,
		keyIndexBackend:  settings.Index.Backend.String(),
		keyIndexPath:     settings.Index.Path,
		keyTopK:          settings.Retrieval.TopK,
		keyThreshold:     settings.Retrieval.Threshold,
		keyRecencyWindow: settings.Retrieval.RecencyWindowDays,
		keyRecencyBoost:  settings.Retrieval.RecencyMaxBoost,
		keyBoostProse:    settings.Retrieval.TypeBoosts[domain.CategoryProse],
		keyBoostTabular:  settings.Retrieval.TypeBoosts[domain.CategoryTabular],
		keyLocalEnabled:  settings.Local.Enabled,
		keyLocalRoot:     settings.Local.Root,
		keyLocalIgnore:   settings.Local.Ignore,
		keyDriveEnabled:  settings.Drive.Enabled,
		keyDriveCreds:    settings.Drive.CredentialsFile,
		keyDriveToken:    settings.Drive.TokenFile,
	}

	for _, key := range settingsKeys {
		if err := s.configStore.Set(key, values[key]); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// GetValue reads one configuration value by its dotted key.
func (s *SettingsService) GetValue(key string) (any, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	switch key {
	case keyChunkWindow:
		return settings.Chunking.WindowSize, nil
	case keyChunkOverlap:
		return settings.Chunking.Overlap, nil
	case keyEmbedProvider:
		return settings.Embedding.Provider.String(), nil
	case keyEmbedModel:
		return settings.Embedding.Model, nil
	case keyEmbedBaseURL:
		return settings.Embedding.BaseURL, nil
	case keyEmbedDims:
		return settings.Embedding.Dimensions, nil
	case keyLLMProvider:
		return settings.LLM.Provider.String(), nil
	case keyLLMModel:
		return settings.LLM.Model, nil
	case keyLLMBaseURL:
		return settings.LLM.BaseURL, nil
	case keyIndexBackend:
		return settings.Index.Backend.String(), nil
	case keyIndexPath:
		return settings.Index.Path, nil
	case keyTopK:
		return settings.Retrieval.TopK, nil
	case keyThreshold:
		return settings.Retrieval.Threshold, nil
	case keyRecencyWindow:
		return settings.Retrieval.RecencyWindowDays, nil
	case keyRecencyBoost:
		return settings.Retrieval.RecencyMaxBoost, nil
	case keyBoostProse:
		return settings.Retrieval.TypeBoosts[domain.CategoryProse], nil
	case keyBoostTabular:
		return settings.Retrieval.TypeBoosts[domain.CategoryTabular], nil
	case keyLocalEnabled:
		return settings.Local.Enabled, nil
	case keyLocalRoot:
		return settings.Local.Root, nil
	case keyLocalIgnore:
		return settings.Local.Ignore, nil
	case keyDriveEnabled:
		return settings.Drive.Enabled, nil
	case keyDriveCreds:
		return settings.Drive.CredentialsFile, nil
	case keyDriveToken:
		return settings.Drive.TokenFile, nil
	default:
		return nil, fmt.Errorf("%w: unknown setting %q", domain.ErrNotFound, key)
	}
}

// SetValue parses and writes one configuration value by its dotted
// key. The resulting settings must still validate; nothing is
// persisted otherwise.
//
//nolint:gocyclo // One case per key, trivially flat.
func (s *SettingsService) SetValue(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case keyChunkWindow:
		settings.Chunking.WindowSize, err = parseIntValue(key, value)
	case keyChunkOverlap:
		settings.Chunking.Overlap, err = parseIntValue(key, value)
	case keyEmbedProvider:
		settings.Embedding.Provider = domain.AIProvider(value)
	case keyEmbedModel:
		settings.Embedding.Model = value
	case keyEmbedBaseURL:
		settings.Embedding.BaseURL = value
	case keyEmbedDims:
		settings.Embedding.Dimensions, err = parseIntValue(key, value)
	case keyLLMProvider:
		settings.LLM.Provider = domain.AIProvider(value)
	case keyLLMModel:
		settings.LLM.Model = value
	case keyLLMBaseURL:
		settings.LLM.BaseURL = value
	case keyIndexBackend:
		settings.Index.Backend = domain.IndexBackend(value)
	case keyIndexPath:
		settings.Index.Path = value
	case keyTopK:
		settings.Retrieval.TopK, err = parseIntValue(key, value)
	case keyThreshold:
		settings.Retrieval.Threshold, err = parseFloatValue(key, value)
	case keyRecencyWindow:
		settings.Retrieval.RecencyWindowDays, err = parseIntValue(key, value)
	case keyRecencyBoost:
		settings.Retrieval.RecencyMaxBoost, err = parseFloatValue(key, value)
	case keyBoostProse:
		settings.Retrieval.TypeBoosts[domain.CategoryProse], err = parseFloatValue(key, value)
	case keyBoostTabular:
		settings.Retrieval.TypeBoosts[domain.CategoryTabular], err = parseFloatValue(key, value)
	case keyLocalEnabled:
		settings.Local.Enabled, err = parseBoolValue(key, value)
	case keyLocalRoot:
		settings.Local.Root = value
	case keyLocalIgnore:
		settings.Local.Ignore = parseListValue(value)
	case keyDriveEnabled:
		settings.Drive.Enabled, err = parseBoolValue(key, value)
	case keyDriveCreds:
		settings.Drive.CredentialsFile = value
	case keyDriveToken:
		settings.Drive.TokenFile = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrNotFound, key)
	}
	if err != nil {
		return err
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	return s.Save(settings)
}

// Keys lists every recognised configuration key.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsKeys))
	copy(keys, settingsKeys)
	return keys
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current answer generator configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// defaultIndexPath puts the index next to the config file.
func (s *SettingsService) defaultIndexPath() string {
	return filepath.Join(filepath.Dir(s.configStore.Path()), "index")
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

// getProvider and getBackend keep an unrecognised stored value as is.
// Validate rejects it with ErrConfig; a typo must never silently turn
// into the default.

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}

func (s *SettingsService) getBackend(key string, defaultVal domain.IndexBackend) domain.IndexBackend {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return domain.IndexBackend(val)
}

// Value parsers for SetValue input.

func parseIntValue(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, value)
	}
	return n, nil
}

func parseFloatValue(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
	}
	return f, nil
}

func parseBoolValue(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s expects true or false, got %q", domain.ErrInvalidInput, key, value)
	}
	return b, nil
}

func parseListValue(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
