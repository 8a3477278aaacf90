package domain

import "fmt"

// AIProvider identifies an AI service provider for embeddings or
// answer generation. The pipeline is built around one local,
// stateful provider processed strictly sequentially.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	return p == AIProviderOllama
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// IndexBackend selects the vector index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendChromem is the embedded persistent vector DB.
	IndexBackendChromem IndexBackend = "chromem"

	// IndexBackendSQLite stores vectors as blobs in SQLite and
	// scans them with brute-force cosine.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMemory keeps everything in process memory.
	// Nothing survives exit; intended for tests and throwaway runs.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendChromem, IndexBackendSQLite, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendChromem:
		return "Chromem (embedded, persistent)"
	case IndexBackendSQLite:
		return "SQLite (blob storage, exact scan)"
	case IndexBackendMemory:
		return "Memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings holds the word-window parameters.
type ChunkingSettings struct {
	// WindowSize is the number of words per chunk.
	WindowSize int

	// Overlap is the number of words shared by adjacent chunks.
	Overlap int
}

// Validate checks the window parameters. Violations are ErrConfig
// and fatal at startup.
func (c ChunkingSettings) Validate() error {
	return ValidateChunkWindow(c.WindowSize, c.Overlap)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// Dimensions is the expected vector size. A vector of any other
	// size coming back from the provider is a configuration anomaly.
	Dimensions int
}

// Validate checks the embedding configuration.
func (e EmbeddingSettings) Validate() error {
	if !e.Provider.IsValid() {
		return fmt.Errorf("%w: unsupported embedding provider %q", ErrConfig, e.Provider)
	}
	if e.Model == "" {
		return fmt.Errorf("%w: embedding model is required", ErrConfig)
	}
	if e.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be positive, got %d", ErrConfig, e.Dimensions)
	}
	return nil
}

// LLMSettings holds answer generator configuration.
type LLMSettings struct {
	// Provider is the answer generation provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string
}

// Validate checks the answer generator configuration.
func (l LLMSettings) Validate() error {
	if !l.Provider.IsValid() {
		return fmt.Errorf("%w: unsupported LLM provider %q", ErrConfig, l.Provider)
	}
	if l.Model == "" {
		return fmt.Errorf("%w: LLM model is required", ErrConfig)
	}
	return nil
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend

	// Path is the on-disk location for persistent backends.
	Path string
}

// Validate checks the index configuration.
func (i IndexSettings) Validate() error {
	if !i.Backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", ErrConfig, i.Backend)
	}
	if i.Backend != IndexBackendMemory && i.Path == "" {
		return fmt.Errorf("%w: index path is required for backend %q", ErrConfig, i.Backend)
	}
	return nil
}

// RetrievalSettings holds query-time behaviour.
type RetrievalSettings struct {
	// TopK is the number of candidates fetched per query.
	TopK int

	// Threshold is the similarity below which a result is flagged
	// low confidence. Compared against the unboosted base score.
	Threshold float64

	// RecencyWindowDays is the age in days beyond which the recency
	// boost is zero.
	RecencyWindowDays int

	// RecencyMaxBoost is the boost for a freshly ingested chunk,
	// decaying linearly to zero across the window.
	RecencyMaxBoost float64

	// TypeBoosts maps source categories to additive score bonuses.
	// Categories absent from the table contribute zero.
	TypeBoosts map[SourceCategory]float64
}

// Validate checks the retrieval configuration.
func (r RetrievalSettings) Validate() error {
	if r.TopK <= 0 {
		return fmt.Errorf("%w: retrieval top_k must be positive, got %d", ErrConfig, r.TopK)
	}
	if r.RecencyWindowDays < 0 {
		return fmt.Errorf("%w: recency window must not be negative, got %d", ErrConfig, r.RecencyWindowDays)
	}
	return nil
}

// LocalSourceSettings configures the local filesystem corpus.
type LocalSourceSettings struct {
	// Enabled switches the corpus on.
	Enabled bool

	// Root is the directory scanned for documents.
	Root string

	// Ignore holds glob patterns for names to skip during the scan.
	Ignore []string
}

// DriveSourceSettings configures the Google Drive corpus.
type DriveSourceSettings struct {
	// Enabled switches the corpus on.
	Enabled bool

	// CredentialsFile is the OAuth client secret JSON path.
	CredentialsFile string

	// TokenFile is the stored OAuth token JSON path.
	TokenFile string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Chunking holds the word-window parameters.
	Chunking ChunkingSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds answer generator settings.
	LLM LLMSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Retrieval holds query-time settings.
	Retrieval RetrievalSettings

	// Local configures the local filesystem corpus.
	Local LocalSourceSettings

	// Drive configures the Google Drive corpus.
	Drive DriveSourceSettings
}

// Validate checks every settings group. The first violation wins;
// all violations are ErrConfig and fatal at startup.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if err := s.Embedding.Validate(); err != nil {
		return err
	}
	if err := s.LLM.Validate(); err != nil {
		return err
	}
	if err := s.Index.Validate(); err != nil {
		return err
	}
	return s.Retrieval.Validate()
}

// EnabledCorpora returns the corpora switched on in settings,
// local first.
func (s AppSettings) EnabledCorpora() []Corpus {
	var out []Corpus
	if s.Local.Enabled {
		out = append(out, CorpusLocal)
	}
	if s.Drive.Enabled {
		out = append(out, CorpusDrive)
	}
	return out
}

// DefaultAppSettings returns settings with sensible defaults:
// 200-word windows with 50-word overlap, local Ollama for both
// embeddings and answers, the persistent chromem index, and the
// default rerank policy. The local corpus root and the Drive
// credentials must still be configured by the user.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			WindowSize: 200,
			Overlap:    50,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "nomic-embed-text",
			BaseURL:    "http://localhost:11434",
			Dimensions: 768,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    "llama3.1:latest",
			BaseURL:  "http://localhost:11434",
		},
		Index: IndexSettings{
			Backend: IndexBackendChromem,
		},
		Retrieval: RetrievalSettings{
			TopK:              5,
			Threshold:         0.2,
			RecencyWindowDays: 7,
			RecencyMaxBoost:   0.1,
			TypeBoosts: map[SourceCategory]float64{
				CategoryProse:   0.05,
				CategoryTabular: 0.03,
			},
		},
		Local: LocalSourceSettings{
			Enabled: true,
			Ignore:  []string{".*"},
		},
		Drive: DriveSourceSettings{
			Enabled: false,
		},
	}
}
