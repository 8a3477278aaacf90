// Package ai provides factory functions for creating provider and
// index adapters from resolved settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/aska-cli/internal/adapters/driven/embedding/ollama"
	chromemindex "github.com/custodia-labs/aska-cli/internal/adapters/driven/index/chromem"
	memoryindex "github.com/custodia-labs/aska-cli/internal/adapters/driven/index/memory"
	sqliteindex "github.com/custodia-labs/aska-cli/internal/adapters/driven/index/sqlite"
	ollamallm "github.com/custodia-labs/aska-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services bundles the provider and index adapters one assembly needs.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Index     driven.VectorIndex
}

// Close releases all resources held by Services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
	if s.Index != nil {
		s.Index.Close()
	}
}

// CreateServices builds the embedding service, answer generator and
// vector index for validated settings. No connectivity check happens
// here; callers that need one ping the services they use.
func CreateServices(settings *domain.AppSettings) (*Services, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrConfig)
	}

	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		embedding.Close()
		return nil, err
	}

	index, err := CreateVectorIndex(&settings.Index)
	if err != nil {
		embedding.Close()
		llm.Close()
		return nil, err
	}

	return &Services{Embedding: embedding, LLM: llm, Index: index}, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("embedding service unreachable (%w); check that Ollama is running at %s",
			err, settings.BaseURL)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an answer generator and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("answer generator unreachable (%w); check that Ollama is running at %s",
			err, settings.BaseURL)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for settings changes, checking the provider before it is relied on.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an answer generator configuration by creating a service and pinging it.
// This is intended for settings changes, checking the provider before it is relied on.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service for the configured provider.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings are required", domain.ErrConfig)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfig, settings.Provider)
	}
}

// CreateLLMService creates the answer generator for the configured provider.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: LLM settings are required", domain.ErrConfig)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrConfig, settings.Provider)
	}
}

// CreateVectorIndex creates the vector index for the configured backend.
func CreateVectorIndex(settings *domain.IndexSettings) (driven.VectorIndex, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: index settings are required", domain.ErrConfig)
	}

	switch settings.Backend {
	case domain.IndexBackendChromem:
		return chromemindex.New(chromemindex.Config{Path: settings.Path})

	case domain.IndexBackendSQLite:
		return sqliteindex.New(settings.Path)

	case domain.IndexBackendMemory:
		return memoryindex.NewVectorIndex(), nil

	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrConfig, settings.Backend)
	}
}
