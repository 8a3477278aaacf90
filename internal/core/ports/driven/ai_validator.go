package driven

import "github.com/custodia-labs/aska-cli/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing
// connectivity to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by
	// pinging the provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM validates an answer generator configuration by
	// pinging the provider.
	ValidateLLM(config *domain.LLMSettings) error
}
