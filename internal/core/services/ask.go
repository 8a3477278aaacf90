package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driving"
	"github.com/custodia-labs/aska-cli/internal/logger"
)

// Ensure AskService implements the interfaces.
var (
	_ driving.AskService      = (*AskService)(nil)
	_ driven.PromptStoreAware = (*AskService)(nil)
)

// User-facing texts for the two non-generated outcomes.
const (
	noResultsAnswer = "No sufficiently relevant documents were found for this question."

	generationFallback = "Unable to get a response from the local model. " +
		"Check that Ollama is running and the model is available."
)

// answerPrompt is the grounding prompt handed to the generator. The
// context is always the single best retrieved chunk.
const answerPrompt = `Answer the following question using the context below:

Question: %s

Context: %s

Your answer:`

// answerOptions is the generation policy for grounded answers.
var answerOptions = driven.GenerateOptions{
	MaxTokens:   1024,
	Temperature: 0.2,
}

// AskService answers questions grounded in the indexed corpora.
type AskService struct {
	retrieval   *RetrievalEngine
	reranker    *Reranker
	llmService  driven.LLMService
	vectorIndex driven.VectorIndex
	trackers    map[domain.Corpus]driven.IngestionTracker
	corpora     []domain.Corpus
	topK        int
	promptStore driven.PromptStore
}

// NewAskService creates an ask service querying the given corpora.
// The trackers and vector index back Stats; retrieval and reranking
// back Ask.
func NewAskService(
	retrieval *RetrievalEngine,
	reranker *Reranker,
	llmService driven.LLMService,
	vectorIndex driven.VectorIndex,
	trackers map[domain.Corpus]driven.IngestionTracker,
	corpora []domain.Corpus,
	topK int,
) *AskService {
	return &AskService{
		retrieval:   retrieval,
		reranker:    reranker,
		llmService:  llmService,
		vectorIndex: vectorIndex,
		trackers:    trackers,
		corpora:     corpora,
		topK:        topK,
	}
}

// SetPromptStore sets the prompt store for loading a customised answer
// prompt. Without one the built-in template is used.
func (s *AskService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// answerTemplate returns the grounding template, preferring a
// customised prompt when a store is configured and readable.
func (s *AskService) answerTemplate() string {
	if s.promptStore == nil {
		return answerPrompt
	}
	template, err := s.promptStore.Load(driven.PromptAsk)
	if err != nil || template == "" {
		logger.Warn("Custom ask prompt unavailable, using default: %v", err)
		return answerPrompt
	}
	return template
}

// Ask answers one question. A blank question or a question matching
// nothing yields the "no relevant documents" answer, never an error;
// the retrieval engine signals both as ErrNoResults. An embedding
// failure is returned for the surface to show. A generation failure
// degrades to the fallback text with the retrieved results still
// attached, so the user keeps the excerpt even when the model is
// down.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Question")
	logger.Debug("Question: %q", question)

	question = strings.TrimSpace(question)

	candidates, vector, err := s.retrieval.Retrieve(ctx, question, s.corpora)
	if errors.Is(err, domain.ErrNoResults) {
		logger.Info("No candidates retrieved")
		return &domain.Answer{Question: question, Text: noResultsAnswer}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	results := s.reranker.Rerank(vector, candidates, time.Now())
	if len(results) > s.topK && s.topK > 0 {
		results = results[:s.topK]
	}
	top := results[0]
	logger.Info("Top result: base=%.3f final=%.3f low_confidence=%t",
		top.BaseScore, top.FinalScore, top.LowConfidence)

	answer := &domain.Answer{
		Question:      question,
		LowConfidence: top.LowConfidence,
		Results:       results,
	}

	prompt := fmt.Sprintf(s.answerTemplate(), question, top.Text)
	text, err := s.llmService.Generate(ctx, prompt, answerOptions)
	if err != nil {
		logger.Warn("Answer generation failed: %v", err)
		answer.Text = generationFallback
		return answer, nil
	}

	answer.Text = strings.TrimSpace(text)
	answer.Grounded = true
	return answer, nil
}

// Stats reports the tracked source count and indexed chunk count for
// every configured corpus. A corpus whose tracker or collection
// cannot be read reports zeros rather than failing the whole call.
func (s *AskService) Stats(ctx context.Context) ([]domain.CorpusStats, error) {
	stats := make([]domain.CorpusStats, 0, len(s.corpora))
	for _, corpus := range s.corpora {
		entry := domain.CorpusStats{Corpus: corpus}

		if tracker, ok := s.trackers[corpus]; ok {
			records, err := tracker.Load(ctx)
			if err != nil {
				logger.Warn("Stats: load tracker for %s: %v", corpus, err)
			} else {
				entry.Sources = len(records)
			}
		}

		count, err := s.vectorIndex.Count(ctx, corpus)
		if err != nil {
			logger.Warn("Stats: count chunks for %s: %v", corpus, err)
		} else {
			entry.Chunks = count
		}

		stats = append(stats, entry)
	}
	return stats, nil
}
