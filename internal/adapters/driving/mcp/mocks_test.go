package mcp

import (
	"context"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	stats  []domain.CorpusStats
	err    error

	askedQuestion string
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.askedQuestion = question
	return m.answer, m.err
}

func (m *mockAskService) Stats(_ context.Context) ([]domain.CorpusStats, error) {
	return m.stats, m.err
}
