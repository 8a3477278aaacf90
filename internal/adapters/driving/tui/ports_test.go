package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// MockAskService implements driving.AskService for testing.
type MockAskService struct {
	AskFunc   func(ctx context.Context, question string) (*domain.Answer, error)
	StatsFunc func(ctx context.Context) ([]domain.CorpusStats, error)
}

func (m *MockAskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return &domain.Answer{Question: question}, nil
}

func (m *MockAskService) Stats(ctx context.Context) ([]domain.CorpusStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return nil, nil
}

func TestNewPorts(t *testing.T) {
	ask := &MockAskService{}

	ports := NewPorts(ask)

	require.NotNil(t, ports)
	assert.Equal(t, ask, ports.Ask)
}

func TestPorts_Validate_AllSet(t *testing.T) {
	ports := &Ports{
		Ask: &MockAskService{},
	}

	err := ports.Validate()

	assert.NoError(t, err)
}

func TestPorts_Validate_MissingAsk(t *testing.T) {
	ports := &Ports{
		Ask: nil,
	}

	err := ports.Validate()

	assert.ErrorIs(t, err, ErrMissingAskService)
}
