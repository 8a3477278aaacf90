// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// AnswerReceived carries a completed answer back to the model.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// StatsLoaded carries corpus statistics back to the model.
type StatsLoaded struct {
	Stats []domain.CorpusStats
	Err   error
}

// Quit signals the application should exit.
type Quit struct{}
