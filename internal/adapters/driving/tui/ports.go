// Package tui provides the interactive chat surface for aska.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/aska-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the chat TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions and reports corpus statistics.
	Ask driving.AskService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(ask driving.AskService) *Ports {
	return &Ports{
		Ask: ask,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
