package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aska-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Ask: &MockAskService{},
	}
}

func TestNewApp_Success(t *testing.T) {
	ports := newTestPorts()

	app, err := NewApp(ports)

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.NotEmpty(t, app.SessionID())
	// The transcript opens with the greeting.
	require.Len(t, app.transcript, 1)
	assert.Equal(t, roleSystem, app.transcript[0].role)
}

func TestNewApp_MissingAskService(t *testing.T) {
	ports := &Ports{Ask: nil}

	app, err := NewApp(ports)

	assert.ErrorIs(t, err, ErrMissingAskService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	cmd := app.Init()

	assert.NotNil(t, cmd)
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	assert.False(t, app.Ready())

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.True(t, app.Ready())
}

func TestApp_Update_CtrlC(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Submit_ExitTokens(t *testing.T) {
	tokens := []string{"exit", "quit", "bye", "EXIT", "Quit"}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			app, err := NewApp(newTestPorts())
			require.NoError(t, err)

			app.input.SetValue(token)
			cmd := app.submit()

			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestApp_Submit_EmptyLine(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	app.input.SetValue("   ")
	cmd := app.submit()

	assert.Nil(t, cmd)
	assert.False(t, app.Busy())
}

func TestApp_Submit_Question(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	before := len(app.transcript)
	app.input.SetValue("what is the refund policy")
	cmd := app.submit()

	require.NotNil(t, cmd)
	assert.True(t, app.Busy())
	require.Len(t, app.transcript, before+1)
	last := app.transcript[len(app.transcript)-1]
	assert.Equal(t, roleQuestion, last.role)
	assert.Equal(t, "what is the refund policy", last.text)
	assert.Empty(t, app.input.Value())
}

func TestApp_Submit_HelpTokens(t *testing.T) {
	tokens := []string{"help", "?"}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			app, err := NewApp(newTestPorts())
			require.NoError(t, err)

			before := len(app.transcript)
			app.input.SetValue(token)
			cmd := app.submit()

			assert.Nil(t, cmd)
			require.Len(t, app.transcript, before+1)
			last := app.transcript[len(app.transcript)-1]
			assert.Equal(t, roleSystem, last.role)
			assert.Contains(t, last.text, "exit, quit, bye")
		})
	}
}

func TestApp_Submit_StatsTokens(t *testing.T) {
	tokens := []string{"stats", "status", "info"}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			app, err := NewApp(newTestPorts())
			require.NoError(t, err)

			app.input.SetValue(token)
			cmd := app.submit()

			require.NotNil(t, cmd)
			assert.True(t, app.Busy())
		})
	}
}

func TestApp_Ask_CallsService(t *testing.T) {
	var asked string
	mock := &MockAskService{
		AskFunc: func(_ context.Context, question string) (*domain.Answer, error) {
			asked = question
			return &domain.Answer{Question: question, Text: "From the handbook.", Grounded: true}, nil
		},
	}
	app, err := NewApp(&Ports{Ask: mock})
	require.NoError(t, err)

	cmd := app.ask("what does the handbook say")
	msg := cmd()

	require.IsType(t, messages.AnswerReceived{}, msg)
	received := msg.(messages.AnswerReceived)
	require.NoError(t, received.Err)
	assert.Equal(t, "From the handbook.", received.Answer.Text)
	assert.Equal(t, "what does the handbook say", asked)
}

func TestApp_Ask_ServiceError(t *testing.T) {
	mock := &MockAskService{
		AskFunc: func(_ context.Context, _ string) (*domain.Answer, error) {
			return nil, errors.New("embedding provider unreachable")
		},
	}
	app, err := NewApp(&Ports{Ask: mock})
	require.NoError(t, err)

	msg := app.ask("anything")()

	received := msg.(messages.AnswerReceived)
	assert.Error(t, received.Err)
	assert.Nil(t, received.Answer)
}

func TestApp_Update_AnswerReceived(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)
	app.busy = true

	app.Update(messages.AnswerReceived{
		Answer: &domain.Answer{Text: "The policy allows 30 days.", Grounded: true},
	})

	assert.False(t, app.Busy())
	assert.NoError(t, app.Err())
	last := app.transcript[len(app.transcript)-1]
	assert.Equal(t, roleAnswer, last.role)
	assert.Equal(t, "The policy allows 30 days.", last.text)
}

func TestApp_Update_AnswerReceived_Error(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)
	app.busy = true

	app.Update(messages.AnswerReceived{Err: errors.New("connection refused")})

	assert.False(t, app.Busy())
	assert.Error(t, app.Err())
	last := app.transcript[len(app.transcript)-1]
	assert.Equal(t, roleSystem, last.role)
	assert.Contains(t, last.text, "Could not process the question")
	assert.Contains(t, last.text, "connection refused")
}

func TestApp_LoadStats(t *testing.T) {
	mock := &MockAskService{
		StatsFunc: func(_ context.Context) ([]domain.CorpusStats, error) {
			return []domain.CorpusStats{
				{Corpus: domain.CorpusLocal, Sources: 3, Chunks: 120},
			}, nil
		},
	}
	app, err := NewApp(&Ports{Ask: mock})
	require.NoError(t, err)

	msg := app.loadStats()()

	require.IsType(t, messages.StatsLoaded{}, msg)
	loaded := msg.(messages.StatsLoaded)
	require.NoError(t, loaded.Err)
	require.Len(t, loaded.Stats, 1)
	assert.Equal(t, 120, loaded.Stats[0].Chunks)
}

func TestApp_Update_StatsLoaded(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)
	app.busy = true

	app.Update(messages.StatsLoaded{
		Stats: []domain.CorpusStats{
			{Corpus: domain.CorpusLocal, Sources: 3, Chunks: 120},
			{Corpus: domain.CorpusDrive, Sources: 1, Chunks: 9},
		},
	})

	assert.False(t, app.Busy())
	last := app.transcript[len(app.transcript)-1]
	assert.Equal(t, roleSystem, last.role)
	assert.Contains(t, last.text, "Local files: 3 sources, 120 chunks")
	assert.Contains(t, last.text, "Google Drive: 1 sources, 9 chunks")
}

func TestApp_Update_StatsLoaded_Empty(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	app.Update(messages.StatsLoaded{Stats: nil})

	last := app.transcript[len(app.transcript)-1]
	assert.Contains(t, last.text, "none enabled")
}

func TestApp_Update_StatsLoaded_Error(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	app.Update(messages.StatsLoaded{Err: errors.New("index unavailable")})

	assert.Error(t, app.Err())
	last := app.transcript[len(app.transcript)-1]
	assert.Contains(t, last.text, "Could not load statistics")
}

func TestApp_Update_QuitMessage(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_View_Ready(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	app.SetDimensions(80, 24)
	view := app.View()

	assert.Contains(t, view, "aska chat")
	assert.Contains(t, view, "enter: ask")
}

func TestApp_View_Busy(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	app.SetDimensions(80, 24)
	app.busy = true

	assert.Contains(t, app.View(), "Thinking")
}

func TestApp_RenderEntry_Question(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	rendered := app.renderEntry(entry{role: roleQuestion, text: "how do refunds work"})

	assert.Contains(t, rendered, "You: ")
	assert.Contains(t, rendered, "how do refunds work")
}

func TestApp_RenderEntry_LowConfidence(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	rendered := app.renderEntry(entry{
		role:          roleAnswer,
		text:          "Possibly thirty days.",
		lowConfidence: true,
	})

	assert.Contains(t, rendered, "Low confidence")
	assert.Contains(t, rendered, "Possibly thirty days.")
}

func TestApp_RenderEntry_Sources(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	rendered := app.renderEntry(entry{
		role: roleAnswer,
		text: "Thirty days from purchase.",
		results: []domain.RetrievalResult{
			{
				Meta: domain.PaginatedMeta{
					MetaBase: domain.MetaBase{SourceID: "local:policy.pdf", Title: "Refund Policy"},
					Page:     3,
				},
				FinalScore: 0.87,
			},
			{
				Meta:       domain.FlatMeta{MetaBase: domain.MetaBase{SourceID: "local:notes.txt"}},
				FinalScore: 0.61,
			},
		},
	})

	assert.Contains(t, rendered, "[1] Refund Policy, page 3 (0.87)")
	// A source without a title falls back to its id.
	assert.Contains(t, rendered, "[2] local:notes.txt (0.61)")
}

func TestApp_SetDimensions(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	app.SetDimensions(100, 30)

	assert.True(t, app.Ready())
	assert.Equal(t, 100, app.width)
	assert.Equal(t, 30, app.height)
	assert.Equal(t, 100, app.viewport.Width)
	assert.Equal(t, 23, app.viewport.Height)
}

func TestApp_SetDimensions_Tiny(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	app.SetDimensions(10, 5)

	assert.Equal(t, 20, app.viewport.Width)
	assert.Equal(t, 3, app.viewport.Height)
}
