package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/aska-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/aska-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/logger"
)

// Chat tokens. Any other non-empty line is asked as a question.
var (
	exitTokens  = map[string]bool{"exit": true, "quit": true, "bye": true}
	statsTokens = map[string]bool{"stats": true, "status": true, "info": true}
	helpTokens  = map[string]bool{"help": true, "?": true}
)

const helpText = `Commands:
  exit, quit, bye      leave the chat
  stats, status, info  show indexed corpus statistics
  help, ?              show this help

Anything else is asked as a question.`

// role identifies who a transcript entry belongs to.
type role int

const (
	roleQuestion role = iota
	roleAnswer
	roleSystem
)

// entry is a single line of the chat transcript.
type entry struct {
	role          role
	text          string
	results       []domain.RetrievalResult
	lowConfidence bool
}

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the chat styles.
	styles *styles.Styles

	// input is the question entry field.
	input textinput.Model

	// viewport scrolls the transcript.
	viewport viewport.Model

	// spin animates while a question is being answered.
	spin spinner.Model

	// sessionID identifies this chat session in verbose logs.
	sessionID string

	// transcript holds the conversation so far.
	transcript []entry

	// busy is true while an answer or stats request is in flight.
	busy bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Focus()
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.Theme().Primary)

	vp := viewport.New(80, 20)

	a := &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		input:     ti,
		viewport:  vp,
		spin:      sp,
		sessionID: uuid.New().String(),
	}
	a.appendEntry(entry{
		role: roleSystem,
		text: "Ask a question about your indexed documents. Type 'help' for commands.",
	})
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	logger.Debug("Chat session %s started", a.sessionID)
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("aska - ask your documents"),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "enter":
			if a.busy {
				return a, nil
			}
			return a, a.submit()
		case "up", "down", "pgup", "pgdown":
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd
		}
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.busy = false
		a.handleAnswer(msg)
		return a, nil

	case messages.StatsLoaded:
		a.busy = false
		a.handleStats(msg)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit consumes the input line and decides what to do with it.
func (a *App) submit() tea.Cmd {
	line := strings.TrimSpace(a.input.Value())
	if line == "" {
		return nil
	}
	a.input.SetValue("")

	token := strings.ToLower(line)
	switch {
	case exitTokens[token]:
		logger.Debug("Chat session %s closed", a.sessionID)
		return tea.Quit

	case statsTokens[token]:
		a.busy = true
		return tea.Batch(a.spin.Tick, a.loadStats())

	case helpTokens[token]:
		a.appendEntry(entry{role: roleSystem, text: helpText})
		return nil
	}

	a.appendEntry(entry{role: roleQuestion, text: line})
	a.busy = true
	return tea.Batch(a.spin.Tick, a.ask(line))
}

// ask returns a command that answers the question.
func (a *App) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := a.ports.Ask.Ask(a.ctx, question)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

// loadStats returns a command that fetches corpus statistics.
func (a *App) loadStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := a.ports.Ask.Stats(a.ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// handleAnswer appends the answer, or the failure, to the transcript.
// A failed question does not end the session.
func (a *App) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		a.err = msg.Err
		a.appendEntry(entry{
			role: roleSystem,
			text: "Could not process the question: " + msg.Err.Error(),
		})
		return
	}
	a.err = nil
	a.appendEntry(entry{
		role:          roleAnswer,
		text:          msg.Answer.Text,
		results:       msg.Answer.Results,
		lowConfidence: msg.Answer.LowConfidence,
	})
}

// handleStats appends corpus statistics to the transcript.
func (a *App) handleStats(msg messages.StatsLoaded) {
	if msg.Err != nil {
		a.err = msg.Err
		a.appendEntry(entry{
			role: roleSystem,
			text: "Could not load statistics: " + msg.Err.Error(),
		})
		return
	}
	a.err = nil

	var b strings.Builder
	b.WriteString("Indexed corpora:")
	if len(msg.Stats) == 0 {
		b.WriteString(" none enabled")
	}
	for _, s := range msg.Stats {
		fmt.Fprintf(&b, "\n  %s: %d sources, %d chunks", s.Corpus.Description(), s.Sources, s.Chunks)
	}
	a.appendEntry(entry{role: roleSystem, text: b.String()})
}

// appendEntry adds an entry and scrolls the transcript to the bottom.
func (a *App) appendEntry(e entry) {
	a.transcript = append(a.transcript, e)
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	parts := make([]string, 0, len(a.transcript))
	for _, e := range a.transcript {
		parts = append(parts, a.renderEntry(e))
	}
	return strings.Join(parts, "\n\n")
}

func (a *App) renderEntry(e entry) string {
	switch e.role {
	case roleQuestion:
		return a.styles.Question.Render("You: ") + a.styles.Normal.Render(e.text)

	case roleAnswer:
		var b strings.Builder
		if e.lowConfidence {
			b.WriteString(a.styles.Warning.Render(
				"Low confidence: the best match scored below the threshold.",
			))
			b.WriteString("\n")
		}
		b.WriteString(a.styles.Answer.Render(e.text))
		for i, r := range e.results {
			base := r.Meta.Base()
			title := base.Title
			if title == "" {
				title = base.SourceID
			}
			ref := fmt.Sprintf("[%d] %s", i+1, title)
			if page := r.Meta.Section(); page > 0 {
				ref += fmt.Sprintf(", page %d", page)
			}
			ref += fmt.Sprintf(" (%.2f)", r.FinalScore)
			b.WriteString("\n" + a.styles.Source.Render("  "+ref))
		}
		return b.String()

	default:
		return a.styles.Muted.Render(e.text)
	}
}

// View implements tea.Model.
// It renders the chat as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	status := "enter: ask | stats: corpora | help: commands | exit: leave"
	if a.busy {
		status = a.spin.View() + " Thinking..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.styles.Title.Render("aska chat"),
		"",
		a.viewport.View(),
		"",
		a.styles.InputField.Render(a.input.View()),
		a.styles.StatusBar.Width(max(a.width, 0)).Render(status),
	)
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.Width = max(width-6, 20)
	a.viewport.Width = max(width, 20)
	a.viewport.Height = max(height-7, 3)
	a.viewport.SetContent(a.renderTranscript())
}

// Run starts the chat application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// SessionID returns the identifier for this chat session.
func (a *App) SessionID() string {
	return a.sessionID
}

// Busy returns whether a request is in flight.
func (a *App) Busy() bool {
	return a.busy
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}
