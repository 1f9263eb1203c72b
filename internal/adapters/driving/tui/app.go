package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/weldsafe/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/weldsafe/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/weldsafe/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/weldsafe/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/weldsafe/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// Rows taken by the header, input box and status bar.
const chromeHeight = 5

// turn is one question and, once it arrives, its answer.
type turn struct {
	question string
	answer   *domain.Answer
	err      error
}

// App is the chat model following the Elm architecture.
type App struct {
	ports    *Ports
	ctx      context.Context
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	input    *input.QuestionInput
	status   *status.Bar
	viewport viewport.Model

	turns   []turn
	pending bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat TUI over the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	if m := ports.Answers.Manifest(); m.BuildID != "" {
		bar.SetIndex(describeIndex(m))
	} else {
		bar.SetIndex("no index")
	}

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		input:    input.NewQuestionInput(s),
		status:   bar,
		viewport: viewport.New(80, 20),
	}, nil
}

func describeIndex(m domain.Manifest) string {
	id := m.BuildID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("index %s · %d chunks", id, m.ChunkCount)
}

// WithContext sets the context passed to the answer engine.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("weldsafe"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.QuestionSubmitted:
		return a, a.submit(msg.Question)

	case messages.AnswerReceived:
		a.receive(msg)
		return a, nil

	case messages.TranscriptCleared:
		a.turns = nil
		a.status.Clear()
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.status, cmd = a.status.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Send):
		q := strings.TrimSpace(a.input.Value())
		if q == "" || a.pending {
			return a, nil
		}
		a.input.Reset()
		return a, func() tea.Msg { return messages.QuestionSubmitted{Question: q} }

	case keymap.Matches(k, a.keymap.Clear):
		if a.pending {
			return a, nil
		}
		return a, func() tea.Msg { return messages.TranscriptCleared{} }

	case keymap.Matches(k, a.keymap.ScrollUp), keymap.Matches(k, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(pageKey(k, a.keymap))
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// pageKey translates our scroll bindings to the viewport's own keys.
func pageKey(k string, km *keymap.KeyMap) tea.KeyMsg {
	if keymap.Matches(k, km.ScrollUp) {
		return tea.KeyMsg{Type: tea.KeyPgUp}
	}
	return tea.KeyMsg{Type: tea.KeyPgDown}
}

// submit records the question and asks the engine in the background.
func (a *App) submit(question string) tea.Cmd {
	if a.pending {
		return nil
	}
	a.pending = true
	a.turns = append(a.turns, turn{question: question})
	a.refresh()

	ctx, answers := a.ctx, a.ports.Answers
	ask := func() tea.Msg {
		start := time.Now()
		answer, err := answers.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err, Elapsed: time.Since(start)}
	}
	return tea.Batch(ask, a.status.SetState(status.StateThinking))
}

func (a *App) receive(msg messages.AnswerReceived) {
	a.pending = false
	if n := len(a.turns); n > 0 {
		a.turns[n-1].answer = msg.Answer
		a.turns[n-1].err = msg.Err
	}

	if msg.Err != nil {
		a.status.SetState(status.StateError)
		a.status.SetMessage(errorSummary(msg.Err))
	} else {
		a.status.SetState(status.StateReady)
		a.status.SetMessage("")
		a.status.SetElapsed(msg.Elapsed)
	}
	a.refresh()
}

// errorSummary names the failing stage without provider details.
func errorSummary(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case domain.KindOf(err) != 0:
		return domain.KindOf(err).String()
	default:
		return err.Error()
	}
}

// refresh re-renders the transcript and keeps the newest turn in view.
func (a *App) refresh() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.turns) == 0 {
		return a.styles.Muted.Render("Постав питання про охорону праці під час зварювальних робіт.")
	}

	wrap := lipgloss.NewStyle().Width(max(a.viewport.Width-2, 20))
	blocks := make([]string, 0, len(a.turns))
	for i, t := range a.turns {
		var b strings.Builder
		b.WriteString(a.styles.Question.Render("Ви: ") + a.styles.Normal.Render(t.question))
		b.WriteString("\n")

		switch {
		case t.err != nil:
			b.WriteString(a.styles.Error.Render("Не вдалося отримати відповідь: " + errorSummary(t.err)))
		case t.answer != nil:
			if t.answer.Emergency {
				b.WriteString(a.styles.Emergency.Render("⚠ НЕБЕЗПЕКА") + "\n")
			}
			b.WriteString(a.styles.RenderMarkup(t.answer.Text))
		case a.pending && i == len(a.turns)-1:
			b.WriteString(a.styles.Muted.Render("..."))
		}
		blocks = append(blocks, wrap.Render(b.String()))
	}
	return strings.Join(blocks, "\n\n")
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	header := a.styles.Title.Render("weldsafe · охорона праці")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		a.viewport.View(),
		a.input.View(),
		a.status.View(),
	)
}

// SetDimensions resizes every component.
func (a *App) SetDimensions(width, height int) {
	a.width, a.height = width, height
	a.ready = true
	a.viewport.Width = width
	a.viewport.Height = max(height-chromeHeight, 1)
	a.input.SetWidth(width)
	a.status.SetWidth(width)
	a.refresh()
}

// Run starts the program in the alternate screen.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

// Pending reports whether an answer is outstanding.
func (a *App) Pending() bool {
	return a.pending
}

// Ready reports whether the first window size has arrived.
func (a *App) Ready() bool {
	return a.ready
}
