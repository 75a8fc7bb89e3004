package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"circuitpy-sync/internal/logger"
	"circuitpy-sync/internal/sync"
	"circuitpy-sync/pkg/models"
)

// maxEvents bounds the history shown in the event list.
const maxEvents = 500

type phase int

const (
	phaseInitial phase = iota
	phaseWatching
	phaseStopped
)

func (p phase) String() string {
	switch p {
	case phaseInitial:
		return "initial sync"
	case phaseWatching:
		return "watching"
	default:
		return "stopped"
	}
}

type keyMap struct {
	Quit  key.Binding
	Clear key.Binding
}

var keys = keyMap{
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Clear: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
}

// App is a live dashboard over a running Syncer.
type App struct {
	logger *logger.Logger
	syncer *sync.Syncer
	events <-chan models.SyncEvent

	list   list.Model
	phase  phase
	synced int
	failed int
	err    error
	cancel context.CancelFunc

	width  int
	height int
}

type eventItem struct {
	models.SyncEvent
}

func (e eventItem) Title() string {
	if e.Success {
		return successStyle.Render("synced: " + e.RelativePath)
	}
	return errorStyle.Render("error syncing: " + e.RelativePath)
}

func (e eventItem) Description() string {
	stamp := e.Timestamp.Format("15:04:05")
	if !e.Success {
		return fmt.Sprintf("%s • %s • %s", stamp, e.Phase, e.Error)
	}
	return fmt.Sprintf("%s • %s • %d bytes", stamp, e.Phase, e.Bytes)
}

func (e eventItem) FilterValue() string { return e.RelativePath }

type syncEventMsg models.SyncEvent

type eventsClosedMsg struct{}

type watchingMsg struct{}

type runDoneMsg struct {
	err error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))
)

// New builds the dashboard and subscribes it to the syncer's events, so it
// must be called before the syncer runs.
func New(syncer *sync.Syncer, logger *logger.Logger) *App {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Sync Events"
	l.SetShowHelp(false)

	return &App{
		logger: logger,
		syncer: syncer,
		events: syncer.Subscribe(),
		list:   l,
		phase:  phaseInitial,
		cancel: func() {},
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(a.events),
		waitForWatching(a.syncer.Watching()),
	)
}

func waitForEvent(events <-chan models.SyncEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return syncEventMsg(event)
	}
}

func waitForWatching(watching <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-watching
		return watchingMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.list.SetSize(msg.Width-2, msg.Height-8)
		return a, nil

	case syncEventMsg:
		a.addEvent(models.SyncEvent(msg))
		return a, waitForEvent(a.events)

	case eventsClosedMsg:
		return a, nil

	case watchingMsg:
		if a.phase == phaseInitial {
			a.phase = phaseWatching
		}
		return a, nil

	case runDoneMsg:
		a.phase = phaseStopped
		a.err = msg.err
		if msg.err != nil {
			a.logger.Error("Sync stopped: %v", msg.err)
		}
		return a, nil

	case tea.KeyMsg:
		// While the filter prompt is open, letters belong to the query.
		if a.list.FilterState() == list.Filtering && msg.Type != tea.KeyCtrlC {
			break
		}
		switch {
		case key.Matches(msg, keys.Quit):
			a.cancel()
			return a, tea.Quit
		case key.Matches(msg, keys.Clear):
			a.list.SetItems([]list.Item{})
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a *App) addEvent(event models.SyncEvent) {
	if event.Success {
		a.synced++
	} else {
		a.failed++
	}

	a.list.InsertItem(0, eventItem{event})
	if n := len(a.list.Items()); n > maxEvents {
		a.list.RemoveItem(n - 1)
	}
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("circuitpy-sync"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s -> %s\n", a.syncer.SourceDir(), a.syncer.TargetDir()))

	status := fmt.Sprintf("%s • %d synced • %d failed", a.phase, a.synced, a.failed)
	if a.err != nil {
		b.WriteString(errorStyle.Render(status + " • " + a.err.Error()))
	} else {
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteString("\n\n")

	b.WriteString(a.list.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("q: quit • c: clear • /: filter"))

	return b.String()
}

// Run drives the syncer in the background and blocks until the user quits.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer cancel()

	p := tea.NewProgram(a, tea.WithAltScreen())

	done := make(chan error, 1)
	go func() {
		err := a.syncer.Run(ctx)
		p.Send(runDoneMsg{err: err})
		done <- err
	}()

	_, err := p.Run()
	cancel()
	runErr := <-done

	if err != nil {
		return err
	}
	return runErr
}
