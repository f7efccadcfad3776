// Package tui provides the interactive terminal executor: a command input
// box, a live transcript of queue progress, and keyboard controls for
// pause, resume, stop, retry, and result copying.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/webpilot/pkg/queue"
	"github.com/entrhq/webpilot/pkg/types"
)

// model is the state of the TUI application.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Queue integration
	session *queue.Session
	ctx     context.Context

	// Content buffer rendered into the viewport
	transcript *strings.Builder

	// Queue state mirrors
	running    bool
	paused     bool
	totalUsage types.TokenUsage

	// Last terminal result, for retry and copy shortcuts
	lastIndex  int
	lastResult *types.CommandResult

	// Transient notification
	toast string

	// Window dimensions
	width  int
	height int
	ready  bool
}

// New creates the TUI program over a queue session.
func New(ctx context.Context, session *queue.Session) *tea.Program {
	return tea.NewProgram(newModel(ctx, session), tea.WithAltScreen())
}

func newModel(ctx context.Context, session *queue.Session) *model {
	ta := textarea.New()
	ta.Placeholder = "Enter one command per line, then press ctrl+s to run"
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &model{
		textarea:   ta,
		spinner:    sp,
		session:    session,
		ctx:        ctx,
		transcript: &strings.Builder{},
		lastIndex:  -1,
	}
}

// Init starts the spinner and the event listener.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listenForEvents(m.session))
}

// Update handles messages from the terminal and the queue.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case queueEventMsg:
		return m.handleQueueEvent(types.QueueEvent(msg))
	case toastExpiredMsg:
		m.toast = ""
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	inputHeight := m.textarea.Height() + 2
	viewportHeight := msg.Height - inputHeight - 4
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
	m.textarea.SetWidth(msg.Width - 4)
	m.refreshViewport()
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.running {
			m.session.Stop()
			return m.notify("stop requested, finishing current command")
		}
		return m, tea.Quit

	case "ctrl+s":
		return m.startQueue()

	case "ctrl+p":
		if m.running && !m.paused {
			m.session.Pause()
			return m, nil
		}
		if m.running && m.paused {
			m.session.Resume()
			return m, nil
		}
		return m, nil

	case "ctrl+x":
		if m.running {
			m.session.Stop()
			return m.notify("stop requested")
		}
		return m, nil

	case "ctrl+r":
		return m.retryLast()

	case "ctrl+y":
		return m.copyLastResult()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// startQueue submits the textarea contents as a command batch.
func (m *model) startQueue() (tea.Model, tea.Cmd) {
	if m.running {
		return m.notify("queue is already running")
	}
	rawText := m.textarea.Value()
	if len(queue.ParseCommands(rawText)) == 0 {
		return m.notify("enter at least one command")
	}
	if err := m.session.Start(m.ctx, rawText); err != nil {
		return m.notify(err.Error())
	}
	m.textarea.Reset()
	m.textarea.Blur()
	return m, nil
}

func (m *model) retryLast() (tea.Model, tea.Cmd) {
	if m.running {
		return m.notify("cannot retry while the queue is running")
	}
	if m.lastResult == nil || (m.lastResult.Status != types.StatusFailed && m.lastResult.Status != types.StatusStopped) {
		return m.notify("no failed or stopped result to retry")
	}
	if err := m.session.Retry(m.ctx, m.lastIndex); err != nil {
		return m.notify(err.Error())
	}
	return m, nil
}

func (m *model) copyLastResult() (tea.Model, tea.Cmd) {
	if m.lastResult == nil {
		return m.notify("no result to copy")
	}
	text := resultJSON(m.lastResult)
	if err := clipboard.WriteAll(text); err != nil {
		return m.notify(fmt.Sprintf("copy failed: %v", err))
	}
	return m.notify("result copied to clipboard")
}

func (m *model) handleQueueEvent(event types.QueueEvent) (tea.Model, tea.Cmd) {
	switch event.Type {
	case types.EventQueueStarted:
		m.running = true
		m.appendLine(titleStyle.Render("queue started"))

	case types.EventCommandStarted:
		m.appendLine(commandStyle.Render(fmt.Sprintf("[%d] %s", event.Index+1, event.Command)))

	case types.EventRecordUpdated:
		if event.Record != nil && len(event.Record.ToolCalls) > 0 {
			last := event.Record.ToolCalls[len(event.Record.ToolCalls)-1]
			m.appendLine(toolStyle.Render("  -> " + last.Name))
		}

	case types.EventCommandFinished, types.EventRetryFinished:
		if event.Result != nil {
			m.lastIndex = event.Index
			m.lastResult = event.Result
			m.totalUsage = event.SessionUsage
			m.renderResult(event.Result)
		}

	case types.EventRetryStarted:
		m.appendLine(commandStyle.Render(fmt.Sprintf("[%d] retrying: %s", event.Index+1, event.Command)))

	case types.EventQueuePaused:
		m.paused = true
		m.appendLine(statusBarStyle.Render("paused"))

	case types.EventQueueResumed:
		m.paused = false
		m.appendLine(statusBarStyle.Render("resumed"))

	case types.EventStopRequested:
		m.appendLine(stoppedStyle.Render("stop requested"))

	case types.EventQueueFinished:
		m.running = false
		m.paused = false
		m.totalUsage = event.SessionUsage
		m.appendLine(titleStyle.Render("queue finished"))
		m.textarea.Focus()

	case types.EventQueueError:
		m.appendLine(failedStyle.Render(fmt.Sprintf("queue error: %v", event.Err)))
	}

	return m, listenForEvents(m.session)
}

func (m *model) renderResult(result *types.CommandResult) {
	var style lipgloss.Style
	switch result.Status {
	case types.StatusCompleted:
		style = completedStyle
	case types.StatusStopped:
		style = stoppedStyle
	default:
		style = failedStyle
	}

	m.appendLine(style.Render(fmt.Sprintf("  %s (tokens: %d)", result.Status, result.Usage.Total)))
	if result.Error != "" {
		m.appendLine(failedStyle.Render("  " + result.Error))
	}
	if result.Data != nil {
		m.appendLine(highlightJSON(resultJSON(result)))
	}
}

func (m *model) appendLine(line string) {
	m.transcript.WriteString(line)
	m.transcript.WriteString("\n")
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript.String())
	m.viewport.GotoBottom()
}

func (m *model) notify(text string) (tea.Model, tea.Cmd) {
	m.toast = text
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{}
	})
}

// View renders the full screen.
func (m *model) View() string {
	if !m.ready {
		return "initializing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("webpilot"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(inputStyle.Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m *model) statusBar() string {
	var status string
	switch {
	case m.running && m.paused:
		status = "paused"
	case m.running:
		status = m.spinner.View() + " running"
	default:
		status = "idle"
	}

	help := "ctrl+s run · ctrl+p pause/resume · ctrl+x stop · ctrl+r retry · ctrl+y copy · esc quit"
	line := fmt.Sprintf("%s · tokens %d · %s", status, m.totalUsage.Total, help)
	if m.toast != "" {
		line += "  " + toastStyle.Render(m.toast)
	}
	return statusBarStyle.Render(line)
}
