package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/webpilot/pkg/queue"
	"github.com/entrhq/webpilot/pkg/types"
)

// queueEventMsg wraps a queue event for the bubbletea update loop.
type queueEventMsg types.QueueEvent

// toastExpiredMsg clears a transient notification.
type toastExpiredMsg struct{}

// listenForEvents blocks on the session's event stream and delivers the
// next event as a message. Re-issued after every received event.
func listenForEvents(session *queue.Session) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-session.Events()
		if !ok {
			return nil
		}
		return queueEventMsg(event)
	}
}
