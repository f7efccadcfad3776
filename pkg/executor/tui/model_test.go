package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webpilot/pkg/agent"
	"github.com/entrhq/webpilot/pkg/queue"
	"github.com/entrhq/webpilot/pkg/types"
)

func newTestModel(session *queue.Session) *model {
	return newModel(context.Background(), session)
}

func newTestSession(executed chan string) *queue.Session {
	execute := func(_ context.Context, command string, _ *agent.ExecutionState, _ func(*types.CommandRecord)) (*types.CommandRecord, error) {
		executed <- command
		record := types.NewCommandRecord(command)
		record.Status = types.StatusCompleted
		record.CompletedAt = time.Now()
		return record, nil
	}
	return queue.NewSession(execute, queue.WithPacingDelay(0))
}

func TestSubmitKeyStartsQueue(t *testing.T) {
	executed := make(chan string, 1)
	m := newTestModel(newTestSession(executed))
	m.textarea.SetValue("go to https://a.test")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	select {
	case cmd := <-executed:
		assert.Equal(t, "go to https://a.test", cmd)
	case <-time.After(5 * time.Second):
		t.Fatal("submit key did not start the queue")
	}
	assert.Empty(t, m.textarea.Value())
}

func TestEnterInsertsNewlineWithoutSubmitting(t *testing.T) {
	executed := make(chan string, 1)
	session := newTestSession(executed)
	m := newTestModel(session)
	m.textarea.SetValue("first command")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, session.IsActive())
	assert.Equal(t, "first command\n", m.textarea.Value())
}

func TestHelpAdvertisesReachableSubmitKey(t *testing.T) {
	m := newTestModel(newTestSession(make(chan string, 1)))
	bar := m.statusBar()
	require.Contains(t, bar, "ctrl+s run")
	assert.NotContains(t, bar, "ctrl+enter")
	assert.Contains(t, m.textarea.Placeholder, "ctrl+s")
}
