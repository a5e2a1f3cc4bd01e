package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Backland-Labs/dailyagi/internal/chat"
	"github.com/Backland-Labs/dailyagi/internal/stream"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

type scriptedStreamer struct {
	script func(cb stream.Callbacks) stream.Outcome
}

func (s scriptedStreamer) Stream(_ context.Context, _ stream.Request, cb stream.Callbacks) stream.Outcome {
	return s.script(cb)
}

func newModel(t *testing.T, script func(cb stream.Callbacks) stream.Outcome) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	conv := chat.New(scriptedStreamer{script: script}, nil, chat.WithDemoMode(true))
	return New(ctx, conv, wallet.DemoAddress)
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

// drain feeds every queued conversation update into the model.
func drain(m Model) Model {
	for {
		select {
		case u := <-m.updates:
			next, _ := m.Update(conversationMsg(u))
			m = next.(Model)
		default:
			return m
		}
	}
}

func TestModel_SendAndRender(t *testing.T) {
	m := newModel(t, func(cb stream.Callbacks) stream.Outcome {
		cb.OnStart("Thinking")
		cb.OnProgress("Analyzing your request...")
		cb.OnMessage("✅ Reminder set: call mom")
		return stream.OutcomeMessage
	})

	m = typeText(m, "remind me")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	m = typeText(m, "to call mom")
	assert.Contains(t, m.View(), "> remind me to call mom█")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.streaming)
	assert.Empty(t, m.input)
	assert.Contains(t, m.View(), "dailyAGI: …")

	msg := cmd()
	m = drain(m)
	next, _ = m.Update(msg)
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "dailyAGI chat · 0x1234...7890")
	assert.Contains(t, view, "you: remind me to call mom")
	assert.Contains(t, view, "dailyAGI: ✅ Reminder set: call mom")
	assert.False(t, m.streaming)
}

func TestModel_EnterIgnoredWhileStreamingOrEmpty(t *testing.T) {
	m := newModel(t, func(cb stream.Callbacks) stream.Outcome {
		cb.OnEnd()
		return stream.OutcomeClosed
	})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty input must not send")

	m.streaming = true
	m = typeText(m, "hi")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "no second send while streaming")
}

func TestModel_InputErrorsAreShown(t *testing.T) {
	m := newModel(t, nil)

	next, _ := m.Update(sentMsg{err: chat.ErrNoWallet})
	m = next.(Model)
	assert.Contains(t, m.View(), "✗ please connect your wallet first")

	// Stream errors already live in the transcript.
	next, _ = m.Update(sentMsg{err: &stream.StatusError{Code: 500}})
	m = next.(Model)
	assert.Equal(t, chat.ErrNoWallet, m.err)
}

func TestModel_Keys(t *testing.T) {
	m := newModel(t, nil)

	m = typeText(m, "abc")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(Model)
	assert.Equal(t, "ab", string(m.input))

	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	assert.Equal(t, 80, m.width)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_StoppedModelDoesNotBlockConversation(t *testing.T) {
	m := newModel(t, func(cb stream.Callbacks) stream.Outcome {
		for i := 0; i < 2*updateBuffer; i++ {
			cb.OnProgress(fmt.Sprintf("step %d", i))
		}
		cb.OnMessage("done")
		return stream.OutcomeMessage
	})
	m.stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.conv.Send(context.Background(), "hello")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked after the chat screen stopped")
	}
}
