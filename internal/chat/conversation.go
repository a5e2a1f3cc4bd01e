// Package chat keeps the state of a conversation with the dailyagi agent on
// top of the stream decoder. It owns the caller-side conventions the decoder
// leaves open: partial content replaces the live reply, an end frame
// promotes the live reply to a final message, and failures become visible
// "Error: ..." replies.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Backland-Labs/dailyagi/internal/logger"
	"github.com/Backland-Labs/dailyagi/internal/stream"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

var (
	// ErrEmptyMessage is returned when the text to send is blank.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned when a reply is still streaming.
	ErrBusy = errors.New("a reply is still streaming")

	// ErrNoWallet is returned when no wallet is connected and demo mode is off.
	ErrNoWallet = errors.New("please connect your wallet first")
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the transcript.
type Message struct {
	Role    Role
	Content string
}

// Streamer opens one agent stream session. *stream.Client implements it.
type Streamer interface {
	Stream(ctx context.Context, req stream.Request, cb stream.Callbacks) stream.Outcome
}

// AddressSource supplies the connected wallet. *wallet.Connector implements it.
type AddressSource interface {
	Address() string
}

// Update is the state handed to observers after every change.
type Update struct {
	Messages  []Message
	Current   string
	Streaming bool
}

// Reply is the result of a Send.
type Reply struct {
	Message Message
	Outcome stream.Outcome
}

// Conversation is safe for concurrent use; only one Send streams at a time.
type Conversation struct {
	streamer Streamer
	wallet   AddressSource
	demo     bool

	mu        sync.Mutex
	messages  []Message
	current   string
	streaming bool
	observers []func(Update)
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithDemoMode lets Send fall back to wallet.DemoAddress.
func WithDemoMode(enabled bool) Option {
	return func(c *Conversation) {
		c.demo = enabled
	}
}

// New creates an empty conversation.
func New(streamer Streamer, source AddressSource, opts ...Option) *Conversation {
	c := &Conversation{
		streamer: streamer,
		wallet:   source,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe registers fn to receive every state change. Observers run
// synchronously on the goroutine driving Send.
func (c *Conversation) Observe(fn func(Update)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Streaming reports whether a reply is in flight.
func (c *Conversation) Streaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streaming
}

// Send posts text to the agent and blocks until the reply finished. A
// stream failure is appended to the transcript as an "Error: ..." reply and
// also returned.
func (c *Conversation) Send(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	address := c.resolveWallet()
	if address == "" {
		return Reply{}, ErrNoWallet
	}

	c.mu.Lock()
	if c.streaming {
		c.mu.Unlock()
		return Reply{}, ErrBusy
	}
	c.messages = append(c.messages, Message{Role: RoleUser, Content: text})
	c.streaming = true
	c.current = ""
	c.mu.Unlock()
	c.notify()

	logger.WithFields(map[string]interface{}{
		"wallet":      wallet.FormatAddress(address, 4),
		"message_len": len(text),
	}).Debug("Sending chat message")

	var (
		reply     Message
		streamErr error
	)
	outcome := c.streamer.Stream(ctx, stream.Request{Message: text, Wallet: address}, stream.Callbacks{
		OnStart:    c.setCurrent,
		OnProgress: c.setCurrent,
		OnMessage: func(content string) {
			reply = c.finish(content, true)
		},
		OnEnd: func() {
			c.mu.Lock()
			partial := c.current
			c.mu.Unlock()
			reply = c.finish(partial, partial != "")
		},
		OnError: func(err error) {
			streamErr = err
			reply = c.finish("Error: "+err.Error(), true)
		},
	})

	// Sessions always end through a callback; this only guards Streamers
	// that return without one.
	if c.Streaming() {
		c.finish("", false)
	}

	return Reply{Message: reply, Outcome: outcome}, streamErr
}

func (c *Conversation) resolveWallet() string {
	if c.wallet != nil {
		if address := c.wallet.Address(); address != "" {
			return address
		}
	}
	if c.demo {
		return wallet.DemoAddress
	}
	return ""
}

func (c *Conversation) setCurrent(content string) {
	c.mu.Lock()
	c.current = content
	c.mu.Unlock()
	c.notify()
}

// finish ends the streaming state, appending content as an assistant message
// when keep is set.
func (c *Conversation) finish(content string, keep bool) Message {
	msg := Message{Role: RoleAssistant, Content: content}

	c.mu.Lock()
	if keep {
		c.messages = append(c.messages, msg)
	}
	c.current = ""
	c.streaming = false
	c.mu.Unlock()
	c.notify()

	if !keep {
		return Message{}
	}
	return msg
}

func (c *Conversation) notify() {
	c.mu.Lock()
	update := Update{
		Messages:  append([]Message(nil), c.messages...),
		Current:   c.current,
		Streaming: c.streaming,
	}
	observers := make([]func(Update), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(update)
	}
}
