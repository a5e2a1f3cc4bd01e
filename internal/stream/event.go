// Package stream implements the client side of the dailyagi agent streaming
// protocol: a POST whose chunked response body carries newline-delimited
// "data: {json}" frames. Frames are reassembled across arbitrary read
// boundaries, decoded into events and dispatched to caller callbacks in
// arrival order.
package stream

// Kind identifies the type of a stream event.
type Kind string

const (
	// KindStart opens a response; its content is the initial rendering.
	KindStart Kind = "start"
	// KindProgress carries the cumulative partial response, not a delta.
	KindProgress Kind = "progress"
	// KindMessage carries the final response and ends the session.
	KindMessage Kind = "message"
	// KindEnd closes the stream and ends the session.
	KindEnd Kind = "end"
	// KindError carries an agent-side failure description.
	KindError Kind = "error"
)

// IsTerminal reports whether an event of this kind ends a decode session.
func (k Kind) IsTerminal() bool {
	switch k {
	case KindMessage, KindEnd, KindError:
		return true
	}
	return false
}

// Event is the JSON envelope of a single frame.
type Event struct {
	Object string    `json:"object"`
	Type   Kind      `json:"type"`
	Data   EventData `json:"data"`
}

// EventData is the payload of an Event.
type EventData struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Callbacks receives dispatched events. Every handler is optional.
type Callbacks struct {
	OnStart    func(content string)
	OnProgress func(content string)
	OnMessage  func(content string)
	OnEnd      func()
	OnError    func(err error)
}

func (c Callbacks) start(content string) {
	if c.OnStart != nil {
		c.OnStart(content)
	}
}

func (c Callbacks) progress(content string) {
	if c.OnProgress != nil {
		c.OnProgress(content)
	}
}

func (c Callbacks) message(content string) {
	if c.OnMessage != nil {
		c.OnMessage(content)
	}
}

func (c Callbacks) end() {
	if c.OnEnd != nil {
		c.OnEnd()
	}
}

func (c Callbacks) fail(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// Outcome describes how a decode session ended.
type Outcome int

const (
	// OutcomeMessage means a message frame delivered the final content.
	OutcomeMessage Outcome = iota
	// OutcomeEnd means an explicit end frame closed the session.
	OutcomeEnd
	// OutcomeClosed means the body ended without a terminal frame. OnEnd was
	// still invoked.
	OutcomeClosed
	// OutcomeError means OnError was invoked and the session ended.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMessage:
		return "message"
	case OutcomeEnd:
		return "end"
	case OutcomeClosed:
		return "closed"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}
