package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// call is one recorded callback invocation.
type call struct {
	Name string
	Arg  string
}

// recorder captures callback invocations in order.
type recorder struct {
	calls []call
	errs  []error
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnStart:    func(c string) { r.calls = append(r.calls, call{"start", c}) },
		OnProgress: func(c string) { r.calls = append(r.calls, call{"progress", c}) },
		OnMessage:  func(c string) { r.calls = append(r.calls, call{"message", c}) },
		OnEnd:      func() { r.calls = append(r.calls, call{"end", ""}) },
		OnError: func(err error) {
			r.errs = append(r.errs, err)
			r.calls = append(r.calls, call{"error", err.Error()})
		},
	}
}

func frame(kind Kind, content string) string {
	data, _ := json.Marshal(Event{
		Object: "agent.chunk",
		Type:   kind,
		Data:   EventData{Role: "assistant", Content: content},
	})
	return "data: " + string(data) + "\n"
}

// chunkReader returns at most size bytes per Read.
type chunkReader struct {
	data []byte
	size int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.size
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

// sizedReader returns chunks with the given sizes in turn, then the rest.
type sizedReader struct {
	data  []byte
	sizes []int
}

func (s *sizedReader) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	n := len(s.data)
	if len(s.sizes) > 0 {
		n = s.sizes[0]
		s.sizes = s.sizes[1:]
	}
	if n > len(s.data) {
		n = len(s.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, s.data[:n])
	s.data = s.data[n:]
	return n, nil
}

func decodeString(t *testing.T, r io.Reader) ([]call, Outcome) {
	t.Helper()
	rec := &recorder{}
	outcome := Decode(context.Background(), r, rec.callbacks())
	return rec.calls, outcome
}

func TestDecode_HappyPath(t *testing.T) {
	input := `data: {"object":"x","type":"start","data":{"role":"assistant","content":""}}
data: {"object":"x","type":"progress","data":{"role":"assistant","content":"Hello"}}
data: {"object":"x","type":"message","data":{"role":"assistant","content":"Hello world"}}
`
	calls, outcome := decodeString(t, strings.NewReader(input))

	assert.Equal(t, []call{
		{"start", ""},
		{"progress", "Hello"},
		{"message", "Hello world"},
	}, calls)
	assert.Equal(t, OutcomeMessage, outcome)
}

func TestDecode_ChunkBoundaries(t *testing.T) {
	stream := frame(KindStart, "") +
		frame(KindProgress, "héllo") +
		"\n" +
		frame(KindProgress, "héllo 世界 🎉") +
		frame(KindMessage, "héllo 世界 🎉 done")

	want, wantOutcome := decodeString(t, strings.NewReader(stream))
	require.Len(t, want, 4)

	tests := []struct {
		name   string
		reader io.Reader
	}{
		{"whole stream", strings.NewReader(stream)},
		{"one byte", iotest.OneByteReader(strings.NewReader(stream))},
		{"seven bytes", &chunkReader{data: []byte(stream), size: 7}},
		{"half reader", iotest.HalfReader(strings.NewReader(stream))},
		{"data err reader", iotest.DataErrReader(strings.NewReader(stream))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := decodeString(t, tt.reader)
			assert.Equal(t, want, got)
			assert.Equal(t, wantOutcome, outcome)
		})
	}
}

func TestDecode_MalformedLineTolerance(t *testing.T) {
	tests := []struct {
		name     string
		badFrame string
	}{
		{"invalid json", "data: {not json}\n"},
		{"missing prefix", `{"object":"x","type":"progress","data":{"role":"assistant","content":"nope"}}` + "\n"},
		{"comment line", ": keepalive\n"},
		{"blank line", "\n"},
		{"truncated json", `data: {"object":"x","type":"progress"` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := frame(KindProgress, "a") + tt.badFrame + frame(KindProgress, "ab")
			rec := &recorder{}
			outcome := Decode(context.Background(), strings.NewReader(stream), rec.callbacks())

			assert.Equal(t, []call{{"progress", "a"}, {"progress", "ab"}, {"end", ""}}, rec.calls)
			assert.Empty(t, rec.errs)
			assert.Equal(t, OutcomeClosed, outcome)
		})
	}
}

func TestDecode_MessageShortCircuits(t *testing.T) {
	stream := frame(KindStart, "") +
		frame(KindProgress, "partial") +
		frame(KindMessage, "final") +
		frame(KindProgress, "late") +
		frame(KindEnd, "")

	calls, outcome := decodeString(t, strings.NewReader(stream))

	assert.Equal(t, []call{{"start", ""}, {"progress", "partial"}, {"message", "final"}}, calls)
	assert.Equal(t, OutcomeMessage, outcome)
}

func TestDecode_EndWithoutMessage(t *testing.T) {
	stream := frame(KindStart, "") +
		frame(KindProgress, "ab") +
		frame(KindProgress, "abc") +
		frame(KindEnd, "") +
		frame(KindProgress, "ignored")

	calls, outcome := decodeString(t, strings.NewReader(stream))

	assert.Equal(t, []call{{"start", ""}, {"progress", "ab"}, {"progress", "abc"}, {"end", ""}}, calls)
	assert.Equal(t, OutcomeEnd, outcome)
}

func TestDecode_ErrorPassthrough(t *testing.T) {
	stream := frame(KindStart, "") + frame(KindError, "boom")

	rec := &recorder{}
	outcome := Decode(context.Background(), strings.NewReader(stream), rec.callbacks())

	require.Len(t, rec.errs, 1)
	assert.Equal(t, "boom", rec.errs[0].Error())
	var agentErr *AgentError
	assert.True(t, errors.As(rec.errs[0], &agentErr))
	assert.Equal(t, []call{{"start", ""}, {"error", "boom"}}, rec.calls)
	assert.Equal(t, OutcomeError, outcome)
}

func TestDecode_ClosedWithoutTerminal(t *testing.T) {
	t.Run("invokes OnEnd once", func(t *testing.T) {
		stream := frame(KindStart, "") + frame(KindProgress, "so far")
		calls, outcome := decodeString(t, strings.NewReader(stream))

		assert.Equal(t, []call{{"start", ""}, {"progress", "so far"}, {"end", ""}}, calls)
		assert.Equal(t, OutcomeClosed, outcome)
	})

	t.Run("drops unterminated tail", func(t *testing.T) {
		stream := frame(KindProgress, "a") + strings.TrimSuffix(frame(KindMessage, "never"), "\n")
		calls, outcome := decodeString(t, strings.NewReader(stream))

		assert.Equal(t, []call{{"progress", "a"}, {"end", ""}}, calls)
		assert.Equal(t, OutcomeClosed, outcome)
	})

	t.Run("empty body", func(t *testing.T) {
		calls, outcome := decodeString(t, strings.NewReader(""))
		assert.Equal(t, []call{{"end", ""}}, calls)
		assert.Equal(t, OutcomeClosed, outcome)
	})
}

func TestDecode_IgnoresUnknownKinds(t *testing.T) {
	stream := `data: {"object":"x","type":"START","data":{"content":"upper"}}` + "\n" +
		`data: {"object":"x","type":"heartbeat"}` + "\n" +
		frame(KindMessage, "ok")

	calls, outcome := decodeString(t, strings.NewReader(stream))

	assert.Equal(t, []call{{"message", "ok"}}, calls)
	assert.Equal(t, OutcomeMessage, outcome)
}

func TestDecode_CarriageReturnLineEndings(t *testing.T) {
	stream := strings.ReplaceAll(frame(KindProgress, "x")+frame(KindMessage, "y"), "\n", "\r\n")
	calls, _ := decodeString(t, strings.NewReader(stream))

	assert.Equal(t, []call{{"progress", "x"}, {"message", "y"}}, calls)
}

func TestDecode_NilCallbacks(t *testing.T) {
	stream := frame(KindStart, "") + frame(KindProgress, "p") + frame(KindError, "e")

	assert.NotPanics(t, func() {
		outcome := Decode(context.Background(), strings.NewReader(stream), Callbacks{})
		assert.Equal(t, OutcomeError, outcome)
	})
}

func TestDecode_ReadFailure(t *testing.T) {
	readErr := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader(frame(KindProgress, "p")), iotest.ErrReader(readErr))

	rec := &recorder{}
	outcome := Decode(context.Background(), r, rec.callbacks())

	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], readErr)
	assert.Equal(t, "progress", rec.calls[0].Name)
	assert.Equal(t, OutcomeError, outcome)
}

func TestDecode_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	outcome := Decode(ctx, strings.NewReader(frame(KindMessage, "m")), rec.callbacks())

	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], context.Canceled)
	assert.Len(t, rec.calls, 1)
	assert.Equal(t, OutcomeError, outcome)
}

func TestDecode_CallbackPanicIsReported(t *testing.T) {
	rec := &recorder{}
	cb := rec.callbacks()
	cb.OnProgress = func(string) { panic("render failed") }

	outcome := Decode(context.Background(), strings.NewReader(frame(KindProgress, "p")), cb)

	require.Len(t, rec.errs, 1)
	assert.Contains(t, rec.errs[0].Error(), "render failed")
	assert.Equal(t, OutcomeError, outcome)
}

// TestDecode_PropertyChunkingInvariance checks that any split of a well formed
// stream dispatches the same sequence as a single read.
func TestDecode_PropertyChunkingInvariance(t *testing.T) {
	kinds := []Kind{KindStart, KindProgress, KindProgress, KindMessage, KindEnd, KindError, "noise"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "frames")
		var sb strings.Builder
		for i := 0; i < n; i++ {
			kind := rapid.SampledFrom(kinds).Draw(t, "kind")
			content := rapid.String().Draw(t, "content")
			sb.WriteString(frame(kind, content))
			if rapid.Bool().Draw(t, "junk") {
				sb.WriteString("data: {broken\n")
			}
		}
		stream := sb.String()

		whole := &recorder{}
		wholeOutcome := Decode(context.Background(), strings.NewReader(stream), whole.callbacks())

		sizes := rapid.SliceOfN(rapid.IntRange(1, 64), 0, 200).Draw(t, "sizes")
		split := &recorder{}
		splitOutcome := Decode(context.Background(), &sizedReader{data: []byte(stream), sizes: sizes}, split.callbacks())

		assert.Equal(t, whole.calls, split.calls)
		assert.Equal(t, wholeOutcome, splitOutcome)
	})
}
