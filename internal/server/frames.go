package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Backland-Labs/dailyagi/internal/stream"
)

// frameObject is the "object" field of every emitted frame.
const frameObject = "agent.chunk"

// frameWriter writes "data: {json}" frames and flushes each one.
type frameWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	delay   time.Duration
	steps   []string
	written int
}

// write emits one frame, waiting delay first so the demo streams at a
// readable pace.
func (fw *frameWriter) write(ctx context.Context, kind stream.Kind, content string) error {
	if fw.delay > 0 && fw.written > 0 {
		timer := time.NewTimer(fw.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	data, err := json.Marshal(stream.Event{
		Object: frameObject,
		Type:   kind,
		Data:   stream.EventData{Role: "assistant", Content: content},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	if _, err := fmt.Fprintf(fw.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	fw.flusher.Flush()
	fw.written++
	return nil
}

// progress appends step to the running transcript and emits the whole
// transcript, since progress frames carry cumulative content.
func (fw *frameWriter) progress(ctx context.Context, step string) error {
	fw.steps = append(fw.steps, step)
	return fw.write(ctx, stream.KindProgress, strings.Join(fw.steps, "\n"))
}
