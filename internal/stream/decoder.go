package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Backland-Labs/dailyagi/internal/logger"
)

// framePrefix marks a data frame. Lines without it are ignored.
const framePrefix = "data: "

// readChunkSize is the size of each read from the body.
const readChunkSize = 4096

// Decode runs one decode session over r, dispatching events to cb until a
// terminal frame is processed or r is exhausted. It never returns an error:
// read failures, cancellation and error frames are delivered through
// cb.OnError.
func Decode(ctx context.Context, r io.Reader, cb Callbacks) (outcome Outcome) {
	s := &session{
		cb:  cb,
		log: logger.WithField("component", "stream"),
	}

	defer func() {
		if p := recover(); p != nil {
			s.log.WithField("panic", p).Error("Callback panicked, ending stream session")
			outcome = OutcomeError
			s.failQuietly(fmt.Errorf("stream callback panicked: %v", p))
		}
	}()

	return s.run(ctx, r)
}

// session owns the frame buffer of a single Decode call.
type session struct {
	cb       Callbacks
	log      *logger.Logger
	frames   frameBuffer
	dispatch int
	skipped  int
}

func (s *session) run(ctx context.Context, r io.Reader) Outcome {
	chunk := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			s.cb.fail(fmt.Errorf("stream canceled: %w", err))
			return OutcomeError
		}

		n, err := r.Read(chunk)
		if n > 0 {
			for _, frame := range s.frames.push(chunk[:n]) {
				if kind, ok := s.handle(frame); ok && kind.IsTerminal() {
					s.log.WithFields(map[string]interface{}{
						"terminal":   string(kind),
						"dispatched": s.dispatch,
						"skipped":    s.skipped,
					}).Debug("Stream session finished")
					return outcomeFor(kind)
				}
			}
		}

		if errors.Is(err, io.EOF) {
			if rest := s.frames.pending(); rest != "" {
				s.log.WithField("fragment_size", len(rest)).Debug("Dropping unterminated trailing frame")
			}
			s.log.WithField("dispatched", s.dispatch).Debug("Stream closed without terminal frame")
			s.cb.end()
			return OutcomeClosed
		}
		if err != nil {
			s.cb.fail(fmt.Errorf("failed to read stream: %w", err))
			return OutcomeError
		}
	}
}

// handle parses one complete frame and dispatches it. ok is false when the
// frame was skipped.
func (s *session) handle(frame string) (kind Kind, ok bool) {
	if !strings.HasPrefix(frame, framePrefix) {
		return "", false
	}

	var event Event
	if err := json.Unmarshal([]byte(frame[len(framePrefix):]), &event); err != nil {
		s.skipped++
		s.log.WithFields(map[string]interface{}{
			"error": err.Error(),
			"frame": frame,
		}).Warn("Skipping malformed stream frame")
		return "", false
	}

	switch event.Type {
	case KindStart:
		s.cb.start(event.Data.Content)
	case KindProgress:
		s.cb.progress(event.Data.Content)
	case KindMessage:
		s.cb.message(event.Data.Content)
	case KindEnd:
		s.cb.end()
	case KindError:
		s.cb.fail(&AgentError{Message: event.Data.Content})
	default:
		s.log.WithField("type", string(event.Type)).Debug("Ignoring unknown stream event type")
		return event.Type, false
	}

	s.dispatch++
	return event.Type, true
}

// failQuietly reports err without letting a second panic escape.
func (s *session) failQuietly(err error) {
	defer func() {
		_ = recover()
	}()
	s.cb.fail(err)
}

func outcomeFor(kind Kind) Outcome {
	switch kind {
	case KindMessage:
		return OutcomeMessage
	case KindEnd:
		return OutcomeEnd
	}
	return OutcomeError
}
