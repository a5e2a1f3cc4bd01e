package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestClient_Stream(t *testing.T) {
	t.Run("posts message and wallet as json", func(t *testing.T) {
		var got Request
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = fmt.Fprint(w, frame(KindMessage, "hi"))
		}))
		defer server.Close()

		rec := &recorder{}
		outcome := NewClient(server.URL).Stream(context.Background(), Request{
			Message: "remind me to drink water",
			Wallet:  "0x1234567890123456789012345678901234567890",
		}, rec.callbacks())

		assert.Equal(t, OutcomeMessage, outcome)
		assert.Equal(t, "remind me to drink water", got.Message)
		assert.Equal(t, "0x1234567890123456789012345678901234567890", got.Wallet)
		assert.Equal(t, []call{{"message", "hi"}}, rec.calls)
	})

	t.Run("streams flushed frames in order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			for _, f := range []string{frame(KindStart, ""), frame(KindProgress, "Hello"), frame(KindMessage, "Hello world")} {
				_, _ = fmt.Fprint(w, f)
				flusher.Flush()
			}
		}))
		defer server.Close()

		rec := &recorder{}
		outcome := NewClient(server.URL).Stream(context.Background(), Request{Message: "hi", Wallet: "0x0"}, rec.callbacks())

		assert.Equal(t, OutcomeMessage, outcome)
		assert.Equal(t, []call{{"start", ""}, {"progress", "Hello"}, {"message", "Hello world"}}, rec.calls)
	})

	t.Run("non-success status reports code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		rec := &recorder{}
		outcome := NewClient(server.URL).Stream(context.Background(), Request{Message: "hi", Wallet: "0x0"}, rec.callbacks())

		assert.Equal(t, OutcomeError, outcome)
		require.Len(t, rec.errs, 1)
		assert.Contains(t, rec.errs[0].Error(), "500")
		var statusErr *StatusError
		require.True(t, errors.As(rec.errs[0], &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
		assert.Len(t, rec.calls, 1)
	})

	t.Run("missing body", func(t *testing.T) {
		hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
		})}

		rec := &recorder{}
		outcome := NewClient("http://agent.invalid/sentient/agent", WithHTTPClient(hc)).
			Stream(context.Background(), Request{Message: "hi", Wallet: "0x0"}, rec.callbacks())

		assert.Equal(t, OutcomeError, outcome)
		require.Len(t, rec.errs, 1)
		assert.ErrorIs(t, rec.errs[0], ErrNoBody)
	})

	t.Run("transport failure", func(t *testing.T) {
		transportErr := errors.New("dial tcp: connection refused")
		hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, transportErr
		})}

		rec := &recorder{}
		outcome := NewClient("http://agent.invalid", WithHTTPClient(hc)).
			Stream(context.Background(), Request{Message: "hi", Wallet: "0x0"}, rec.callbacks())

		assert.Equal(t, OutcomeError, outcome)
		require.Len(t, rec.errs, 1)
		assert.ErrorIs(t, rec.errs[0], transportErr)
	})

	t.Run("cancel mid-stream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, frame(KindProgress, "thinking"))
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		rec := &recorder{}
		cb := rec.callbacks()
		onProgress := cb.OnProgress
		cb.OnProgress = func(c string) {
			onProgress(c)
			cancel()
		}

		outcome := NewClient(server.URL).Stream(ctx, Request{Message: "hi", Wallet: "0x0"}, cb)

		assert.Equal(t, OutcomeError, outcome)
		require.Len(t, rec.errs, 1)
		assert.ErrorIs(t, rec.errs[0], context.Canceled)
		assert.Equal(t, call{"progress", "thinking"}, rec.calls[0])
	})

	t.Run("panicking error callback before decoding", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		var reported error
		cb := Callbacks{OnError: func(err error) {
			reported = err
			panic("render failed")
		}}

		var outcome Outcome
		require.NotPanics(t, func() {
			outcome = NewClient(server.URL).Stream(context.Background(), Request{Message: "hi", Wallet: "0x0"}, cb)
		})
		assert.Equal(t, OutcomeError, outcome)
		var statusErr *StatusError
		require.ErrorAs(t, reported, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	})
}
