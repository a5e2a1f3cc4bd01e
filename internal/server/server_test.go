package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForAddress(t *testing.T, s *Server) string {
	t.Helper()
	var addr string
	require.Eventually(t, func() bool {
		addr = s.Address()
		return addr != ""
	}, 2*time.Second, 10*time.Millisecond, "server should start listening")
	return addr
}

func TestServerStartAndStop(t *testing.T) {
	t.Run("serves health and shuts down gracefully", func(t *testing.T) {
		server := NewServer(0)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errChan := make(chan error, 1)
		go func() {
			errChan <- server.Start(ctx)
		}()

		addr := waitForAddress(t, server)
		resp, err := http.Get("http://" + addr + "/health")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		cancel()

		select {
		case err := <-errChan:
			assert.True(t, errors.Is(err, http.ErrServerClosed), "unexpected error: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatal("server did not shut down within timeout")
		}
		assert.Empty(t, server.Address())
	})

	t.Run("handles multiple start/stop cycles", func(t *testing.T) {
		server := NewServer(0)

		for i := 0; i < 3; i++ {
			ctx, cancel := context.WithCancel(context.Background())

			errChan := make(chan error, 1)
			go func() {
				errChan <- server.Start(ctx)
			}()

			waitForAddress(t, server)
			cancel()

			select {
			case <-errChan:
			case <-time.After(2 * time.Second):
				t.Fatalf("server did not stop in cycle %d", i)
			}
		}
	})

	t.Run("refuses a second start", func(t *testing.T) {
		server := NewServer(0)
		ctx, cancel := context.WithCancel(context.Background())

		errChan := make(chan error, 1)
		go func() {
			errChan <- server.Start(ctx)
		}()
		waitForAddress(t, server)

		assert.ErrorIs(t, server.Start(ctx), ErrServerRunning)

		cancel()
		<-errChan
	})

	t.Run("stops immediately if context is already canceled", func(t *testing.T) {
		server := NewServer(0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := server.Start(ctx)
		assert.Equal(t, context.Canceled, err)
	})
}
