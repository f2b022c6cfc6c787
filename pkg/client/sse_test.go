package client

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextSnapshot(t *testing.T, sub *event.Subscription) []event.Event {
	t.Helper()
	select {
	case events, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription finished: %v", sub.Err())
		return events
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestReadStream(t *testing.T) {
	t.Run("should split messages and skip comments", func(t *testing.T) {
		input := ": ping\n\nevent: snapshot\ndata: {\"a\":1}\n\nevent: other\ndata: x\ndata: y\n\n"
		var got []sseMessage

		err := readStream(strings.NewReader(input), func(m sseMessage) error {
			got = append(got, m)
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []sseMessage{{name: "snapshot", data: `{"a":1}`}, {name: "other", data: "x\ny"}}, got)
	})
}

func TestClient_WatchEvents(t *testing.T) {
	t.Run("should deliver every snapshot as a full list", func(t *testing.T) {
		release := make(chan struct{})
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "event: snapshot\ndata: {\"events\":[{\"id\":\"e1\"}]}\n\n")
			w.(http.Flusher).Flush()
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
			fmt.Fprint(w, "event: snapshot\ndata: {\"events\":[{\"id\":\"e1\"},{\"id\":\"e2\"}]}\n\n")
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}).WithSession(session)

		sub, err := c.WatchEvents(ctx)
		require.NoError(t, err)
		defer sub.Close()

		first := nextSnapshot(t, sub)
		require.Len(t, first, 1)
		assert.Equal(t, "e1", first[0].Id)

		close(release)
		second := nextSnapshot(t, sub)
		assert.Len(t, second, 2)
	})

	t.Run("should finish without error once closed", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "event: snapshot\ndata: {\"events\":[]}\n\n")
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}).WithSession(session)

		sub, err := c.WatchEvents(ctx)
		require.NoError(t, err)
		nextSnapshot(t, sub)

		sub.Close()

		for range sub.Snapshots() {
		}
		assert.NoError(t, sub.Err())
	})

	t.Run("should report a server side stream failure", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "event: error\ndata: {\"error\":\"Event stream failed\",\"details\":\"boom\"}\n\n")
		}).WithSession(session)

		sub, err := c.WatchEvents(ctx)
		require.NoError(t, err)

		for range sub.Snapshots() {
		}
		var apiErr *APIError
		require.ErrorAs(t, sub.Err(), &apiErr)
		assert.Equal(t, "boom", apiErr.Details)
	})

	t.Run("should reject an unauthenticated stream", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}).WithSession(session)

		_, err := c.WatchEvents(ctx)

		assert.True(t, IsStatus(err, http.StatusUnauthorized))
	})
}
