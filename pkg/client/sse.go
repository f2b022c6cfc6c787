package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eventdeck/eventdeck/internal/rest"
	"github.com/eventdeck/eventdeck/pkg/event"
	log "github.com/sirupsen/logrus"
)

// ErrStreamEnded is reported when the server closes the event stream on its own.
var ErrStreamEnded = errors.New("event stream ended")

type sseMessage struct {
	name string
	data string
}

// WatchEvents opens the realtime list of the session owner's events. The first snapshot arrives
// right after the stream opens; every later one replaces it. Close the subscription to stop.
func (c *Client) WatchEvents(ctx context.Context) (*event.Subscription, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/event/stream", nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		cancel()
		return nil, decodeAPIError(resp)
	}

	sub := event.NewSubscription(cancel)
	go func() {
		defer resp.Body.Close()
		err := readStream(resp.Body, func(msg sseMessage) error {
			return dispatch(sub, msg)
		})
		if ctx.Err() != nil {
			sub.Finish(nil)
			return
		}
		if err == nil {
			err = ErrStreamEnded
		}
		log.Debugf("event stream stopped: %v", err)
		sub.Finish(err)
	}()
	return sub, nil
}

func dispatch(sub *event.Subscription, msg sseMessage) error {
	switch msg.name {
	case event.SnapshotMessage:
		var snapshot event.SnapshotDTO
		if err := json.Unmarshal([]byte(msg.data), &snapshot); err != nil {
			return fmt.Errorf("malformed snapshot: %w", err)
		}
		sub.Deliver(event.FromDTOs(snapshot.Events))
	case event.ErrorMessage:
		var body rest.ErrorResponse
		if err := json.Unmarshal([]byte(msg.data), &body); err != nil {
			return fmt.Errorf("malformed stream error: %w", err)
		}
		return &APIError{Status: http.StatusInternalServerError, Message: body.Error, Details: body.Details}
	default:
		log.Tracef("ignoring stream message %q", msg.name)
	}
	return nil
}

// readStream splits a text/event-stream body into messages. It returns nil at end of input
// and the first error returned by handle otherwise.
func readStream(r io.Reader, handle func(sseMessage) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var msg sseMessage
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				msg.data = strings.Join(data, "\n")
				if err := handle(msg); err != nil {
					return err
				}
			}
			msg, data = sseMessage{}, nil
		case strings.HasPrefix(line, ":"):
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				msg.name = value
			case "data":
				data = append(data, value)
			}
		}
	}
	return scanner.Err()
}
