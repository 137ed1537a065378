package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Event is one server-sent change notification.
type Event struct {
	Type      string
	BlockIDs  []string
	Timestamp string
}

const (
	heartbeatEvent = "heartbeat"
	// maxEventLineBytes fits a publish event naming every block on a page.
	maxEventLineBytes = 4 << 20
)

// Watch streams change events until ctx ends or the server closes the
// stream. Heartbeats are not delivered to the handler.
func (c *Client) Watch(ctx context.Context, handle func(Event)) error {
	request, err := c.newRequest(ctx, http.MethodGet, "/api/blocks/stream", nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "text/event-stream")

	streamClient := *c.httpClient
	streamClient.Timeout = 0
	response, err := streamClient.Do(request)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return fmt.Errorf("client: open stream: %w", err)
	}
	defer response.Body.Close()
	if err := checkStatus(response); err != nil {
		return err
	}

	scanner := bufio.NewScanner(response.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventLineBytes)
	eventType := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			eventType = ""
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if eventType == "" || eventType == heartbeatEvent {
				continue
			}
			var payload struct {
				BlockIDs  []string `json:"blockIds"`
				Timestamp string   `json:"timestamp"`
			}
			if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &payload); err != nil {
				continue
			}
			handle(Event{Type: eventType, BlockIDs: payload.BlockIDs, Timestamp: payload.Timestamp})
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("client: read stream: %w", err)
	}
	return nil
}
