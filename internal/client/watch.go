package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/blockedby/sales-dashboard/internal/logger"
)

// Event is a message pushed over the server websocket.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Watch streams server events to fn until ctx ends. A dropped connection is
// redialed with exponential backoff; the backoff resets after each successful dial.
// It returns ctx.Err() on cancellation.
func (c *Client) Watch(ctx context.Context, fn func(Event)) error {
	log := logger.Get().Component("watch")

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0

	operation := func() error {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.WebsocketURL(), nil)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("dial %s: %w", c.WebsocketURL(), err)
		}
		defer conn.Close()
		b.Reset()
		log.Info().Str("url", c.WebsocketURL()).Msg("watching server events")

		// unblock ReadMessage on cancellation
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					return backoff.Permanent(ctx.Err())
				}
				return fmt.Errorf("read event: %w", err)
			}

			var evt Event
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Warn().Err(err).Msg("skipping malformed event")
				continue
			}
			fn(evt)
		}
	}

	notify := func(err error, next time.Duration) {
		log.Warn().Err(err).Dur("retry_in", next).Msg("event stream lost")
	}

	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
}
