package feed

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReconnectDelay is the fixed pause between a disconnect and the next dial.
const ReconnectDelay = 2 * time.Second

// Status is the connection state of the feed client.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnected
)

// String returns the operator-facing label for the status.
func (s Status) String() string {
	if s == StatusConnected {
		return "Tracking Active"
	}
	return "Disconnected"
}

// Handler receives decoded samples, one at a time, in arrival order.
type Handler func(Sample)

// Client consumes a tracking feed over websocket and reconnects forever.
type Client struct {
	url      string
	delay    time.Duration
	dialer   *websocket.Dialer
	onSample Handler
	onStatus func(Status)
	mu       sync.RWMutex
	status   Status
}

// NewClient creates a client for the feed at url. Samples are handed to
// onSample synchronously; while it runs, further messages wait in the transport.
func NewClient(url string, onSample Handler) *Client {
	return &Client{
		url:      url,
		delay:    ReconnectDelay,
		dialer:   websocket.DefaultDialer,
		onSample: onSample,
	}
}

// OnStatus sets the callback invoked on every connect and disconnect.
func (c *Client) OnStatus(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// URL returns the feed address the client dials.
func (c *Client) URL() string {
	return c.url
}

// Run dials the feed and consumes it until ctx is cancelled, reconnecting
// after ReconnectDelay whenever the connection fails or drops.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Printf("feed %s: %v, retrying in %s", c.url, err, c.delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.delay):
		}
	}
}

// consume runs a single connection until it fails.
func (c *Client) consume(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.setStatus(StatusConnected)
	defer c.setStatus(StatusDisconnected)

	// Unblock ReadMessage when the context is cancelled.
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
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("feed closed by server")
			}
			return err
		}

		sample, err := Decode(data)
		if err != nil {
			log.Printf("feed: skipping message: %v", err)
			continue
		}

		if c.onSample != nil {
			c.onSample(sample)
		}
	}
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	callback := c.onStatus
	c.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(s)
	}
}
