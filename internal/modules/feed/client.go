package feed

import (
	"sync"

	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
)

const sendBuffer = 32

// Client is one feed connection. Its identity lives in a Tracker so the
// connection can re-authenticate without reconnecting.
type Client struct {
	tracker *identity.Tracker
	send    chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(tracker *identity.Tracker) *Client {
	return &Client{tracker: tracker, send: make(chan []byte, sendBuffer)}
}

func (c *Client) Actor() domain.Actor {
	return c.tracker.Current().Actor
}

// Send returns the outbound frame channel; it is closed when the client is.
func (c *Client) Send() <-chan []byte {
	return c.send
}

func (c *Client) enqueue(msg *WSServerMessage) bool {
	b, err := encode(msg)
	if err != nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
