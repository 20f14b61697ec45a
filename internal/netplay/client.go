package netplay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Transport is what a Peer needs from a connection.
type Transport interface {
	ID() string
	Send(env Envelope) error
	Inbox() <-chan Envelope
}

// Client is one participant's connection to the relay. Incoming envelopes
// queue on Inbox; the game loop drains them so the world is only touched
// from one goroutine.
type Client struct {
	peer  string
	conn  *Connection
	inbox chan Envelope
}

// Dial connects peer to matchID on the relay at base, e.g.
// "ws://localhost:8080".
func Dial(ctx context.Context, base, matchID, peer string) (*Client, error) {
	u := strings.TrimRight(base, "/") + "/ws/" + url.PathEscape(matchID) + "?peer=" + url.QueryEscape(peer)
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", u, err)
	}
	c := &Client{
		peer:  peer,
		conn:  newConnection(ws),
		inbox: make(chan Envelope, sendBuffer),
	}
	go c.conn.writePump()
	go func() {
		defer close(c.inbox)
		c.conn.readPump(func(msg []byte) {
			var env Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				log.Printf("netplay: bad envelope: %v", err)
				return
			}
			select {
			case c.inbox <- env:
			case <-c.conn.Done():
			}
		})
	}()
	return c, nil
}

// ID returns the peer id this client joined as.
func (c *Client) ID() string { return c.peer }

// Send stamps env with this peer and queues it.
func (c *Client) Send(env Envelope) error {
	env.From = c.peer
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", env.Type, err)
	}
	return c.conn.enqueue(b)
}

// Inbox yields received envelopes. It is closed when the connection ends.
func (c *Client) Inbox() <-chan Envelope { return c.inbox }

// Close disconnects from the relay.
func (c *Client) Close() error {
	c.conn.Close()
	return nil
}
