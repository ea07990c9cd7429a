package stomp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/danapple/openbroker/internal/infra"
)

// ErrNotConnected is returned when a frame cannot be sent because no broker
// session is established.
var ErrNotConnected = errors.New("stomp: not connected")

// Handler consumes message bodies delivered on a subscription. An alias so
// callers can satisfy transport interfaces defined elsewhere with the same
// shape.
type Handler = func(body []byte)

// Client manages the persistent push connection: dialing with exponential
// backoff, the STOMP handshake, routing MESSAGE frames to subscription
// handlers, and surfacing connect/disconnect transitions to its owner.
// Subscriptions do not survive a disconnect — the owner is expected to
// re-subscribe from its own desired set when OnConnect fires again.
type Client struct {
	url          string
	onConnect    func()
	onDisconnect func()

	mu      sync.RWMutex
	conn    *websocket.Conn
	subs    map[string]Handler // subscription id → handler
	byDest  map[string]string  // destination → subscription id
	writeMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
}

// NewClient creates a push-channel client. onConnect runs after the STOMP
// session is established; onDisconnect after it is lost. Either may be nil.
func NewClient(url string, onConnect, onDisconnect func()) *Client {
	return &Client{
		url:              url,
		onConnect:        onConnect,
		onDisconnect:     onDisconnect,
		subs:             make(map[string]Handler),
		byDest:           make(map[string]string),
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      90 * time.Second,
	}
}

// Start launches the connection loop. It reconnects until Stop or ctx
// cancellation.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.runLoop(ctx)
}

// Stop terminates the connection loop and closes the connection.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.close()
	c.wg.Wait()
}

func (c *Client) runLoop(ctx context.Context) {
	defer c.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.connect(ctx); err != nil {
			slog.Warn("push channel connect failed", "url", c.url, "err", err, "retry", retry)
			delay := infra.DialBackoff(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		if c.onConnect != nil {
			c.onConnect()
		}
		c.readLoop()
		if c.onDisconnect != nil {
			c.onDisconnect()
		}
	}
}

// connect dials the websocket and performs the STOMP handshake.
func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, http.Header{})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.subs = make(map[string]Handler)
	c.byDest = make(map[string]string)
	c.mu.Unlock()

	connect := NewFrame(CmdConnect)
	connect.Headers[HdrAcceptVersion] = "1.2,2.0"
	if err := c.writeFrame(connect); err != nil {
		c.close()
		return fmt.Errorf("CONNECT failed: %w", err)
	}

	frame, err := c.readFrame(conn)
	if err != nil {
		c.close()
		return fmt.Errorf("handshake read failed: %w", err)
	}
	if frame.Command != CmdConnected {
		c.close()
		return fmt.Errorf("expected CONNECTED, got %s", frame.Command)
	}

	slog.Info("push channel connected", "url", c.url)
	return nil
}

// Subscribe issues a SUBSCRIBE frame and registers the handler for messages
// arriving on the destination. Re-subscribing to the same destination
// replaces the handler without a second frame.
func (c *Client) Subscribe(destination string, h Handler) error {
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	if id, ok := c.byDest[destination]; ok {
		c.subs[id] = h
		c.mu.Unlock()
		return nil
	}
	id := uuid.NewString()
	c.subs[id] = h
	c.byDest[destination] = id
	c.mu.Unlock()

	frame := NewFrame(CmdSubscribe)
	frame.Headers[HdrID] = id
	frame.Headers[HdrDestination] = destination
	frame.Headers[HdrAck] = "auto"
	return c.writeFrame(frame)
}

// Publish sends a body to a destination via a SEND frame.
func (c *Client) Publish(destination string, body []byte) error {
	frame := NewFrame(CmdSend)
	frame.Headers[HdrDestination] = destination
	frame.Body = body
	return c.writeFrame(frame)
}

func (c *Client) readLoop() {
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		frame, err := c.readFrame(conn)
		if err != nil {
			slog.Warn("push channel read error", "err", err)
			c.close()
			return
		}

		switch frame.Command {
		case CmdMessage:
			c.dispatch(frame)
		case CmdError:
			slog.Error("push channel broker error", "message", frame.Headers["message"], "body", string(frame.Body))
		default:
			slog.Debug("ignoring frame", "command", frame.Command)
		}
	}
}

// dispatch routes a MESSAGE frame to its subscription handler, matching the
// subscription header first and falling back to the destination.
func (c *Client) dispatch(frame *Frame) {
	c.mu.RLock()
	h, ok := c.subs[frame.Headers[HdrSubscription]]
	if !ok {
		if id, found := c.byDest[frame.Headers[HdrDestination]]; found {
			h, ok = c.subs[id]
		}
	}
	c.mu.RUnlock()

	if !ok {
		slog.Debug("message for unknown subscription", "destination", frame.Headers[HdrDestination])
		return
	}
	h(frame.Body)
}

func (c *Client) readFrame(conn *websocket.Conn) (*Frame, error) {
	if c.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(c.ReadTimeout))
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return ParseFrame(data)
}

func (c *Client) writeFrame(frame *Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteMessage(websocket.TextMessage, frame.Marshal())
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
