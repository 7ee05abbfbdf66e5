package feed

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket feed behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket feed configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// wsSubscribeRequest is sent after every connect and reconnect.
type wsSubscribeRequest struct {
	Op       string   `json:"op"`
	Channels []string `json:"channels"`
	Mints    []string `json:"mints,omitempty"`
}

// WSClient consumes the push feed over a WebSocket connection. It
// reconnects with exponential backoff and re-sends its subscription after
// every reconnect. Messages the sink rejects are logged and dropped; the
// stream itself never stops on a bad message.
type WSClient struct {
	endpoint string
	config   WSConfig
	mints    []string
	sink     Sink
	verbose  bool

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool

	// ingestCtx bounds sink calls and is cancelled on Close
	ingestCtx    context.Context
	ingestCancel context.CancelFunc
}

// WSOptions for creating a WSClient.
type WSOptions struct {
	Endpoint string
	Mints    []string // empty subscribes to all mints
	Config   *WSConfig
	Verbose  bool
}

// NewWSClient connects to the push feed endpoint and subscribes to the
// trade and snapshot channels.
func NewWSClient(ctx context.Context, sink Sink, opts WSOptions) (*WSClient, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	cfg := DefaultWSConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	ingestCtx, ingestCancel := context.WithCancel(context.Background())
	c := &WSClient{
		endpoint:     opts.Endpoint,
		config:       cfg,
		mints:        append([]string(nil), opts.Mints...),
		sink:         sink,
		verbose:      opts.Verbose,
		done:         make(chan struct{}),
		ingestCtx:    ingestCtx,
		ingestCancel: ingestCancel,
	}

	if err := c.connect(ctx); err != nil {
		ingestCancel()
		return nil, err
	}

	if err := c.subscribe(); err != nil {
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.connMu.Unlock()
		ingestCancel()
		return nil, err
	}

	// Start reader goroutine
	c.wg.Add(1)
	go c.readLoop()

	// Start ping goroutine
	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes the WebSocket connection.
func (c *WSClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// subscribe sends the subscription request on the current connection.
func (c *WSClient) subscribe() error {
	req := wsSubscribeRequest{
		Op:       "subscribe",
		Channels: []string{"trades", "snapshots"},
		Mints:    c.mints,
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close shuts the feed down. Safe to call more than once.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)
	c.ingestCancel()

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads messages from the WebSocket and hands them to the sink.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			// Increase delay for next reconnect (exponential backoff)
			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		if err := dispatch(c.ingestCtx, c.sink, message); err != nil {
			c.logf("dropping message: %v", err)
		}
	}
}

// reconnect waits, re-dials, and re-sends the subscription.
func (c *WSClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	// Wait before reconnecting
	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	// Close existing connection
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	// Attempt reconnect
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Dial failed, the next read error triggers another attempt
		c.logf("reconnect failed: %v", err)
		return
	}

	if err := c.subscribe(); err != nil {
		c.logf("resubscribe failed: %v", err)
		return
	}

	c.logf("reconnected to %s", c.endpoint)
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Reader will notice the dead connection and reconnect
					c.logf("ping failed: %v", err)
				}
			}
			c.connMu.Unlock()
		}
	}
}

func (c *WSClient) logf(format string, args ...interface{}) {
	if c.verbose {
		log.Printf("[feed] "+format, args...)
	}
}
