// Package relay talks to the Figma plugin through the WebSocket relay used by
// the "talk to figma" plugin. A Client joins one channel and then sends each
// command as a single request, waiting for the reply with the same id.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// DefaultURL is the relay's default listen address.
const DefaultURL = "ws://localhost:3055"

// DefaultTimeout bounds how long a request may go without a reply or a
// progress update.
const DefaultTimeout = 30 * time.Second

var (
	ErrNotConnected   = errors.New("not connected to Figma relay")
	ErrNoChannel      = errors.New("must join a channel before sending commands")
	ErrTimeout        = errors.New("request to Figma timed out")
	ErrConnectionLost = errors.New("connection to Figma relay lost")
)

type reply struct {
	result json.RawMessage
	err    error
}

type waiter struct {
	command  string
	reply    chan reply
	progress chan struct{}
}

// Client is a connection to the relay. It allows one outstanding request at
// a time; concurrent callers queue in order of arrival.
type Client struct {
	url     string
	timeout time.Duration
	dialer  *websocket.Dialer
	logger  zerolog.Logger

	sem     *semaphore.Weighted
	writeMu sync.Mutex

	mu      sync.Mutex
	conn    *websocket.Conn
	channel string
	pending map[string]*waiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDialer overrides the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// NewClient returns an unconnected client for the relay at url.
func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:     url,
		timeout: DefaultTimeout,
		dialer:  websocket.DefaultDialer,
		logger:  zerolog.Nop(),
		sem:     semaphore.NewWeighted(1),
		pending: make(map[string]*waiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the relay if not already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("connect to Figma relay at %s: %w", c.url, err)
	}
	c.conn = conn
	c.logger.Info().Str("url", c.url).Msg("connected to Figma relay")
	go c.readLoop(conn)
	return nil
}

// Join connects if needed and joins channel. Commands are routed to the
// plugin listening on the same channel.
func (c *Client) Join(ctx context.Context, channel string) error {
	if channel == "" {
		return errors.New("channel name is required")
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}

	id := uuid.NewString()
	msg := Message{
		ID:      id,
		Type:    TypeJoin,
		Channel: channel,
		Message: &Payload{ID: id, Command: TypeJoin, Params: map[string]any{"channel": channel, "commandId": id}},
	}
	if _, err := c.roundTrip(ctx, id, TypeJoin, msg); err != nil {
		return fmt.Errorf("join channel %q: %w", channel, err)
	}

	c.mu.Lock()
	c.channel = channel
	c.mu.Unlock()
	c.logger.Info().Str("channel", channel).Msg("joined channel")
	return nil
}

// Channel returns the joined channel, or "" before Join succeeds.
func (c *Client) Channel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// Execute sends one command to the plugin and returns its raw result.
func (c *Client) Execute(ctx context.Context, command string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	connected, channel := c.conn != nil, c.channel
	c.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}
	if channel == "" {
		return nil, ErrNoChannel
	}

	id := uuid.NewString()
	msg := Message{
		ID:      id,
		Type:    TypeMessage,
		Channel: channel,
		Message: &Payload{ID: id, Command: command, Params: withCommandID(params, id)},
	}
	return c.roundTrip(ctx, id, command, msg)
}

// Close drops the connection. Pending requests fail with ErrConnectionLost.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return conn.Close()
}

func (c *Client) roundTrip(ctx context.Context, id, command string, msg Message) (json.RawMessage, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	w := &waiter{
		command:  command,
		reply:    make(chan reply, 1),
		progress: make(chan struct{}, 1),
	}
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	c.pending[id] = w
	c.mu.Unlock()
	defer c.forget(id)

	c.writeMu.Lock()
	err := conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", command, err)
	}
	c.logger.Debug().Str("id", id).Str("command", command).Msg("request sent")

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	for {
		select {
		case r := <-w.reply:
			return r.result, r.err
		case <-w.progress:
			timer.Reset(c.timeout)
		case <-timer.C:
			c.logger.Warn().Str("id", id).Str("command", command).Dur("timeout", c.timeout).Msg("request timed out")
			return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, command, c.timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.shutdown(conn, err)
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Debug().Err(err).Msg("ignoring malformed relay message")
		return
	}

	if msg.Type == TypeProgress {
		id := msg.ID
		if id == "" && msg.Message != nil {
			id = msg.Message.ID
		}
		c.mu.Lock()
		w := c.pending[id]
		c.mu.Unlock()
		if w != nil {
			select {
			case w.progress <- struct{}{}:
			default:
			}
		}
		return
	}

	p := msg.Message
	if !p.isReply() {
		return
	}
	c.mu.Lock()
	w, ok := c.pending[p.ID]
	if ok {
		delete(c.pending, p.ID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	if p.hasError() {
		w.reply <- reply{err: &RemoteError{Command: w.command, Message: p.errorText()}}
		return
	}
	w.reply <- reply{result: p.Result}
}

func (c *Client) shutdown(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.channel = ""
	}
	pending := c.pending
	c.pending = make(map[string]*waiter)
	c.mu.Unlock()

	if websocket.IsUnexpectedCloseError(cause, websocket.CloseNormalClosure) {
		c.logger.Warn().Err(cause).Msg("relay connection closed")
	}
	for _, w := range pending {
		w.reply <- reply{err: fmt.Errorf("%w: %v", ErrConnectionLost, cause)}
	}
	_ = conn.Close()
}
