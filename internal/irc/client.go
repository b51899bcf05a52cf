package irc

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/textproto"
	"strconv"
	"sync"
	"time"

	ircv4 "gopkg.in/irc.v4"

	"github.com/yourusername/ircbot/internal/config"
	boterrors "github.com/yourusername/ircbot/internal/errors"
	"github.com/yourusername/ircbot/internal/output"
)

// shutdownPollInterval is how often the session watcher checks the shutdown
// flag. Closing the socket is what unblocks the reader; the flag is polled
// for callers that only set it.
const shutdownPollInterval = 40 * time.Millisecond

// ErrNotConnected is returned by every send while no session is open
var ErrNotConnected = boterrors.NewNotConnectedError("send")

// IdentResponder answers a single RFC 1413 query while the connection
// registers. Failures are logged and never affect the IRC session.
type IdentResponder interface {
	Respond(ctx context.Context) error
}

// DialFunc opens the TCP session
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client owns one IRC session: the socket, the read loop that parses and
// dispatches incoming lines, and the outbound command surface.
type Client struct {
	logger output.Logger
	events *Events
	state  *State
	ctcp   *CTCPHandler
	ident  IdentResponder
	dial   DialFunc

	channels       string
	stripColons    bool
	requestTopic   bool
	connectTimeout time.Duration
	writeTimeout   time.Duration
	quitTimeout    time.Duration

	mu      sync.Mutex
	conn    net.Conn
	writer  *ircv4.Writer
	closing bool
	done    chan struct{}
	stop    context.CancelFunc

	// writeMu keeps concurrent writers from interleaving partial lines
	writeMu sync.Mutex

	lineMu   sync.RWMutex
	lastLine string
}

// NewClient creates a client for cfg. Nothing is dialed until Connect.
func NewClient(cfg *config.Config, logger output.Logger) *Client {
	if logger == nil {
		logger = output.NopLogger{}
	}
	dialer := &net.Dialer{}
	c := &Client{
		logger:         logger,
		events:         NewEvents(),
		state:          newState(cfg.Server.Nickname, cfg.Bot.Owners, cfg.Bot.QuitMessage, cfg.Bot.Version),
		dial:           dialer.DialContext,
		channels:       cfg.Bot.ChannelList(),
		stripColons:    !cfg.Bot.PreserveTrailingColons,
		requestTopic:   cfg.Bot.RequestTopicOnJoin,
		connectTimeout: cfg.Server.GetConnectTimeoutDuration(),
		writeTimeout:   writeTimeout,
		quitTimeout:    quitTimeout,
	}
	c.ctcp = NewCTCPHandler(c, logger)
	return c
}

// Events returns the observer table
func (c *Client) Events() *Events { return c.events }

// State returns the connection state
func (c *Client) State() *State { return c.state }

// SetIdentResponder installs the responder started by Connect. Must be called
// before Connect.
func (c *Client) SetIdentResponder(r IdentResponder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ident = r
}

// SetDialer replaces the function used to open the TCP session
func (c *Client) SetDialer(dial DialFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dial = dial
}

// Connect opens the session to host:port, starts the read loop and logs in.
// It must not be called while connected; call Disconnect first.
//
// ctx governs the whole session: cancelling it shuts the client down.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	c.mu.Lock()
	if c.conn != nil || c.closing {
		c.mu.Unlock()
		return fmt.Errorf("already connected")
	}

	cancelIdent := func() {}
	if c.ident != nil {
		var identCtx context.Context
		identCtx, cancelIdent = context.WithCancel(ctx)
		ident := c.ident
		go func() {
			defer cancelIdent()
			if err := ident.Respond(identCtx); err != nil {
				c.logger.Warning("Ident responder: %v", err)
			}
		}()
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	c.logger.Info("Connecting to %s...", address)

	dialCtx := ctx
	if c.connectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
	}
	conn, err := c.dial(dialCtx, "tcp", address)
	if err != nil {
		c.mu.Unlock()
		cancelIdent()
		c.logger.Error("Failed to connect: %v", err)
		return boterrors.NewTransportError("dial", err)
	}

	sessionCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.conn = conn
	c.writer = ircv4.NewWriter(conn)
	c.done = done
	c.stop = stop
	c.state.markConnected()
	c.mu.Unlock()

	c.logger.Success("Connected to %s", address)
	c.events.Emit(Event{Kind: EventConnect})

	go c.readLoop(conn, done)
	go c.watchSession(ctx, sessionCtx, conn, done)

	return c.Login()
}

// readLoop is the only goroutine that reads from conn and the only source of
// dispatched events. It exits when the peer closes, on a read error, or once
// the state stops receiving.
func (c *Client) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	reader := textproto.NewReader(bufio.NewReader(conn))
	for c.state.ShouldReceive() {
		line, err := reader.ReadLine()
		if err != nil {
			if c.state.ShouldReceive() {
				c.logger.Warning("Connection lost: %v", err)
			}
			break
		}
		if !c.state.ShouldReceive() {
			break
		}
		c.setLastLine(line)
		c.handleLine(line)
	}

	// A transport failure ends the session exactly like Disconnect does.
	_ = c.disconnect(conn)
}

// watchSession shuts the session down when the caller's context ends or the
// shutdown flag is raised, and exits with the read loop.
func (c *Client) watchSession(parent, session context.Context, conn net.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-session.Done():
			return
		case <-parent.Done():
			c.shutdownSession(conn)
			return
		case <-ticker.C:
			if c.state.ShutdownRequested() {
				_ = c.disconnect(conn)
				return
			}
		}
	}
}

// Disconnect fires the Disconnect event, sends QUIT and closes the socket.
// Every resource is released even if an earlier step fails; the returned
// error joins whatever went wrong. It is a no-op when not connected.
func (c *Client) Disconnect() error {
	return c.disconnect(nil)
}

// disconnect tears down the session using conn; nil means the current one.
func (c *Client) disconnect(expected net.Conn) error {
	c.mu.Lock()
	conn := c.conn
	if conn == nil || c.closing || (expected != nil && conn != expected) {
		c.mu.Unlock()
		return nil
	}
	c.closing = true
	stop := c.stop
	c.mu.Unlock()

	// A write stuck on a peer that stopped reading holds the write lock;
	// shorten its deadline so QUIT gets its turn.
	_ = conn.SetWriteDeadline(time.Now().Add(c.quitTimeout))

	c.events.Emit(Event{Kind: EventDisconnect})

	var errs []error
	if err := c.Quit(); err != nil {
		errs = append(errs, err)
	}

	c.state.stopReceiving()
	if stop != nil {
		stop()
	}
	if err := conn.Close(); err != nil {
		errs = append(errs, boterrors.NewTransportError("close", err))
	}

	c.mu.Lock()
	c.conn = nil
	c.writer = nil
	c.stop = nil
	c.closing = false
	c.state.markDisconnected()
	c.mu.Unlock()

	c.logger.Info("Disconnected from IRC server")
	return stderrors.Join(errs...)
}

// Shutdown stops the read loop and disconnects. The blocked read returns
// promptly because the socket is closed. Safe to call from any goroutine,
// including concurrently with an in-flight read.
func (c *Client) Shutdown() {
	c.shutdownSession(nil)
}

func (c *Client) shutdownSession(expected net.Conn) {
	c.mu.Lock()
	if c.conn == nil || (expected != nil && c.conn != expected) {
		c.mu.Unlock()
		return
	}
	c.state.requestShutdown()
	c.mu.Unlock()

	c.logger.Info("Shutting down IRC session")
	_ = c.disconnect(expected)
}

// Wait blocks until the current read loop has exited. It returns at once if
// Connect was never called.
func (c *Client) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// IsConnected returns whether a session is open
func (c *Client) IsConnected() bool {
	return c.state.IsConnected()
}

// Nick returns the nickname last confirmed by the server
func (c *Client) Nick() string {
	return c.state.Nickname()
}

// LastLine returns the most recent raw line received
func (c *Client) LastLine() string {
	c.lineMu.RLock()
	defer c.lineMu.RUnlock()
	return c.lastLine
}

func (c *Client) setLastLine(line string) {
	c.lineMu.Lock()
	c.lastLine = line
	c.lineMu.Unlock()
}

// AddOwner marks nick as an owner
func (c *Client) AddOwner(nick string) {
	c.state.addOwner(nick)
}

// RemoveOwner removes nick from the owners and reports whether it was one
func (c *Client) RemoveOwner(nick string) bool {
	return c.state.removeOwner(nick)
}

// IsOwner reports whether nick is an owner
func (c *Client) IsOwner(nick string) bool {
	return c.state.IsOwner(nick)
}

// Owners returns the current owners, sorted
func (c *Client) Owners() []string {
	return c.state.Owners()
}

// SetQuitMessage changes the text sent with QUIT
func (c *Client) SetQuitMessage(text string) {
	c.state.setQuitMessage(text)
}

// SetVersion changes the CTCP VERSION reply
func (c *Client) SetVersion(version string) {
	c.state.setVersionReply(version)
}
