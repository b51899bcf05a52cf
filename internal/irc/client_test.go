package irc

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	boterrors "github.com/yourusername/ircbot/internal/errors"
)

// fakeServer accepts client sessions on a loopback port
type fakeServer struct {
	ln    net.Listener
	conns chan net.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, conns: make(chan net.Conn, 4)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.conns <- conn
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeServer) hostPort(t *testing.T) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(s.ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func (s *fakeServer) accept(t *testing.T) *serverConn {
	t.Helper()
	select {
	case conn := <-s.conns:
		t.Cleanup(func() { conn.Close() })
		return &serverConn{conn: conn, r: bufio.NewReader(conn)}
	case <-time.After(2 * time.Second):
		t.Fatal("no client connected")
		return nil
	}
}

type serverConn struct {
	conn net.Conn
	r    *bufio.Reader
}

func (sc *serverConn) readLine(t *testing.T) string {
	t.Helper()
	_ = sc.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := sc.r.ReadString('\n')
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	if !strings.HasSuffix(line, "\r\n") {
		t.Fatalf("line %q is not CRLF terminated", line)
	}
	return strings.TrimSuffix(line, "\r\n")
}

func (sc *serverConn) send(t *testing.T, line string) {
	t.Helper()
	if _, err := sc.conn.Write([]byte(line + "\r\n")); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func (sc *serverConn) expectEOF(t *testing.T) {
	t.Helper()
	_ = sc.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := sc.r.ReadString('\n')
	if err == nil {
		t.Fatalf("expected EOF, got line %q", line)
	}
}

// connectClient connects c to s and consumes the login lines
func connectClient(t *testing.T, c *Client, s *fakeServer) *serverConn {
	t.Helper()
	host, port := s.hostPort(t)
	if err := c.Connect(context.Background(), host, port); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	sc := s.accept(t)
	nick := c.Nick()
	if got, want := sc.readLine(t), "NICK "+nick; got != want {
		t.Fatalf("first line = %q, want %q", got, want)
	}
	if got, want := sc.readLine(t), "USER "+nick+" 0 * :"+nick; got != want {
		t.Fatalf("second line = %q, want %q", got, want)
	}
	return sc
}

func waitClient(t *testing.T, c *Client) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not exit")
	}
}

func TestConnect_LoginAndDisconnect(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)
	log := watchAll(c.Events())

	sc := connectClient(t, c, s)

	if !c.IsConnected() {
		t.Fatal("IsConnected() = false after Connect")
	}
	want := []EventKind{EventConnect, EventLogin}
	if got := log.kinds(); !equalKinds(got, want) {
		t.Errorf("events after Connect = %v, want %v", got, want)
	}

	if err := c.Disconnect(); err != nil {
		t.Errorf("Disconnect() error = %v", err)
	}
	if got := sc.readLine(t); got != "QUIT bye" {
		t.Errorf("line = %q, want %q", got, "QUIT bye")
	}
	sc.expectEOF(t)
	waitClient(t, c)

	if c.IsConnected() {
		t.Error("IsConnected() = true after Disconnect")
	}
	want = []EventKind{EventConnect, EventLogin, EventDisconnect}
	if got := log.kinds(); !equalKinds(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}

	// Second Disconnect is a no-op
	if err := c.Disconnect(); err != nil {
		t.Errorf("second Disconnect() error = %v", err)
	}
	if n := log.count(EventDisconnect); n != 1 {
		t.Errorf("Disconnect fired %d times, want 1", n)
	}
}

func TestConnect_WhileConnected(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)
	connectClient(t, c, s)
	defer c.Disconnect()

	host, port := s.hostPort(t)
	if err := c.Connect(context.Background(), host, port); err == nil {
		t.Error("second Connect() error = nil, want already connected")
	}
}

func TestConnect_DialFailure(t *testing.T) {
	c := NewClient(testConfig(), nil)
	c.SetDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, fmt.Errorf("connection refused")
	})

	connects := 0
	c.Events().OnConnect(func() { connects++ })

	err := c.Connect(context.Background(), "irc.invalid", 6667)
	if !boterrors.IsType(err, boterrors.ErrorTypeTransport) {
		t.Errorf("Connect() error = %v, want transport error", err)
	}
	if c.IsConnected() || connects != 0 {
		t.Error("failed Connect left the client connected")
	}
	c.Wait()
}

func TestConnect_StartsIdentResponder(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)

	called := make(chan struct{})
	c.SetIdentResponder(identFunc(func(ctx context.Context) error {
		close(called)
		return stderrors.New("ident refused")
	}))

	connectClient(t, c, s)
	defer c.Disconnect()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("ident responder was not started")
	}
	if !c.IsConnected() {
		t.Error("ident failure should not affect the session")
	}
}

type identFunc func(ctx context.Context) error

func (f identFunc) Respond(ctx context.Context) error { return f(ctx) }

func TestReadLoop_DispatchesLines(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)

	got := make(chan *Message, 1)
	c.Events().OnChannelMessage(func(m *Message) { got <- m })

	sc := connectClient(t, c, s)
	defer c.Disconnect()

	sc.send(t, "PING :irc.example.net")
	if line := sc.readLine(t); line != "PONG :irc.example.net" {
		t.Errorf("reply = %q, want PONG", line)
	}

	sc.send(t, ":a!b@c PRIVMSG #chan :hello")
	select {
	case m := <-got:
		if m.Trailing() != "hello" {
			t.Errorf("Trailing() = %q, want hello", m.Trailing())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ChannelMessage did not fire")
	}
	if c.LastLine() != ":a!b@c PRIVMSG #chan :hello" {
		t.Errorf("LastLine() = %q", c.LastLine())
	}
}

func TestReadLoop_PeerCloseDisconnects(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)

	disconnected := make(chan struct{})
	c.Events().OnDisconnect(func() { close(disconnected) })

	sc := connectClient(t, c, s)
	sc.conn.Close()

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnect did not fire after the peer closed")
	}
	waitClient(t, c)
	if c.IsConnected() {
		t.Error("IsConnected() = true after peer close")
	}
}

func TestShutdown_UnblocksRead(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)
	sc := connectClient(t, c, s)

	c.Shutdown()
	waitClient(t, c)

	if c.IsConnected() {
		t.Error("IsConnected() = true after Shutdown")
	}
	if !c.State().ShutdownRequested() {
		t.Error("ShutdownRequested() = false after Shutdown")
	}
	if got := sc.readLine(t); got != "QUIT bye" {
		t.Errorf("line = %q, want QUIT", got)
	}

	// Shutdown of an idle client is harmless
	c.Shutdown()
}

func TestConnect_ContextCancelShutsDown(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)
	host, port := s.hostPort(t)

	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Connect(ctx, host, port); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	s.accept(t)

	cancel()
	waitClient(t, c)

	if c.IsConnected() {
		t.Error("IsConnected() = true after context cancel")
	}
}

func TestShutdownFlagPolled(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)
	connectClient(t, c, s)

	// Raise the flag without closing anything; the watcher must notice
	c.State().requestShutdown()
	waitClient(t, c)

	if c.IsConnected() {
		t.Error("IsConnected() = true after flag shutdown")
	}
}

func TestDisconnect_FromHandler(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)
	c.Events().OnQueryMessage(func(m *Message) {
		if m.Trailing() == "quit" {
			_ = c.Disconnect()
		}
	})

	sc := connectClient(t, c, s)
	sc.send(t, ":alice!a@h PRIVMSG bot :quit")

	if got := sc.readLine(t); got != "QUIT bye" {
		t.Errorf("line = %q, want QUIT", got)
	}
	waitClient(t, c)
}

func TestReconnect(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)

	connectClient(t, c, s)
	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	waitClient(t, c)

	if err := c.ChangeNickOffline("bot2"); err != nil {
		t.Fatalf("ChangeNickOffline() error = %v", err)
	}
	sc := connectClient(t, c, s)
	defer c.Disconnect()

	sc.send(t, ":bot2!b@h NICK :bot3")
	deadline := time.Now().Add(2 * time.Second)
	for c.Nick() != "bot3" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Nick() != "bot3" {
		t.Errorf("Nick() = %q, want bot3", c.Nick())
	}
}

func TestConcurrentSendsDoNotInterleave(t *testing.T) {
	s := newFakeServer(t)
	c := NewClient(testConfig(), nil)
	sc := connectClient(t, c, s)
	defer c.Disconnect()

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	var failures atomic.Int32
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := c.Send("#chan", fmt.Sprintf("writer-%d message-%d", w, i)); err != nil {
					failures.Add(1)
				}
			}
		}(w)
	}

	seen := make(map[string]bool)
	for i := 0; i < writers*perWriter; i++ {
		line := sc.readLine(t)
		if !strings.HasPrefix(line, "PRIVMSG #chan :writer-") || strings.Count(line, "PRIVMSG") != 1 {
			t.Fatalf("interleaved line %q", line)
		}
		seen[line] = true
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("%d sends failed", failures.Load())
	}
	if len(seen) != writers*perWriter {
		t.Errorf("saw %d distinct lines, want %d", len(seen), writers*perWriter)
	}
}

func TestSendCommands(t *testing.T) {
	tests := []struct {
		name string
		send func(c *Client) error
		want string
	}{
		{"privmsg", func(c *Client) error { return c.Send("#chan", "hello there") }, "PRIVMSG #chan :hello there"},
		{"notice", func(c *Client) error { return c.SendNotice("alice", "psst") }, "NOTICE alice psst"},
		{"ctcp request", func(c *Client) error { return c.SendCtcpRequest("alice", "VERSION") }, "PRIVMSG alice \x01VERSION\x01"},
		{"action", func(c *Client) error { return c.SendAction("#chan", "waves") }, "PRIVMSG #chan :\x01ACTION waves\x01"},
		{"raw", func(c *Client) error { return c.SendRaw("MODE #chan +o alice") }, "MODE #chan +o alice"},
		{"raw strips line breaks", func(c *Client) error { return c.SendRaw("PRIVMSG #c :a\r\nQUIT :x") }, "PRIVMSG #c :aQUIT :x"},
		{"params strip line breaks", func(c *Client) error { return c.Send("#chan", "a\r\nQUIT :x") }, "PRIVMSG #chan :aQUIT :x"},
		{"quit", func(c *Client) error { return c.Quit() }, "QUIT bye"},
		{"quit without message", func(c *Client) error {
			c.SetQuitMessage("")
			return c.Quit()
		}, "QUIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newPipeClient(t, testConfig())
			if err := tt.send(c); err != nil {
				t.Fatalf("send error = %v", err)
			}
			if got := rec.next(t); got != tt.want {
				t.Errorf("line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendRoundTrip(t *testing.T) {
	c, rec := newPipeClient(t, testConfig())
	c.SetQuitMessage("see you")

	sends := []struct {
		send    func() error
		command string
		params  []string
	}{
		{func() error { return c.Send("#chan", "hi all") }, "PRIVMSG", []string{"#chan"}},
		{func() error { return c.SendNotice("bob", "x") }, "NOTICE", []string{"bob", "x"}},
		{func() error { return c.JoinChannel("#a,#b") }, "JOIN", []string{"#a,#b"}},
		{func() error { return c.LeaveChannel("#a") }, "PART", []string{"#a"}},
		{func() error { return c.ChangeNick("other") }, "NICK", []string{"other"}},
		{func() error { return c.Quit() }, "QUIT", nil},
	}

	for _, s := range sends {
		if err := s.send(); err != nil {
			t.Fatalf("send error = %v", err)
		}
		line := rec.next(t)
		msg, err := ParseMessage(line)
		if err != nil {
			t.Fatalf("ParseMessage(%q) error = %v", line, err)
		}
		if msg.Command() != s.command || strings.Join(msg.Params(), " ") != strings.Join(s.params, " ") {
			t.Errorf("%q re-parsed as %s %q, want %s %q", line, msg.Command(), msg.Params(), s.command, s.params)
		}
	}
}

func TestJoinAndLeaveChannels(t *testing.T) {
	c, rec := newPipeClient(t, testConfig())
	log := watchAll(c.Events())

	if err := c.JoinChannel("#a, #b"); err != nil {
		t.Fatalf("JoinChannel() error = %v", err)
	}
	if got := rec.next(t); got != "JOIN #a,#b" {
		t.Errorf("line = %q, want %q", got, "JOIN #a,#b")
	}
	rec.expectNone(t)

	if err := c.LeaveChannel(" #b ,,#a "); err != nil {
		t.Fatalf("LeaveChannel() error = %v", err)
	}
	if got := rec.next(t); got != "PART #b,#a" {
		t.Errorf("line = %q, want %q", got, "PART #b,#a")
	}

	var channels []string
	for _, e := range log.all() {
		channels = append(channels, e.Kind.String()+" "+e.Channel)
	}
	want := []string{"JoinChannel #a", "JoinChannel #b", "PartChannel #b", "PartChannel #a"}
	if strings.Join(channels, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", channels, want)
	}

	// An empty list sends nothing and fires nothing
	if err := c.JoinChannel(" , "); err != nil {
		t.Errorf("JoinChannel(empty) error = %v", err)
	}
	rec.expectNone(t)
}

func TestJoinRequestsTopic(t *testing.T) {
	cfg := testConfig()
	cfg.Bot.RequestTopicOnJoin = true
	c, rec := newPipeClient(t, cfg)

	if err := c.JoinChannel("#a,#b"); err != nil {
		t.Fatalf("JoinChannel() error = %v", err)
	}
	for _, want := range []string{"JOIN #a,#b", "TOPIC #a", "TOPIC #b"} {
		if got := rec.next(t); got != want {
			t.Errorf("line = %q, want %q", got, want)
		}
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	c := NewClient(testConfig(), nil)

	if err := c.Send("#chan", "hi"); !stderrors.Is(err, ErrNotConnected) {
		t.Errorf("Send() error = %v, want ErrNotConnected", err)
	}
	if err := c.ChangeNick("x"); !stderrors.Is(err, ErrNotConnected) {
		t.Errorf("ChangeNick() error = %v, want ErrNotConnected", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Errorf("Disconnect() on idle client error = %v", err)
	}
}

func TestChangeNickOffline(t *testing.T) {
	c := NewClient(testConfig(), nil)
	if err := c.ChangeNickOffline("fresh"); err != nil {
		t.Fatalf("ChangeNickOffline() error = %v", err)
	}
	if c.Nick() != "fresh" {
		t.Errorf("Nick() = %q, want fresh", c.Nick())
	}

	connected, _ := newPipeClient(t, testConfig())
	if err := connected.ChangeNickOffline("nope"); !boterrors.IsType(err, boterrors.ErrorTypeValidation) {
		t.Errorf("ChangeNickOffline() while connected error = %v, want validation error", err)
	}
	if connected.Nick() != "bot" {
		t.Errorf("Nick() = %q, want bot", connected.Nick())
	}
}

func TestOwners(t *testing.T) {
	c := NewClient(testConfig(), nil)

	if !c.IsOwner("alice") || !c.IsOwner("ALICE") {
		t.Error("configured owner alice not recognised")
	}
	c.AddOwner("bob")
	if !c.IsOwner("bob") {
		t.Error("IsOwner(bob) = false after AddOwner")
	}
	if got := strings.Join(c.Owners(), ","); got != "alice,bob" {
		t.Errorf("Owners() = %q, want alice,bob", got)
	}
	if !c.RemoveOwner("bob") || c.RemoveOwner("bob") {
		t.Error("RemoveOwner should report true once, then false")
	}
	if c.IsOwner("bob") {
		t.Error("IsOwner(bob) = true after RemoveOwner")
	}
}

func TestSend_PeerNotReading(t *testing.T) {
	c := newStalledClient(t)

	start := time.Now()
	err := c.Send("#chan", "hello")
	if !boterrors.IsType(err, boterrors.ErrorTypeTransport) {
		t.Fatalf("Send() error = %v, want transport error", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Send() took %v on a stalled peer", elapsed)
	}
}

func TestShutdown_PeerNotReading(t *testing.T) {
	c := newStalledClient(t)
	c.writeTimeout = time.Hour

	// A send already blocked on the stalled peer holds the write lock
	sendDone := make(chan error, 1)
	go func() { sendDone <- c.Send("#chan", "stuck") }()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		c.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown() blocked on a peer that is not reading")
	}

	if c.IsConnected() {
		t.Error("IsConnected() = true after Shutdown")
	}
	select {
	case err := <-sendDone:
		if err == nil {
			t.Error("blocked Send() error = nil, want transport error")
		}
	case <-time.After(time.Second):
		t.Error("blocked Send() never returned")
	}
}
