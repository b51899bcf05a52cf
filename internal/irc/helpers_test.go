package irc

import (
	"bufio"
	"net"
	"sync"
	"testing"
	"time"

	ircv4 "gopkg.in/irc.v4"

	"github.com/yourusername/ircbot/internal/config"
	"github.com/yourusername/ircbot/internal/output"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Nickname = "bot"
	cfg.Server.ConnectTimeout = 2
	cfg.Bot.Channels = nil
	cfg.Bot.Owners = []string{"alice"}
	cfg.Bot.QuitMessage = "bye"
	cfg.Bot.Version = "ircbot 1.0"
	cfg.Bot.RequestTopicOnJoin = false
	return cfg
}

// lineRecorder collects every line the client writes
type lineRecorder struct {
	lines chan string
}

func (r *lineRecorder) next(t *testing.T) string {
	t.Helper()
	select {
	case line := <-r.lines:
		return line
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an outbound line")
		return ""
	}
}

func (r *lineRecorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case line := <-r.lines:
		t.Fatalf("unexpected outbound line %q", line)
	case <-time.After(50 * time.Millisecond):
	}
}

// newPipeClient returns a client marked connected whose writes land in the
// returned recorder. No read loop runs; tests feed lines with handleLine.
func newPipeClient(t *testing.T, cfg *config.Config) (*Client, *lineRecorder) {
	t.Helper()

	c := NewClient(cfg, nil)
	local, remote := net.Pipe()
	rec := &lineRecorder{lines: make(chan string, 64)}

	go func() {
		scanner := bufio.NewScanner(remote)
		for scanner.Scan() {
			line := scanner.Text()
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			rec.lines <- line
		}
	}()

	c.conn = local
	c.writer = ircv4.NewWriter(local)
	c.state.markConnected()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	return c, rec
}

// eventLog records every event kind it is subscribed to, in order
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) kinds() []EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventKind, len(l.events))
	for i, e := range l.events {
		out[i] = e.Kind
	}
	return out
}

func (l *eventLog) all() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func (l *eventLog) count(kind EventKind) int {
	n := 0
	for _, k := range l.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// watchAll records every classified event. Received fires for every parsed
// line and is watched separately.
func watchAll(events *Events) *eventLog {
	log := &eventLog{}
	for kind := range eventNames {
		if kind == EventReceived {
			continue
		}
		events.Subscribe(kind, log.record)
	}
	return log
}

func equalKinds(a, b []EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// newStalledClient returns a connected client whose peer never reads, so
// every write blocks until its deadline
func newStalledClient(t *testing.T) *Client {
	t.Helper()

	c := NewClient(testConfig(), nil)
	c.writeTimeout = 100 * time.Millisecond
	c.quitTimeout = 50 * time.Millisecond
	local, remote := net.Pipe()
	c.conn = local
	c.writer = ircv4.NewWriter(local)
	c.state.markConnected()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	return c
}

// countingLogger counts every line written through it
type countingLogger struct {
	output.NopLogger
	mu    sync.Mutex
	lines []string
}

func (l *countingLogger) add(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

func (l *countingLogger) Info(format string, args ...interface{}) { l.add(format) }
func (l *countingLogger) Warning(format string, args ...interface{}) { l.add(format) }
func (l *countingLogger) Error(format string, args ...interface{}) { l.add(format) }
func (l *countingLogger) ChannelMessage(channel, nick, message string) {
	l.add(channel + " <" + nick + "> " + message)
}
func (l *countingLogger) PrivateMessage(nick, message string) { l.add("<" + nick + "> " + message) }

func (l *countingLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
