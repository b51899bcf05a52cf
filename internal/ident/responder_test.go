package ident

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/ircbot/internal/config"
)

func testConfig() config.IdentConfig {
	return config.IdentConfig{
		Enabled:       true,
		Address:       "127.0.0.1:0",
		AcceptTimeout: 2,
		ReadTimeout:   2,
	}
}

func TestReply(t *testing.T) {
	got := Reply("6667, 113", "ircbot")
	want := "6667, 113 : USERID : OTHER : ircbot"
	if got != want {
		t.Errorf("Reply() = %q, want %q", got, want)
	}
}

func TestServeAnswersOneQuery(t *testing.T) {
	r := New(testConfig(), "bot", nil)

	var gotQuery string
	succeeded := make(chan struct{})
	r.OnSuccess(func(query, reply string) {
		gotQuery = query
		close(succeeded)
	})

	ctx := context.Background()
	ln, err := r.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	errc := make(chan error, 1)
	go func() { errc <- r.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("50000, 6667\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if want := "50000, 6667 : USERID : OTHER : bot\r\n"; line != want {
		t.Errorf("reply = %q, want %q", line, want)
	}
	if err := <-errc; err != nil {
		t.Errorf("Serve() error = %v", err)
	}

	select {
	case <-succeeded:
	case <-time.After(time.Second):
		t.Fatal("OnSuccess was not called")
	}
	if gotQuery != "50000, 6667" {
		t.Errorf("OnSuccess query = %q, want %q", gotQuery, "50000, 6667")
	}
}

func TestServeAcceptTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.AcceptTimeout = 1
	r := New(cfg, "bot", nil)

	failed := make(chan error, 1)
	r.OnFailure(func(err error) { failed <- err })

	ln, err := r.Listen(context.Background())
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	if err := r.Serve(context.Background(), ln); err == nil {
		t.Fatal("Serve() error = nil, want timeout")
	}
	select {
	case <-failed:
	default:
		t.Error("OnFailure was not called")
	}
}

func TestServeContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.AcceptTimeout = 30
	r := New(cfg, "bot", nil)

	ln, err := r.Listen(context.Background())
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Serve(ctx, ln) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err == nil || !strings.Contains(err.Error(), "canceled") {
			t.Errorf("Serve() error = %v, want context canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRespondListenFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Address = "256.0.0.1:113"
	r := New(cfg, "bot", nil)

	if err := r.Respond(context.Background()); err == nil {
		t.Error("Respond() error = nil, want listen failure")
	}
}
