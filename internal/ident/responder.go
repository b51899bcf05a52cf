// Package ident implements the one-shot RFC 1413 responder many IRC servers
// query while a client registers.
package ident

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/ircbot/internal/config"
	boterrors "github.com/yourusername/ircbot/internal/errors"
	"github.com/yourusername/ircbot/internal/output"
)

// Responder answers exactly one ident query per Respond call
type Responder struct {
	address       string
	identity      string
	acceptTimeout time.Duration
	readTimeout   time.Duration
	logger        output.Logger

	mu        sync.Mutex
	onSuccess func(query, reply string)
	onFailure func(err error)
}

// New creates a responder that reports identity for every query
func New(cfg config.IdentConfig, identity string, logger output.Logger) *Responder {
	if logger == nil {
		logger = output.NopLogger{}
	}
	return &Responder{
		address:       cfg.Address,
		identity:      identity,
		acceptTimeout: cfg.GetAcceptTimeoutDuration(),
		readTimeout:   cfg.GetReadTimeoutDuration(),
		logger:        logger,
	}
}

// OnSuccess registers a callback fired after a reply is written
func (r *Responder) OnSuccess(fn func(query, reply string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSuccess = fn
}

// OnFailure registers a callback fired when a query could not be answered
func (r *Responder) OnFailure(fn func(err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFailure = fn
}

// Reply formats the answer to query
func Reply(query, identity string) string {
	return query + " : USERID : OTHER : " + identity
}

// Listen binds the configured address
func (r *Responder) Listen(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", r.address)
	if err != nil {
		return nil, boterrors.NewTransportError("ident listen", err)
	}
	return ln, nil
}

// Respond listens, answers one query and stops listening
func (r *Responder) Respond(ctx context.Context) error {
	ln, err := r.Listen(ctx)
	if err != nil {
		r.fail(err)
		return err
	}
	defer ln.Close()
	return r.Serve(ctx, ln)
}

// Serve accepts one connection on ln and answers its query. It returns when
// the query is answered, the accept or read timeout expires, or ctx ends.
// ln is not closed.
func (r *Responder) Serve(ctx context.Context, ln net.Listener) error {
	if err := r.serve(ctx, ln); err != nil {
		r.fail(err)
		return err
	}
	return nil
}

func (r *Responder) serve(ctx context.Context, ln net.Listener) error {
	if d, ok := ln.(interface{ SetDeadline(time.Time) error }); ok && r.acceptTimeout > 0 {
		if err := d.SetDeadline(time.Now().Add(r.acceptTimeout)); err != nil {
			return boterrors.NewTransportError("ident deadline", err)
		}
	}

	// Unblock Accept when ctx ends
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			if d, ok := ln.(interface{ SetDeadline(time.Time) error }); ok {
				_ = d.SetDeadline(time.Now())
			}
		case <-stop:
		}
	}()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return boterrors.NewTransportError("ident accept", err)
	}
	defer conn.Close()

	if r.readTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(r.readTimeout))
	}

	query, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && query == "" {
		return boterrors.NewTransportError("ident read", err)
	}
	query = strings.TrimRight(query, "\r\n")

	reply := Reply(query, r.identity)
	if _, err := fmt.Fprintf(conn, "%s\r\n", reply); err != nil {
		return boterrors.NewTransportError("ident write", err)
	}

	r.logger.Info("Answered ident query from %s: %s", conn.RemoteAddr(), query)
	r.mu.Lock()
	onSuccess := r.onSuccess
	r.mu.Unlock()
	if onSuccess != nil {
		onSuccess(query, reply)
	}
	return nil
}

func (r *Responder) fail(err error) {
	r.logger.Warning("Ident query not answered: %v", err)
	r.mu.Lock()
	onFailure := r.onFailure
	r.mu.Unlock()
	if onFailure != nil {
		onFailure(err)
	}
}
