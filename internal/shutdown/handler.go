// Package shutdown coordinates process exit: it waits for SIGINT/SIGTERM or
// an internal request, cancels the root context and runs cleanup steps once.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yourusername/ircbot/internal/output"
)

type step struct {
	name string
	fn   func() error
}

// Handler manages graceful shutdown of the bot
type Handler struct {
	logger       output.Logger
	forceTimeout time.Duration

	mu    sync.Mutex
	steps []step

	ctx     context.Context
	cancel  context.CancelFunc
	trigger chan string
	done    chan struct{}
	signals chan os.Signal
	once    sync.Once
}

// NewHandler creates a shutdown handler listening for SIGINT and SIGTERM
func NewHandler(logger output.Logger, forceTimeout time.Duration) *Handler {
	h := newHandler(logger, forceTimeout)
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	return h
}

func newHandler(logger output.Logger, forceTimeout time.Duration) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		logger:       logger,
		forceTimeout: forceTimeout,
		ctx:          ctx,
		cancel:       cancel,
		trigger:      make(chan string, 1),
		done:         make(chan struct{}),
		signals:      make(chan os.Signal, 1),
	}
}

// Context is cancelled as soon as shutdown begins
func (h *Handler) Context() context.Context {
	return h.ctx
}

// RegisterShutdownFunc registers a cleanup step. Steps run in registration
// order.
func (h *Handler) RegisterShutdownFunc(name string, fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps = append(h.steps, step{name: name, fn: fn})
}

// Trigger asks Wait to return and shut down. Safe to call more than once
// and from any goroutine.
func (h *Handler) Trigger(reason string) {
	select {
	case h.trigger <- reason:
	default:
	}
}

// Wait blocks until a signal arrives or Trigger is called, then shuts down
func (h *Handler) Wait() {
	select {
	case sig := <-h.signals:
		h.logger.Info("Received signal: %v", sig)
	case reason := <-h.trigger:
		h.logger.Info("Shutdown requested: %s", reason)
	}
	h.Shutdown()
}

// Shutdown cancels Context and runs the cleanup steps, giving up after the
// force timeout
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.logger.Info("Initiating graceful shutdown...")
		h.cancel()

		finished := make(chan struct{})
		go func() {
			h.runSteps()
			close(finished)
		}()

		timer := time.NewTimer(h.forceTimeout)
		defer timer.Stop()

		select {
		case <-finished:
			h.logger.Success("Graceful shutdown completed")
		case <-timer.C:
			h.logger.Warning("Forced shutdown after %v", h.forceTimeout)
		}
		close(h.done)
	})
}

func (h *Handler) runSteps() {
	h.mu.Lock()
	steps := make([]step, len(h.steps))
	copy(steps, h.steps)
	h.mu.Unlock()

	for _, s := range steps {
		if err := s.fn(); err != nil {
			h.logger.Error("Shutdown step %s failed: %v", s.name, err)
		}
	}
}

// Done returns a channel that is closed when shutdown is complete
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Stop stops listening for signals
func (h *Handler) Stop() {
	signal.Stop(h.signals)
}
