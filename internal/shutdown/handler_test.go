package shutdown

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yourusername/ircbot/internal/output"
)

func TestShutdown_RunsStepsInOrderOnce(t *testing.T) {
	h := newHandler(output.NopLogger{}, time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string, err error) func() error {
		return func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return err
		}
	}
	h.RegisterShutdownFunc("client", record("client", nil))
	h.RegisterShutdownFunc("database", record("database", errors.New("locked")))
	h.RegisterShutdownFunc("log", record("log", nil))

	h.Shutdown()
	h.Shutdown()

	select {
	case <-h.Done():
	default:
		t.Fatal("Done() not closed after Shutdown()")
	}
	if h.Context().Err() == nil {
		t.Error("Context() not cancelled")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "client" || order[1] != "database" || order[2] != "log" {
		t.Errorf("steps ran as %v", order)
	}
}

func TestShutdown_ForceTimeout(t *testing.T) {
	h := newHandler(output.NopLogger{}, 50*time.Millisecond)
	block := make(chan struct{})
	defer close(block)
	h.RegisterShutdownFunc("stuck", func() error {
		<-block
		return nil
	})

	start := time.Now()
	h.Shutdown()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Shutdown() took %v, want about the force timeout", elapsed)
	}
}

func TestWait_Trigger(t *testing.T) {
	h := newHandler(output.NopLogger{}, time.Second)

	returned := make(chan struct{})
	go func() {
		h.Wait()
		close(returned)
	}()

	h.Trigger("quit command")
	h.Trigger("again")

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after Trigger()")
	}
	if h.Context().Err() == nil {
		t.Error("Context() not cancelled")
	}
}
