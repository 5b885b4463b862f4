package application

import (
	"log/slog"
	"sync"
	"time"
)

// TaskHandle tracks at most one detached unit of background work. Starting a
// new task replaces the tracked one; a replaced task keeps running but is no
// longer joined. There is no cancellation: shutdown waits with a bounded Join
// and then moves on.
type TaskHandle struct {
	logger *slog.Logger

	mu   sync.Mutex
	name string
	done chan struct{}
}

func NewTaskHandle(logger *slog.Logger) *TaskHandle {
	return &TaskHandle{logger: logger}
}

// Start runs job on its own goroutine and returns immediately. Panics inside
// job are recovered and logged; a detached task must never take the process
// down.
func (h *TaskHandle) Start(name string, job func()) {
	done := make(chan struct{})

	h.mu.Lock()
	if h.done != nil {
		select {
		case <-h.done:
		default:
			h.logger.Warn("orphaning unfinished background task", "task", h.name)
		}
	}
	h.name = name
	h.done = done
	h.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("background task panicked", "task", name, "panic", r)
			}
		}()
		job()
	}()
}

// Running reports whether the tracked task is still in flight.
func (h *TaskHandle) Running() bool {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Join blocks up to timeout for the tracked task and reports whether it
// finished. A non-positive timeout is an immediate check. The task is never
// killed on timeout.
func (h *TaskHandle) Join(timeout time.Duration) bool {
	h.mu.Lock()
	name := h.name
	done := h.done
	h.mu.Unlock()

	if done == nil {
		return true
	}

	if timeout <= 0 {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		h.logger.Warn("background task did not finish in time", "task", name, "timeout", timeout)
		return false
	}
}
