package application

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTaskHandle_NoTask(t *testing.T) {
	h := NewTaskHandle(discardLogger())

	if h.Running() {
		t.Error("fresh handle should not report running")
	}
	if !h.Join(0) {
		t.Error("joining with no task should succeed")
	}
}

func TestTaskHandle_JoinWaitsForTask(t *testing.T) {
	h := NewTaskHandle(discardLogger())

	release := make(chan struct{})
	h.Start("slow", func() {
		<-release
	})

	if !h.Running() {
		t.Fatal("task should be running")
	}
	if h.Join(0) {
		t.Error("immediate join should fail while task runs")
	}

	close(release)
	if !h.Join(time.Second) {
		t.Error("join should succeed once the task finishes")
	}
	if h.Running() {
		t.Error("finished task should not report running")
	}
}

func TestTaskHandle_JoinTimesOut(t *testing.T) {
	h := NewTaskHandle(discardLogger())

	release := make(chan struct{})
	defer close(release)
	h.Start("stuck", func() {
		<-release
	})

	start := time.Now()
	if h.Join(20 * time.Millisecond) {
		t.Error("join should time out while task is stuck")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("join returned before the timeout: %v", elapsed)
	}
}

func TestTaskHandle_StartReplacesTrackedTask(t *testing.T) {
	h := NewTaskHandle(discardLogger())

	orphanDone := make(chan struct{})
	release := make(chan struct{})
	h.Start("first", func() {
		<-release
		close(orphanDone)
	})

	h.Start("second", func() {})

	// Join tracks only the newest task; the orphan is still blocked.
	if !h.Join(time.Second) {
		t.Fatal("join should follow the replacement task")
	}

	select {
	case <-orphanDone:
		t.Fatal("orphan should still be running after join")
	default:
	}

	// The orphan keeps running to completion on its own.
	close(release)
	select {
	case <-orphanDone:
	case <-time.After(time.Second):
		t.Fatal("orphaned task never finished")
	}
}

func TestTaskHandle_PanicIsContained(t *testing.T) {
	h := NewTaskHandle(discardLogger())

	h.Start("exploding", func() {
		panic("boom")
	})

	if !h.Join(time.Second) {
		t.Error("panicking task should still complete")
	}
	if h.Running() {
		t.Error("panicked task should not report running")
	}
}
