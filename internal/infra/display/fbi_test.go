package display

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// The viewer is faked with tail -f: it blocks forever, accepts any trailing
// file argument, and dies cleanly on SIGTERM.
func newTestViewer() *FBI {
	return NewWithCommand([]string{"tail", "-f"}, 500*time.Millisecond, testLogger())
}

func TestFBI_ShowMissingImage(t *testing.T) {
	d := newTestViewer()
	defer d.Close()

	if err := d.Show(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing image")
	}
}

func TestFBI_ShowStartsViewer(t *testing.T) {
	d := newTestViewer()
	defer d.Close()

	if err := d.Show(testImage(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d.mu.Lock()
	cmd := d.cmd
	d.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		t.Fatal("no viewer process running after Show")
	}
}

func TestFBI_ShowReplacesViewer(t *testing.T) {
	d := newTestViewer()
	defer d.Close()

	if err := d.Show(testImage(t)); err != nil {
		t.Fatalf("first show: %v", err)
	}
	d.mu.Lock()
	firstPid := d.cmd.Process.Pid
	d.mu.Unlock()

	if err := d.Show(testImage(t)); err != nil {
		t.Fatalf("second show: %v", err)
	}
	d.mu.Lock()
	secondPid := d.cmd.Process.Pid
	d.mu.Unlock()

	if firstPid == secondPid {
		t.Fatal("second show did not spawn a new viewer")
	}

	// The first viewer must be gone; signalling a reaped process fails.
	if err := syscall.Kill(firstPid, syscall.Signal(0)); err == nil {
		t.Errorf("first viewer (pid %d) still alive", firstPid)
	}
}

func TestFBI_CloseTerminatesViewer(t *testing.T) {
	d := newTestViewer()

	if err := d.Show(testImage(t)); err != nil {
		t.Fatalf("show: %v", err)
	}
	d.mu.Lock()
	pid := d.cmd.Process.Pid
	d.mu.Unlock()

	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := syscall.Kill(pid, syscall.Signal(0)); err == nil {
		t.Errorf("viewer (pid %d) still alive after close", pid)
	}

	// A second close with no viewer is fine.
	if err := d.Close(); err != nil {
		t.Errorf("idempotent close failed: %v", err)
	}
}
