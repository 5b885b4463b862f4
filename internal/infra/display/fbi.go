package display

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// FBI shows images on the console framebuffer by spawning the fbi viewer.
// Exactly one child process exists at a time; Show replaces it by terminating
// the old viewer before spawning the new one. Termination escalates to
// SIGKILL when the viewer ignores SIGTERM.
type FBI struct {
	argv        []string
	termTimeout time.Duration
	logger      *slog.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan error
}

func New(logger *slog.Logger) *FBI {
	return NewWithCommand([]string{"sudo", "fbi", "-T", "1", "--noverbose"}, 2*time.Second, logger)
}

// NewWithCommand uses argv as the viewer command; the image path is appended
// as the last argument.
func NewWithCommand(argv []string, termTimeout time.Duration, logger *slog.Logger) *FBI {
	return &FBI{
		argv:        argv,
		termTimeout: termTimeout,
		logger:      logger,
	}
}

func (d *FBI) Show(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("image not found: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	args := append(append([]string(nil), d.argv[1:]...), abs)
	cmd := exec.Command(d.argv[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting viewer: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	d.cmd = cmd
	d.done = done
	d.logger.Debug("viewer started", "pid", cmd.Process.Pid, "image", abs)
	return nil
}

func (d *FBI) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	return nil
}

func (d *FBI) stopLocked() {
	if d.cmd == nil {
		return
	}
	cmd, done := d.cmd, d.done
	d.cmd, d.done = nil, nil

	select {
	case <-done:
		return
	default:
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		d.logger.Warn("terminating viewer", "error", err)
	}

	select {
	case <-done:
	case <-time.After(d.termTimeout):
		d.logger.Warn("viewer did not terminate, killing it", "pid", cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil {
			d.logger.Error("killing viewer", "error", err)
		}
		<-done
	}
}
