package gallery

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Gallery is the saved-image directory. Nothing is cached: the background
// task and the Stable Diffusion client write here concurrently, so every read
// re-lists the directory.
type Gallery struct {
	dir string
	now func() time.Time
}

func New(dir string) *Gallery {
	return &Gallery{dir: dir, now: time.Now}
}

func (g *Gallery) EnsureDir() error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("creating gallery dir: %w", err)
	}
	return nil
}

// List returns the paths of all saved images, freshly read from storage.
func (g *Gallery) List() ([]string, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, fmt.Errorf("reading gallery dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ".png" {
			continue
		}
		paths = append(paths, filepath.Join(g.dir, entry.Name()))
	}
	return paths, nil
}

// Random picks a saved image uniformly at random. The currently shown image
// is excluded when at least one alternative exists; with nothing else to
// offer Random returns "".
func (g *Gallery) Random(exclude string) (string, error) {
	paths, err := g.List()
	if err != nil {
		return "", err
	}

	if exclude != "" {
		filtered := paths[:0]
		for _, p := range paths {
			if filepath.Clean(p) != filepath.Clean(exclude) {
				filtered = append(filtered, p)
			}
		}
		paths = filtered
	}

	if len(paths) == 0 {
		return "", nil
	}
	return paths[rand.IntN(len(paths))], nil
}

// Archive copies src into the gallery under a capture-timestamp name.
func (g *Gallery) Archive(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	dst := filepath.Join(g.dir, g.now().Format("20060102-150405")+".png")
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", dst, err)
	}
	return dst, nil
}
