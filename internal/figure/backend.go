package figure

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var ErrUnknownBackend = errors.New("figure: unknown backend")

// Backends lists the accepted output formats. "term" renders to a terminal
// and cannot be saved to a file.
var Backends = []string{"png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff", "term"}

var active = struct {
	sync.Mutex
	name string
}{name: "png"}

// Backend returns the process-wide output format used by Save when a path
// has no extension.
func Backend() string {
	active.Lock()
	defer active.Unlock()
	return active.name
}

func UseBackend(name string) error {
	name = strings.ToLower(name)
	if !slices.Contains(Backends, name) {
		return fmt.Errorf("%w: %s (available: %v)", ErrUnknownBackend, name, Backends)
	}
	active.Lock()
	active.name = name
	active.Unlock()
	return nil
}

// WithBackend switches the process-wide backend for the duration of fn and
// restores the previous one afterwards, also when fn fails.
func WithBackend(name string, fn func() error) error {
	prev := Backend()
	if err := UseBackend(name); err != nil {
		return err
	}
	defer func() { _ = UseBackend(prev) }()
	return fn()
}

func isRaster(format string) bool {
	switch format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		return true
	}
	return false
}
