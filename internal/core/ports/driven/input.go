package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// InputParser parses an input document into a read-only tree.
// Parse failures wrap domain.ErrInputParse.
type InputParser interface {
	Parse(r io.Reader) (*domain.Node, error)
}

// DocumentStore reads and writes whole documents addressed by URL or path.
type DocumentStore interface {
	// Read returns the full content at url.
	Read(ctx context.Context, url string) ([]byte, error)

	// Create opens url for writing, replacing existing content.
	Create(ctx context.Context, url string) (io.WriteCloser, error)

	// Remove deletes url. A missing document is not an error.
	Remove(ctx context.Context, url string) error
}

// Watcher reports changes to files.
type Watcher interface {
	// Watch starts watching paths and returns a channel of changed paths.
	// The channel is closed when ctx is done or the watcher is closed.
	Watch(ctx context.Context, paths ...string) (<-chan string, error)

	// Close releases watcher resources.
	Close() error
}

// RunStore records conversion runs.
type RunStore interface {
	// Save records a run.
	Save(ctx context.Context, run domain.ConversionRun) error

	// List returns the most recent runs first, at most limit (0 = all).
	List(ctx context.Context, limit int) ([]domain.ConversionRun, error)

	// Clear removes all recorded runs.
	Clear(ctx context.Context) error
}
