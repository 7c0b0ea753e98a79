package driven

import (
	"context"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// MappingReader turns the bytes of a tabular mapping source into rows.
// Readers skip the header and short or blank records, reporting each
// skipped record as a warning.
type MappingReader interface {
	// Format returns the format this reader handles.
	Format() domain.MappingFormat

	// Read parses data into mapping rows.
	Read(data []byte) ([]domain.MappingRow, []domain.Warning, error)
}

// MappingReaderRegistry selects a reader for a mapping source.
type MappingReaderRegistry interface {
	// Register adds a reader for the given file extensions.
	Register(reader MappingReader, extensions ...string)

	// ForFormat returns the reader for a format.
	ForFormat(format domain.MappingFormat) (MappingReader, error)

	// ForPath returns the reader registered for the extension of path.
	ForPath(path string) (MappingReader, error)

	// Formats lists the registered formats.
	Formats() []domain.MappingFormat
}

// ExpressionCompiler compiles row expressions.
type ExpressionCompiler interface {
	Compile(src string) (domain.Program, error)
}

// MappingStore keeps a library of named mapping tables.
type MappingStore interface {
	// Save stores or replaces a mapping under its name.
	Save(ctx context.Context, mapping domain.StoredMapping) error

	// Get retrieves a mapping by name.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, name string) (*domain.StoredMapping, error)

	// List returns all mappings without their rows, ordered by name.
	List(ctx context.Context) ([]domain.StoredMapping, error)

	// Delete removes a mapping.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, name string) error
}

// TreeCache caches loaded mapping trees by fingerprint.
type TreeCache interface {
	Get(fingerprint uint64) (*domain.MappingTree, bool)
	Add(fingerprint uint64, tree *domain.MappingTree)
	Len() int
}
