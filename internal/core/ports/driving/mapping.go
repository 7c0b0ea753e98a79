package driving

import (
	"context"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// MappingService loads mapping tables and manages the mapping library.
type MappingService interface {
	// Load resolves a mapping reference and returns its tree.
	// References are paths or URLs, or "db:<name>" for library entries.
	Load(ctx context.Context, ref string) (*domain.MappingTree, error)

	// Parse reads mapping table content of the given format into a tree.
	Parse(format domain.MappingFormat, data []byte) (*domain.MappingTree, error)

	// Import validates the mapping at ref and stores it under name.
	Import(ctx context.Context, name, ref string) (*domain.StoredMapping, error)

	// List returns library entries without rows.
	List(ctx context.Context) ([]domain.StoredMapping, error)

	// Delete removes a library entry.
	Delete(ctx context.Context, name string) error
}
