package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
	"github.com/custodia-labs/mapxml/internal/logger"
)

// Ensure MappingService implements the interface.
var _ driving.MappingService = (*MappingService)(nil)

// LibraryPrefix marks a mapping reference that names a library entry.
const LibraryPrefix = "db:"

// MappingService resolves mapping references into loaded trees and
// manages the mapping library.
type MappingService struct {
	loader  *Loader
	readers driven.MappingReaderRegistry
	docs    driven.DocumentStore
	library driven.MappingStore
	cache   driven.TreeCache
}

// NewMappingService creates a mapping service. library and cache may be nil.
func NewMappingService(
	loader *Loader,
	readers driven.MappingReaderRegistry,
	docs driven.DocumentStore,
	library driven.MappingStore,
	cache driven.TreeCache,
) *MappingService {
	return &MappingService{
		loader:  loader,
		readers: readers,
		docs:    docs,
		library: library,
		cache:   cache,
	}
}

// Load resolves ref and returns its tree. Every failure is a mapping
// load error.
func (s *MappingService) Load(ctx context.Context, ref string) (*domain.MappingTree, error) {
	rows, warnings, err := s.rows(ctx, ref)
	if err != nil {
		return nil, err
	}
	tree, err := s.build(rows, warnings)
	if err != nil {
		return nil, err
	}
	logger.Debug("Mapping %s fingerprint %016x", ref, tree.Fingerprint)
	return tree, nil
}

// Parse reads mapping table content of the given format.
func (s *MappingService) Parse(format domain.MappingFormat, data []byte) (*domain.MappingTree, error) {
	reader, err := s.readers.ForFormat(format)
	if err != nil {
		return nil, domain.ErrMappingLoad.Wrap(err, err.Error())
	}
	rows, warnings, err := reader.Read(data)
	if err != nil {
		return nil, err
	}
	return s.build(rows, warnings)
}

// Import loads the mapping at ref and stores its rows under name.
// The mapping must load cleanly before it is stored.
func (s *MappingService) Import(ctx context.Context, name, ref string) (*domain.StoredMapping, error) {
	if s.library == nil {
		return nil, errors.New("mapping library is not available")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: mapping name is required", domain.ErrInvalidInput)
	}

	rows, warnings, err := s.rows(ctx, ref)
	if err != nil {
		return nil, err
	}
	tree, err := s.build(rows, warnings)
	if err != nil {
		return nil, err
	}

	stored := domain.StoredMapping{
		Name:        name,
		Source:      ref,
		Fingerprint: tree.Fingerprint,
		Rows:        rows,
		ImportedAt:  time.Now().UTC(),
	}
	if err := s.library.Save(ctx, stored); err != nil {
		return nil, fmt.Errorf("saving mapping %s: %w", name, err)
	}
	logger.Info("Imported %s as %s (%d rows)", ref, name, len(rows))
	return &stored, nil
}

// List returns library entries without rows.
func (s *MappingService) List(ctx context.Context) ([]domain.StoredMapping, error) {
	if s.library == nil {
		return nil, errors.New("mapping library is not available")
	}
	return s.library.List(ctx)
}

// Delete removes a library entry.
func (s *MappingService) Delete(ctx context.Context, name string) error {
	if s.library == nil {
		return errors.New("mapping library is not available")
	}
	if err := s.library.Delete(ctx, name); err != nil {
		return fmt.Errorf("deleting mapping %s: %w", name, err)
	}
	return nil
}

// rows reads the raw rows behind ref.
func (s *MappingService) rows(ctx context.Context, ref string) ([]domain.MappingRow, []domain.Warning, error) {
	if name, ok := strings.CutPrefix(ref, LibraryPrefix); ok {
		if s.library == nil {
			return nil, nil, domain.ErrMappingLoad.New("mapping library is not available")
		}
		stored, err := s.library.Get(ctx, name)
		if err != nil {
			return nil, nil, domain.ErrMappingLoad.Wrap(err, fmt.Sprintf("library mapping %q: %v", name, err))
		}
		return stored.Rows, nil, nil
	}

	reader, err := s.readers.ForPath(ref)
	if err != nil {
		return nil, nil, domain.ErrMappingLoad.Wrap(err, err.Error())
	}
	data, err := s.docs.Read(ctx, ref)
	if err != nil {
		return nil, nil, domain.ErrMappingLoad.Wrap(err, err.Error())
	}
	return reader.Read(data)
}

// build loads rows into a tree, preferring a cached tree with the same
// fingerprint. The cache holds loader results only; reader warnings
// belong to this read and are merged into a fresh tree value.
func (s *MappingService) build(rows []domain.MappingRow, readWarnings []domain.Warning) (*domain.MappingTree, error) {
	fp := Fingerprint(rows)
	var loaded *domain.MappingTree
	if s.cache != nil {
		if tree, ok := s.cache.Get(fp); ok {
			logger.Debug("Mapping tree cache hit %016x", fp)
			loaded = tree
		}
	}
	if loaded == nil {
		tree, err := s.loader.Load(rows)
		if err != nil {
			return nil, err
		}
		loaded = tree
		if s.cache != nil {
			s.cache.Add(fp, loaded)
		}
	}

	tree := *loaded
	tree.Warnings = make([]domain.Warning, 0, len(readWarnings)+len(loaded.Warnings))
	tree.Warnings = append(tree.Warnings, readWarnings...)
	tree.Warnings = append(tree.Warnings, loaded.Warnings...)
	logWarnings(tree.Warnings)
	return &tree, nil
}

func logWarnings(warnings []domain.Warning) {
	for _, w := range warnings {
		logger.Warn("%s", w)
	}
}
