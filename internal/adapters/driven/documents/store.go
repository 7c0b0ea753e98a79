// Package documents reads and writes mapping tables, input documents and
// output files through viant/afs, so any location afs understands (local
// paths, file://, mem://, cloud storage with the matching afs connector)
// can be used.
package documents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is an afs-backed driven.DocumentStore.
type Store struct {
	fs   afs.Service
	mode os.FileMode
}

// NewStore creates a document store on the default afs service.
func NewStore() *Store {
	return &Store{fs: afs.New(), mode: 0644}
}

// Read returns the full content at location.
// A missing document wraps domain.ErrNotFound.
func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	url, err := normalise(location)
	if err != nil {
		return nil, err
	}
	ok, err := s.fs.Exists(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", location, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, location)
	}
	data, err := s.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}

// Create opens location for writing, replacing existing content.
func (s *Store) Create(ctx context.Context, location string) (io.WriteCloser, error) {
	url, err := normalise(location)
	if err != nil {
		return nil, err
	}
	w, err := s.fs.NewWriter(ctx, url, s.mode)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", location, err)
	}
	return w, nil
}

// Remove deletes location. A missing document is not an error.
func (s *Store) Remove(ctx context.Context, location string) error {
	url, err := normalise(location)
	if err != nil {
		return err
	}
	ok, err := s.fs.Exists(ctx, url)
	if err != nil || !ok {
		return err
	}
	if err := s.fs.Delete(ctx, url); err != nil {
		return fmt.Errorf("removing %s: %w", location, err)
	}
	return nil
}

// normalise turns plain paths into absolute file URLs.
func normalise(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("%w: empty document location", domain.ErrInvalidInput)
	}
	if strings.Contains(location, "://") {
		return location, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", location, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
