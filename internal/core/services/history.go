package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService exposes the run store to driving adapters.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a history service.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// List returns up to limit recent runs, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.ConversionRun, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Clear removes all recorded runs.
func (s *HistoryService) Clear(ctx context.Context) error {
	if err := s.runs.Clear(ctx); err != nil {
		return fmt.Errorf("clearing runs: %w", err)
	}
	return nil
}
