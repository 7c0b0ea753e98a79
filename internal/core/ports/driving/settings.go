package driving

import (
	"context"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Set parses and stores a single setting by key.
	Set(key, value string) error

	// Keys lists the recognised setting keys.
	Keys() []string
}

// HistoryService exposes recorded conversion runs.
type HistoryService interface {
	// List returns the most recent runs first.
	List(ctx context.Context, limit int) ([]domain.ConversionRun, error)

	// Clear removes all recorded runs.
	Clear(ctx context.Context) error
}
