package mcp

import (
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversion runs conversions between in-memory documents.
	Conversion driving.ConversionService

	// Mapping parses mapping tables and reads the mapping library.
	Mapping driving.MappingService

	// History exposes recorded runs. Optional.
	History driving.HistoryService

	// Settings supplies default output options. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Conversion == nil {
		return ErrMissingConversionService
	}
	if p.Mapping == nil {
		return ErrMissingMappingService
	}
	return nil
}
