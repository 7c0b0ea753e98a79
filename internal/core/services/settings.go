package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyOutputIndent     = "output.indent"
	keyOutputNamespaces = "output.namespaces"
	keyMappingSheet     = "mapping.sheet"
	keyHistoryEnabled   = "history.enabled"
	keyCacheSize        = "cache.size"
	keyWatchInterval    = "watch.interval_ms"
)

var settingKeys = []string{
	keyCacheSize,
	keyHistoryEnabled,
	keyMappingSheet,
	keyOutputIndent,
	keyOutputNamespaces,
	keyWatchInterval,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Unset or invalid stored
// values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	indent := defaults.Output.Indent
	if v, ok := s.configStore.Get(keyOutputIndent); ok {
		if str, ok := v.(string); ok && validIndent(str) {
			indent = str
		}
	}

	return &domain.AppSettings{
		Output: domain.OutputSettings{
			Indent:     indent,
			Namespaces: s.getBool(keyOutputNamespaces, defaults.Output.Namespaces),
		},
		Mapping: domain.MappingSettings{
			Sheet: s.configStore.GetString(keyMappingSheet),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistoryEnabled, defaults.History.Enabled),
		},
		Cache: domain.CacheSettings{
			Size: s.getPositiveInt(keyCacheSize, defaults.Cache.Size),
		},
		Watch: domain.WatchSettings{
			Interval: s.getInterval(defaults.Watch.Interval),
		},
	}, nil
}

// Set parses value for key and stores it.
func (s *SettingsService) Set(key, value string) error {
	var stored any
	switch key {
	case keyOutputIndent:
		if !validIndent(value) {
			return fmt.Errorf("%w: %s must contain only spaces and tabs", domain.ErrInvalidInput, key)
		}
		stored = value
	case keyMappingSheet:
		stored = strings.TrimSpace(value)
	case keyOutputNamespaces, keyHistoryEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = b
	case keyCacheSize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = int64(n)
	case keyWatchInterval:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = int64(n)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the recognised setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getPositiveInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val < 1 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInterval(defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(keyWatchInterval); !exists {
		return defaultVal
	}
	ms := s.configStore.GetInt(keyWatchInterval)
	if ms < 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

func validIndent(s string) bool {
	return strings.Trim(s, " \t") == ""
}
