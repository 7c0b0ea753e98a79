package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mapxml/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"output.indent":     "\t",
		"output.namespaces": false,
		"mapping.sheet":     "Rows",
		"history.enabled":   false,
		"cache.size":        int64(3),
		"watch.interval_ms": int64(0),
	})
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "\t", settings.Output.Indent)
	assert.False(t, settings.Output.Namespaces)
	assert.Equal(t, "Rows", settings.Mapping.Sheet)
	assert.False(t, settings.History.Enabled)
	assert.Equal(t, 3, settings.Cache.Size)
	assert.Equal(t, time.Duration(0), settings.Watch.Interval)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"output.indent":     "xx",
		"cache.size":        int64(-4),
		"watch.interval_ms": int64(-1),
	})
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Output.Indent, settings.Output.Indent)
	assert.Equal(t, defaults.Cache.Size, settings.Cache.Size)
	assert.Equal(t, defaults.Watch.Interval, settings.Watch.Interval)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, s *domain.AppSettings)
	}{
		{
			name: "indent", key: "output.indent", value: "  ",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, "  ", s.Output.Indent) },
		},
		{name: "indent with letters", key: "output.indent", value: "ab", wantErr: true},
		{
			name: "namespaces off", key: "output.namespaces", value: "false",
			check: func(t *testing.T, s *domain.AppSettings) { assert.False(t, s.Output.Namespaces) },
		},
		{name: "namespaces not bool", key: "output.namespaces", value: "maybe", wantErr: true},
		{
			name: "sheet trimmed", key: "mapping.sheet", value: " Mapping ",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, "Mapping", s.Mapping.Sheet) },
		},
		{
			name: "history off", key: "history.enabled", value: "0",
			check: func(t *testing.T, s *domain.AppSettings) { assert.False(t, s.History.Enabled) },
		},
		{
			name: "cache size", key: "cache.size", value: "32",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, 32, s.Cache.Size) },
		},
		{name: "cache size zero", key: "cache.size", value: "0", wantErr: true},
		{
			name: "watch interval", key: "watch.interval_ms", value: "1500",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.Equal(t, 1500*time.Millisecond, s.Watch.Interval)
			},
		},
		{name: "watch interval negative", key: "watch.interval_ms", value: "-5", wantErr: true},
		{name: "unknown key", key: "search.mode", value: "hybrid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())

			err := service.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	keys := service.Keys()
	assert.Len(t, keys, 6)
	assert.IsIncreasing(t, keys)

	keys[0] = "mutated"
	assert.NotEqual(t, "mutated", service.Keys()[0])
}
