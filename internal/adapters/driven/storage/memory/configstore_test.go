package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SeededValues(t *testing.T) {
	store := NewConfigStore(map[string]any{"output.indent": "  "}, map[string]any{"cache.size": 4})

	assert.Equal(t, "  ", store.GetString("output.indent"))
	assert.Equal(t, 4, store.GetInt("cache.size"))
	assert.Equal(t, []string{"cache.size", "output.indent"}, store.Keys())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"str":       "value",
		"int":       42,
		"int64":     int64(7),
		"float":     3.9,
		"int_str":   "12",
		"bool":      true,
		"bool_str":  "true",
		"not_a_num": "abc",
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("str"), "value"},
		{"string of int", store.GetString("int"), ""},
		{"missing string", store.GetString("nope"), ""},
		{"int", store.GetInt("int"), 42},
		{"int64", store.GetInt("int64"), 7},
		{"float truncates", store.GetInt("float"), 3},
		{"numeric string", store.GetInt("int_str"), 12},
		{"non numeric string", store.GetInt("not_a_num"), 0},
		{"bool", store.GetBool("bool"), true},
		{"bool string", store.GetBool("bool_str"), true},
		{"missing bool", store.GetBool("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_SetAndPersistenceNoOps(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("history.enabled", false))

	val, ok := store.Get("history.enabled")
	assert.True(t, ok)
	assert.Equal(t, false, val)

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
			_ = store.GetInt("key")
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []string{"key"}, store.Keys())
}
