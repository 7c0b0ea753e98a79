package documents

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

func TestStore_CreateReadRemove(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	path := filepath.Join(t.TempDir(), "out.xml")

	w, err := store.Create(ctx, path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "<Company/>")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := store.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "<Company/>", string(data))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	require.NoError(t, store.Remove(ctx, path))
	assert.NoFileExists(t, path)

	// Removing again is not an error.
	assert.NoError(t, store.Remove(ctx, path))
}

func TestStore_ReadMissing(t *testing.T) {
	_, err := NewStore().Read(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNormalise(t *testing.T) {
	abs, err := filepath.Abs("mapping.csv")
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "relative path", in: "mapping.csv", want: "file://" + filepath.ToSlash(abs)},
		{name: "url unchanged", in: "mem://localhost/m.csv", want: "mem://localhost/m.csv"},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalise(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
