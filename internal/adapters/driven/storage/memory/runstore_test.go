package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

func TestRunStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.ConversionRun{ID: "old", StartedAt: base}))
	require.NoError(t, store.Save(ctx, domain.ConversionRun{ID: "new", StartedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.ConversionRun{ID: "mid", StartedAt: base.Add(time.Minute)}))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	runs, err = store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].ID)
}

func TestRunStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()
	require.NoError(t, store.Save(ctx, domain.ConversionRun{ID: "x"}))
	require.NoError(t, store.Clear(ctx))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
