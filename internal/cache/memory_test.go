package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	got, err := c.Get(ctx, AnnouncementsKey)
	require.NoError(t, err)
	assert.Empty(t, got, "missing key reads as empty string")

	require.NoError(t, c.Set(ctx, AnnouncementsKey, "nearly sold out"))
	got, err = c.Get(ctx, AnnouncementsKey)
	require.NoError(t, err)
	assert.Equal(t, "nearly sold out", got)

	require.NoError(t, c.Delete(ctx, AnnouncementsKey))
	got, err = c.Get(ctx, AnnouncementsKey)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Deleting an absent key is a no-op.
	require.NoError(t, c.Delete(ctx, AnnouncementsKey))
}
