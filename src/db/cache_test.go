package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightCache(t *testing.T) {
	c, err := NewInsightCache(time.Minute)
	require.NoError(t, err)
	defer c.Close()

	alice, bob := uuid.New(), uuid.New()
	c.Set(alice, "", "spend less")
	c.Set(alice, "rent?", "rent is fine")
	c.Set(bob, "", "bob insight")

	got, ok := c.Get(alice, "")
	require.True(t, ok)
	assert.Equal(t, "spend less", got)

	c.Invalidate(alice)

	_, ok = c.Get(alice, "")
	assert.False(t, ok)
	_, ok = c.Get(alice, "rent?")
	assert.False(t, ok)

	got, ok = c.Get(bob, "")
	require.True(t, ok)
	assert.Equal(t, "bob insight", got)
}

func TestNilInsightCache(t *testing.T) {
	var c *InsightCache
	c.Set(uuid.New(), "", "x")
	_, ok := c.Get(uuid.New(), "")
	assert.False(t, ok)
	c.Invalidate(uuid.New())
	c.Close()
}

func TestInsightCacheRejectsStaleGeneration(t *testing.T) {
	c, err := NewInsightCache(time.Minute)
	require.NoError(t, err)
	defer c.Close()

	user := uuid.New()
	gen := c.Generation(user)
	c.Invalidate(user)

	assert.False(t, c.SetIfCurrent(user, "", "computed before the change", gen))
	_, ok := c.Get(user, "")
	assert.False(t, ok)

	assert.True(t, c.SetIfCurrent(user, "", "fresh", c.Generation(user)))
	got, ok := c.Get(user, "")
	require.True(t, ok)
	assert.Equal(t, "fresh", got)

	var nilCache *InsightCache
	assert.False(t, nilCache.SetIfCurrent(user, "", "x", nilCache.Generation(user)))
}
