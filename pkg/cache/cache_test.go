package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGetFetchesOnceWithinTTL(t *testing.T) {
	c := newTestCache(t)

	var calls int
	fetch := func() ([]byte, error) {
		calls++
		return []byte("chains"), nil
	}

	v, err := c.Get("glacier/chains", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, []byte("chains"), v)

	v, err = c.Get("glacier/chains", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, []byte("chains"), v)
	assert.Equal(t, 1, calls)

	assert.Contains(t, c.GetMetrics(), "hits: 1")
	assert.Contains(t, c.GetMetrics(), "misses: 1")
}

func TestGetExpiresAfterTTL(t *testing.T) {
	c := newTestCache(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var calls int
	fetch := func() ([]byte, error) {
		calls++
		return []byte{byte(calls)}, nil
	}

	_, err := c.Get("k", time.Minute, fetch)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	v, err := c.Get("k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, v)
	assert.Equal(t, 2, calls)
}

func TestGetZeroTTLAlwaysFetches(t *testing.T) {
	c := newTestCache(t)

	var calls int
	fetch := func() ([]byte, error) {
		calls++
		return []byte("x"), nil
	}
	for i := 0; i < 3; i++ {
		_, err := c.Get("k", 0, fetch)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestGetDoesNotStoreFailures(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get("k", time.Hour, func() ([]byte, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	v, err := c.Get("k", time.Hour, func() ([]byte, error) {
		return []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), v)
}

func TestInvalidate(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get("k", time.Hour, func() ([]byte, error) { return []byte("old"), nil })
	require.NoError(t, err)
	require.NoError(t, c.Invalidate("k"))

	v, err := c.Get("k", time.Hour, func() ([]byte, error) { return []byte("new"), nil })
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := New(dir)
	require.NoError(t, err)
	_, err = c.Get("k", time.Hour, func() ([]byte, error) { return []byte("kept"), nil })
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = New(dir)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Get("k", time.Hour, func() ([]byte, error) {
		t.Fatal("fetch should not be called")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), v)
}
