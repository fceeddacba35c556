package docs

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, retention time.Duration) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "docs.db"), retention)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCachePutGet(t *testing.T) {
	c := newTestCache(t, time.Hour)

	body := []byte(strings.Repeat("render arrays describe page output. ", 100))
	require.NoError(t, c.Put("topic:render-arrays", body))

	got, ok := c.Get("topic:render-arrays")
	require.True(t, ok)
	assert.True(t, bytes.Equal(body, got))
}

func TestCacheMiss(t *testing.T) {
	c := newTestCache(t, time.Hour)

	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestCachePutReplaces(t *testing.T) {
	c := newTestCache(t, time.Hour)

	require.NoError(t, c.Put("k", []byte("first")))
	require.NoError(t, c.Put("k", []byte("second")))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", string(got))

	entries, _, _ := c.Stats()
	assert.Equal(t, 1, entries)
}

func TestCacheCompressionShrinksRepetitiveBodies(t *testing.T) {
	c := newTestCache(t, time.Hour)

	body := []byte(strings.Repeat("drupal ", 10000))
	require.NoError(t, c.Put("big", body))

	_, compressed, raw := c.Stats()
	assert.Equal(t, int64(len(body)), raw)
	assert.Less(t, compressed, raw/10)
}

func TestCacheExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(t, 10*time.Millisecond)

	require.NoError(t, c.Put("k", []byte("stale")))
	time.Sleep(1100 * time.Millisecond) // stored_at has second resolution

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheSweep(t *testing.T) {
	c := newTestCache(t, 10*time.Millisecond)

	require.NoError(t, c.Put("a", []byte("x")))
	require.NoError(t, c.Put("b", []byte("y")))
	time.Sleep(1100 * time.Millisecond)

	removed, err := c.Sweep()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	entries, _, _ := c.Stats()
	assert.Equal(t, 0, entries)
}

func TestCacheSweepDisabledWithoutRetention(t *testing.T) {
	c := newTestCache(t, 0)

	require.NoError(t, c.Put("a", []byte("x")))
	removed, err := c.Sweep()
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestCacheSweepQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pages").
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, err := NewCacheWithDB(db, time.Hour)
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM pages").
		WillReturnError(assert.AnError)

	_, err = c.Sweep()
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
