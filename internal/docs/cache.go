// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package docs

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// Cache persists rendered documentation pages in SQLite so repeated
// lookups skip the render step. Page bodies are stored gzip-compressed.
type Cache struct {
	db        *sql.DB
	retention time.Duration
}

// OpenCache opens (or creates) the cache database at path. Entries
// older than retention are removed by Sweep.
func OpenCache(path string, retention time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("docs cache: open %s: %w", path, err)
	}

	c := &Cache{db: db, retention: retention}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("docs cache: migrate: %w", err)
	}
	return c, nil
}

// NewCacheWithDB wraps an existing database connection.
func NewCacheWithDB(db *sql.DB, retention time.Duration) (*Cache, error) {
	c := &Cache{db: db, retention: retention}
	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("docs cache: migrate: %w", err)
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS pages (
			key TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			raw_size INTEGER NOT NULL,
			stored_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_pages_stored ON pages(stored_at);
	`)
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put stores a rendered page under key, replacing any existing entry.
func (c *Cache) Put(key string, body []byte) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return fmt.Errorf("docs cache: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("docs cache: compress: %w", err)
	}

	_, err := c.db.Exec(`
		INSERT INTO pages (key, body, raw_size, stored_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body,
			raw_size = excluded.raw_size, stored_at = excluded.stored_at
	`, key, buf.Bytes(), len(body), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("docs cache: put %s: %w", key, err)
	}
	return nil
}

// Get returns the page stored under key, or (nil, false) on a miss.
// Entries past the retention window count as misses.
func (c *Cache) Get(key string) ([]byte, bool) {
	var compressed []byte
	var storedStr string
	err := c.db.QueryRow(`SELECT body, stored_at FROM pages WHERE key = ?`, key).
		Scan(&compressed, &storedStr)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Debugf("docs cache read %s: %v", key, err)
		return nil, false
	}

	if c.retention > 0 {
		stored, err := time.Parse(time.RFC3339, storedStr)
		if err != nil || time.Since(stored) > c.retention {
			return nil, false
		}
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		log.Debugf("docs cache decompress %s: %v", key, err)
		return nil, false
	}
	defer zr.Close()

	body, err := io.ReadAll(zr)
	if err != nil {
		log.Debugf("docs cache decompress %s: %v", key, err)
		return nil, false
	}
	return body, true
}

// Sweep deletes entries older than the retention window and reports how
// many were removed. A zero retention disables sweeping.
func (c *Cache) Sweep() (int64, error) {
	if c.retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-c.retention).Format(time.RFC3339)
	res, err := c.db.Exec(`DELETE FROM pages WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("docs cache: sweep: %w", err)
	}
	removed, _ := res.RowsAffected()
	if removed > 0 {
		log.Infof("docs cache sweep removed %d expired pages", removed)
	}
	return removed, nil
}

// Stats reports entry count and the total compressed and raw sizes.
func (c *Cache) Stats() (entries int, compressedBytes, rawBytes int64) {
	_ = c.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(LENGTH(body)), 0), COALESCE(SUM(raw_size), 0)
		FROM pages
	`).Scan(&entries, &compressedBytes, &rawBytes)
	return
}
