// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package docs

import (
	"fmt"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// Service combines the static index with the optional page cache. The
// cache may hold example sets fetched from a live site in hybrid mode;
// FindExamples folds those into the static results.
type Service struct {
	index *Index
	cache *Cache
}

// NewService creates a docs service. cache may be nil, in which case
// only the embedded index is consulted.
func NewService(index *Index, cache *Cache) *Service {
	return &Service{index: index, cache: cache}
}

// Index exposes the underlying static index.
func (s *Service) Index() *Index {
	return s.index
}

// exampleCacheKey is where remotely fetched example sets are stored,
// one entry per normalized query.
func exampleCacheKey(query string) string {
	return "examples:" + normalize(query)
}

// StoreRemoteExamples caches examples fetched from a live site so
// later docs-only sessions can still serve them.
func (s *Service) StoreRemoteExamples(query string, examples []CodeExample) error {
	if s.cache == nil {
		return nil
	}
	body, err := json.Marshal(examples)
	if err != nil {
		return fmt.Errorf("docs: encode examples: %w", err)
	}
	return s.cache.Put(exampleCacheKey(query), body)
}

// FindExamples merges static index hits with any cached remote example
// set for the query. Index hits come first; duplicates (by title) are
// dropped.
func (s *Service) FindExamples(query string, limit int) []CodeExample {
	results := s.index.FindCodeExamples(query, 0)

	if s.cache != nil {
		if body, ok := s.cache.Get(exampleCacheKey(query)); ok {
			var remote []CodeExample
			if err := json.Unmarshal(body, &remote); err != nil {
				log.Debugf("docs: cached examples for %q unreadable: %v", query, err)
			} else {
				seen := make(map[string]bool, len(results))
				for _, e := range results {
					seen[e.Title] = true
				}
				for _, e := range remote {
					if !seen[e.Title] {
						seen[e.Title] = true
						results = append(results, e)
					}
				}
			}
		}
	}

	return capped(results, limit)
}
