/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cache persists the in-memory network cache between restarts.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
)

// DefaultMaxAge is how old a snapshot may be before it is discarded.
const DefaultMaxAge = 24 * time.Hour

var (
	ErrNoSnapshot      = errors.New("no cache snapshot")
	ErrSnapshotStale   = errors.New("cache snapshot is stale")
	ErrCorruptSnapshot = errors.New("cache snapshot is corrupt")
	ErrSaveFailed      = errors.New("failed to save cache snapshot")
)

// document is the on-disk layout.
type document struct {
	Networks map[string]*models.NetworkCache `json:"networks"`
	Combined models.CombinedCache            `json:"combined"`
	SavedAt  *time.Time                      `json:"_saved_at,omitempty"`
}

// Store reads and writes the snapshot file.
type Store struct {
	path   string
	maxAge time.Duration
	now    func() time.Time
}

// NewStore creates a snapshot store for path. maxAge <= 0 selects
// DefaultMaxAge.
func NewStore(path string, maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	return &Store{
		path:   path,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Path returns the snapshot location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the cache to a temp file in the same directory, syncs it and
// renames it over the snapshot, so readers never see a partial file.
func (s *Store) Save(c *models.Cache) error {
	savedAt := s.now().UTC()

	data, err := json.MarshalIndent(document{
		Networks: c.Networks,
		Combined: c.Combined,
		SavedAt:  &savedAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	dir := filepath.Dir(s.path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	tmpPath := tmp.Name()
	success := false

	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("%w: write: %w", ErrSaveFailed, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("%w: sync: %w", ErrSaveFailed, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrSaveFailed, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: rename: %w", ErrSaveFailed, err)
	}

	success = true

	return nil
}

// Load reads the snapshot. A snapshot older than the max age yields
// ErrSnapshotStale; one without a save time is accepted.
func (s *Store) Load() (*models.Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}

		return nil, fmt.Errorf("failed to read cache snapshot: %w", err)
	}

	var doc document

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	if doc.SavedAt != nil {
		if age := s.now().Sub(*doc.SavedAt); age > s.maxAge {
			log.Printf("Cached data is %.1f hours old, starting fresh", age.Hours())

			return nil, ErrSnapshotStale
		}
	}

	c := models.NewCache()
	c.Combined = doc.Combined

	if c.Combined.DeviceOS == nil {
		c.Combined.DeviceOS = make(map[models.DeviceOS]int)
	}

	if c.Combined.Frequency == nil {
		c.Combined.Frequency = make(map[models.FrequencyBand]int)
	}

	for id, n := range doc.Networks {
		if n == nil {
			continue
		}

		if n.NetworkID == "" {
			n.NetworkID = id
		}

		if n.DeviceOS == nil {
			n.DeviceOS = make(map[models.DeviceOS]int)
		}

		if n.Frequency == nil {
			n.Frequency = make(map[models.FrequencyBand]int)
		}

		c.Networks[id] = n
	}

	log.Printf("Loaded cache snapshot with %d networks from %s", len(c.Networks), s.path)

	return c, nil
}
