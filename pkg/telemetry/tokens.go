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

package telemetry

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tokenFilePrefix = ".token_"

// TokenStore resolves tokens from .token_<id> files in a data directory,
// falling back to tokens from configuration. Files are re-read on every
// lookup so a rotated token takes effect on the next request.
type TokenStore struct {
	dataDir string

	mu     sync.RWMutex
	static map[string]string
}

var _ TokenProvider = (*TokenStore)(nil)

// NewTokenStore creates a token store. dataDir may be empty.
func NewTokenStore(dataDir string, static map[string]string) *TokenStore {
	s := &TokenStore{dataDir: dataDir}
	s.SetStatic(static)

	return s
}

// SetStatic replaces the configured tokens.
func (s *TokenStore) SetStatic(static map[string]string) {
	m := make(map[string]string, len(static))
	for id, token := range static {
		m[id] = token
	}

	s.mu.Lock()
	s.static = m
	s.mu.Unlock()
}

// Token returns the token for networkID, or "".
func (s *TokenStore) Token(networkID string) string {
	if s.dataDir != "" && networkID != "" && !strings.ContainsAny(networkID, `/\`) {
		data, err := os.ReadFile(s.TokenPath(networkID))
		if err == nil {
			if token := strings.TrimSpace(string(data)); token != "" {
				return token
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Failed to read token file for network %s: %v", networkID, err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.static[networkID]
}

// TokenPath returns the token file location of a network.
func (s *TokenStore) TokenPath(networkID string) string {
	return filepath.Join(s.dataDir, tokenFilePrefix+networkID)
}
