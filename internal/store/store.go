// Package store is the key-value persistence collaborator: high score and the
// achievement ledger are kept here as strings.
package store

import (
	"errors"
	"sync"
)

// Keys used by the game layer.
const (
	KeyHighScore    = "suika-high-score"
	KeyAchievements = "suika-achievements"
)

var ErrClosed = errors.New("store closed")

// Store is a string key-value store. Get reports ok=false for absent keys.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Memory is an in-process Store, used by tests and the headless simulator.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
