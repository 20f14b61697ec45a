package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Garsondee/hexfront/internal/game"
)

// JSONStore keeps every snapshot in one JSON file, rewritten on each save.
type JSONStore struct {
	filePath string
	mu       sync.RWMutex
	data     *jsonData
}

type jsonData struct {
	Matches map[string]game.Snapshot `json:"matches"`
}

// NewJSONStore opens filePath, creating it when missing.
func NewJSONStore(filePath string) (*JSONStore, error) {
	s := &JSONStore{
		filePath: filePath,
		data:     &jsonData{Matches: make(map[string]game.Snapshot)},
	}
	b, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, s.data); err != nil {
			return nil, fmt.Errorf("load json store %s: %w", filePath, err)
		}
		if s.data.Matches == nil {
			s.data.Matches = make(map[string]game.Snapshot)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := s.flush(); err != nil {
			return nil, fmt.Errorf("create json store %s: %w", filePath, err)
		}
	default:
		return nil, fmt.Errorf("open json store %s: %w", filePath, err)
	}
	return s, nil
}

// flush writes the whole file through a temp file. Callers hold mu.
func (s *JSONStore) flush() error {
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".store-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// SaveSnapshot implements Storage.
func (s *JSONStore) SaveSnapshot(_ context.Context, matchID string, snap game.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.data.Matches[matchID]
	s.data.Matches[matchID] = snap
	if err := s.flush(); err != nil {
		if had {
			s.data.Matches[matchID] = prev
		} else {
			delete(s.data.Matches, matchID)
		}
		return fmt.Errorf("save snapshot %s: %w", matchID, err)
	}
	return nil
}

// LoadSnapshot implements Storage.
func (s *JSONStore) LoadSnapshot(_ context.Context, matchID string) (game.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.data.Matches[matchID]
	if !ok {
		return game.Snapshot{}, fmt.Errorf("load snapshot %s: %w", matchID, ErrNotFound)
	}
	return snap, nil
}

// DeleteSnapshot implements Storage.
func (s *JSONStore) DeleteSnapshot(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.data.Matches[matchID]
	if !ok {
		return fmt.Errorf("delete snapshot %s: %w", matchID, ErrNotFound)
	}
	delete(s.data.Matches, matchID)
	if err := s.flush(); err != nil {
		s.data.Matches[matchID] = prev
		return fmt.Errorf("delete snapshot %s: %w", matchID, err)
	}
	return nil
}

// ListMatches implements Storage.
func (s *JSONStore) ListMatches(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data.Matches))
	for id := range s.data.Matches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements Storage.
func (s *JSONStore) Close() error { return nil }
