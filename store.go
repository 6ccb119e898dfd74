package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// persistedState is what survives a restart: the theme preference and the
// undo history with its cursor. Entries are scene documents and are
// validated again when the editor loads them.
type persistedState struct {
	Theme   Theme             `json:"theme" validate:"omitempty,oneof=dark light system"`
	History []json.RawMessage `json:"history" validate:"max=10"`
	Cursor  int               `json:"cursor" validate:"gte=-1"`
}

type StateStore struct {
	path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Load returns the saved state. A missing file yields an empty state.
func (s *StateStore) Load() (Theme, []Snapshot, int, error) {
	if s == nil || s.path == "" {
		return "", nil, -1, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, -1, nil
	}
	if err != nil {
		return "", nil, -1, fmt.Errorf("read state: %w", err)
	}
	var st persistedState
	if err := json.Unmarshal(data, &st); err != nil {
		return "", nil, -1, fmt.Errorf("parse state %s: %w", s.path, err)
	}
	if err := validate.Struct(st); err != nil {
		return "", nil, -1, fmt.Errorf("invalid state %s: %w", s.path, err)
	}
	entries := make([]Snapshot, len(st.History))
	for i, raw := range st.History {
		entries[i] = Snapshot(raw)
	}
	return st.Theme, entries, st.Cursor, nil
}

// Save writes atomically through a temp file in the same directory.
func (s *StateStore) Save(theme Theme, entries []Snapshot, cursor int) error {
	if s == nil || s.path == "" {
		return nil
	}
	st := persistedState{Theme: theme, Cursor: cursor}
	for _, snap := range entries {
		st.History = append(st.History, json.RawMessage(snap))
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
