package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Snapshot keys. Each key holds one independent record; the owning
// package decides the encoding (JSON arrays/objects, plain integers).
const (
	KeyTasks    = "tasks"
	KeySessions = "sessions"
	KeyConfig   = "pomodoroConfig"
	KeyTrees    = "trees"
	KeyBreak    = "breakDuration"
)

// Get returns the record stored under key. The second return value is
// false if no record exists.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM snapshot WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes the record under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshot (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Trees returns the forest counter: one tree per completed work
// interval, monotonically increasing. Missing or malformed values read
// as zero.
func (s *Store) Trees() int {
	v, ok, err := s.Get(KeyTrees)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Store) SetTrees(n int) error {
	return s.Set(KeyTrees, strconv.Itoa(n))
}

// SetBreakHandoff stores the length of the next long break in seconds.
// The value is transient: it only exists to hand the duration to the
// break surface.
func (s *Store) SetBreakHandoff(seconds int) error {
	return s.Set(KeyBreak, strconv.Itoa(seconds))
}

// BreakHandoff returns the pending break length in seconds, defaulting
// to five minutes when absent or unreadable.
func (s *Store) BreakHandoff() int {
	v, ok, err := s.Get(KeyBreak)
	if err != nil || !ok {
		return 300
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 300
	}
	return n
}
