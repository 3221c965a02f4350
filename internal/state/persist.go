package state

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Flush writes the current snapshot to disk immediately, bypassing the
// debounce window. Timestamps serialize as RFC 3339 via encoding/json.
func (s *Synchronizer) Flush() error {
	if s.persistPath == "" {
		return nil
	}

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snap := s.current.clone()
	s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.persistPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.persistPath); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// LoadFromDisk restores a previously persisted snapshot. A missing file
// is not an error; the synchronizer just starts empty.
func (s *Synchronizer) LoadFromDisk() error {
	if s.persistPath == "" {
		return nil
	}

	data, err := os.ReadFile(s.persistPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	s.mu.Lock()
	s.current = &snap
	s.mu.Unlock()
	return nil
}

// Credentials maps an account ID to its encoded secret. It lives in its
// own file, kept apart from the public snapshot.
type Credentials map[string]string

// SaveCredentials writes the credential map next to the snapshot with
// owner-only permissions. Secrets are base64 encoded, not encrypted; the
// file permission is the boundary.
func SaveCredentials(dir string, creds Credentials) error {
	encoded := make(map[string]string, len(creds))
	for id, secret := range creds {
		encoded[id] = base64.StdEncoding.EncodeToString([]byte(secret))
	}

	data, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	path := filepath.Join(dir, "credentials.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

// LoadCredentials reads the credential file, returning an empty map when
// none exists.
func LoadCredentials(dir string) (Credentials, error) {
	data, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var encoded map[string]string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	creds := make(Credentials, len(encoded))
	for id, enc := range encoded {
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decode credential for %s: %w", id, err)
		}
		creds[id] = string(raw)
	}
	return creds, nil
}
