// Package credentials persists the bearer token between runs. It is the
// client-side analog of the browser cookie jar: a single durable record
// holding the token, the identity it was issued to, and an expiry.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/watchroom/client-go/internal/types"
)

// Record is the persisted credential. Identity travels with the token so a
// restored session knows who it belongs to without a network call.
type Record struct {
	Token     string          `json:"token"`
	Identity  *types.Identity `json:"identity,omitempty"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (r Record) expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Store is the durable credential storage. Read reports ok=false when no
// usable (present, unexpired) record exists.
type Store interface {
	Read() (Record, bool, error)
	Write(rec Record) error
	Clear() error
}

// FileStore keeps the record as a JSON file with owner-only permissions.
type FileStore struct {
	path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (f *FileStore) Read() (Record, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read credentials: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode credentials: %w", err)
	}

	if rec.Token == "" || rec.expired(f.now()) {
		return Record{}, false, nil
	}

	return rec, true, nil
}

func (f *FileStore) Write(rec Record) error {
	if rec.Token == "" {
		return fmt.Errorf("refusing to persist empty token")
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	return nil
}

// Clear removes the persisted record. Clearing an absent record is not an
// error so logout stays idempotent.
func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
