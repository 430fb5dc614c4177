package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danieljhkim/roboplan/internal/fsops"
)

const recordExt = ".json"

// Store provides an interface for persisting planning records.
type Store interface {
	// Save writes the record atomically, replacing any record with the same ID.
	Save(r *Record) error

	// Load loads the record with the given ID.
	// Returns os.ErrNotExist if it doesn't exist.
	Load(id string) (*Record, error)

	// List returns all records, newest first.
	List() ([]*Record, error)

	// Delete removes the record with the given ID.
	// Returns os.ErrNotExist if it doesn't exist.
	Delete(id string) error
}

// FileStore implements Store using one JSON file per record.
type FileStore struct {
	fs  fsops.FS
	dir string
}

// NewFileStore creates a new FileStore rooted at dir.
func NewFileStore(fs fsops.FS, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

func (s *FileStore) path(id string) (string, error) {
	if err := s.fs.ValidateIdentifier(id); err != nil {
		return "", fmt.Errorf("invalid record ID: %w", err)
	}
	return filepath.Join(s.dir, id+recordExt), nil
}

// Save writes the record atomically.
func (s *FileStore) Save(r *Record) error {
	path, err := s.path(r.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := s.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

// Load loads the record with the given ID.
func (s *FileStore) Load(id string) (*Record, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
	}

	return &r, nil
}

// List returns all records, newest first. Ties are broken by ID so the order
// is stable.
func (s *FileStore) List() ([]*Record, error) {
	names, err := s.fs.ListFiles(s.dir, recordExt)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]*Record, 0, len(names))
	for _, name := range names {
		r, err := s.Load(strings.TrimSuffix(name, recordExt))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// Delete removes the record with the given ID.
func (s *FileStore) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	exists, err := s.fs.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check record: %w", err)
	}
	if !exists {
		return os.ErrNotExist
	}

	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	return nil
}
