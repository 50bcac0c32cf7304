package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore persists each snapshot as a single JSON document under a base
// directory. Saves overwrite the whole document via a temp-file rename so a
// crashed write never leaves a truncated snapshot behind.
type FileStore[T any] struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

type fileRecord[T any] struct {
	Meta     Meta `json:"meta"`
	Snapshot T    `json:"snapshot"`
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption[T any] func(*FileStore[T])

// FileStoreWithClock overrides the timestamp source, mainly for tests.
func FileStoreWithClock[T any](now func() time.Time) FileStoreOption[T] {
	return func(s *FileStore[T]) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFileStore constructs a FileStore rooted at dir. The directory is created
// lazily on first Save.
func NewFileStore[T any](dir string, opts ...FileStoreOption[T]) (*FileStore[T], error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot: file store directory is required")
	}
	s := &FileStore[T]{dir: dir, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *FileStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	path, err := s.path(ref)
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, Meta{}, false, nil
		}
		return zero, Meta{}, false, fmt.Errorf("snapshot: read %s: %w", path, err)
	}

	var record fileRecord[T]
	if err := json.Unmarshal(data, &record); err != nil {
		return zero, Meta{}, false, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	return record.Snapshot, record.Meta, true, nil
}

func (s *FileStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	path, err := s.path(ref)
	if err != nil {
		return Meta{}, err
	}

	if meta.SnapshotID == "" {
		meta.SnapshotID = uuid.NewString()
	}
	meta.UpdatedAt = s.now()

	record := fileRecord[T]{Meta: cloneMeta(meta), Snapshot: snapshot}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return Meta{}, fmt.Errorf("snapshot: encode %q: %w", ref.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Meta{}, fmt.Errorf("snapshot: mkdir for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return Meta{}, fmt.Errorf("snapshot: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return Meta{}, fmt.Errorf("snapshot: rename %s: %w", path, err)
	}
	return cloneMeta(meta), nil
}

func (s *FileStore[T]) path(ref Ref) (string, error) {
	key, err := ref.Identifier()
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)+".json"), nil
}
