package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DiskStore writes a Record as a JSON file per run. The directory is
// created lazily on the first Save.
type DiskStore struct {
	// MaxRecords caps the files kept; the oldest by modification time are
	// removed after each Save. Zero keeps everything.
	MaxRecords int

	mu  sync.Mutex
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Dir returns the directory records are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes a Record as a JSON file to disk.
func (s *DiskStore) Save(rec *Record) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling run %s: %w", rec.ID, err)
	}
	if err := os.WriteFile(s.path(rec.ID), data, 0o600); err != nil {
		return fmt.Errorf("writing run %s: %w", rec.ID, err)
	}
	return s.prune()
}

// prune removes the oldest record files beyond MaxRecords.
func (s *DiskStore) prune() error {
	if s.MaxRecords <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	type file struct {
		name string
		mod  time.Time
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed concurrently
		}
		files = append(files, file{e.Name(), info.ModTime()})
	}
	if len(files) <= s.MaxRecords {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.After(files[j].mod)
		}
		return files[i].name < files[j].name
	})
	for _, f := range files[s.MaxRecords:] {
		err := os.Remove(filepath.Join(s.dir, f.name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("pruning runs: %w", err)
		}
	}
	return nil
}

// Load reads a Record from disk.
func (s *DiskStore) Load(runID string) (*Record, error) {
	if err := ValidateID(runID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading run %s: %w", runID, ErrNotFound)
		}
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshalling run %s: %w", runID, err)
	}
	return &rec, nil
}

// List reads every record in the directory, most recent first.
// Unreadable files are skipped.
func (s *DiskStore) List(limit int) ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	var out []*Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		out = append(out, rec)
	}

	sortRecent(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *DiskStore) path(runID string) string {
	return filepath.Join(s.dir, runID+".json")
}

func (s *DiskStore) ensureDir() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	return nil
}

func sortRecent(recs []*Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].StartedAt.After(recs[j].StartedAt)
	})
}
