// Package store owns the in-memory list of file records and persists it as a
// single blob after every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chmdznr/oss-file-organizer/internal/blob"
	"github.com/chmdznr/oss-file-organizer/internal/category"
	"github.com/chmdznr/oss-file-organizer/internal/source"
	"github.com/chmdznr/oss-file-organizer/internal/thumb"
	"github.com/chmdznr/oss-file-organizer/pkg/models"
)

// DefaultKey is the blob key the record list is stored under
const DefaultKey = "fo_files_v1"

var (
	ErrNotFound        = errors.New("file not found")
	ErrAmbiguous       = errors.New("id prefix matches several files")
	ErrInvalidCategory = errors.New("invalid category")
)

// Config holds configuration for the store
type Config struct {
	Key    string
	Loader *thumb.Loader
	NewID  func() string
	Now    func() time.Time
}

// DefaultConfig returns default store configuration
func DefaultConfig() Config {
	return Config{
		Key:    DefaultKey,
		Loader: thumb.NewLoader(nil, nil),
		NewID:  uuid.NewString,
		Now:    time.Now,
	}
}

// Store is the single source of truth for file records
type Store struct {
	blobs  blob.Store
	key    string
	loader *thumb.Loader
	newID  func() string
	now    func() time.Time

	mu      sync.Mutex
	records []models.FileRecord

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int
}

// New creates a store backed by blobs. Zero fields of config fall back to
// the defaults.
func New(blobs blob.Store, config *Config) *Store {
	defaults := DefaultConfig()
	if config == nil {
		config = &defaults
	}
	s := &Store{
		blobs:     blobs,
		key:       config.Key,
		loader:    config.Loader,
		newID:     config.NewID,
		now:       config.Now,
		listeners: make(map[int]func()),
	}
	if s.key == "" {
		s.key = defaults.Key
	}
	if s.loader == nil {
		s.loader = defaults.Loader
	}
	if s.newID == nil {
		s.newID = defaults.NewID
	}
	if s.now == nil {
		s.now = defaults.Now
	}
	return s
}

// Load replaces the in-memory list with the persisted blob. A missing,
// unreadable or unparsable blob yields an empty list; the failure is logged.
func (s *Store) Load(ctx context.Context) {
	records := s.read(ctx)

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

func (s *Store) read(ctx context.Context) []models.FileRecord {
	raw, ok, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		slog.Error("load error", "key", s.key, "error", err)
		return []models.FileRecord{}
	}
	if !ok || raw == "" {
		return []models.FileRecord{}
	}

	var records []models.FileRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.Error("load error", "key", s.key, "error", err)
		return []models.FileRecord{}
	}

	for i := range records {
		if !category.Valid(records[i].Category) {
			repaired := category.Categorize(records[i].Type, records[i].Name)
			slog.Warn("repairing invalid category",
				"id", records[i].ID,
				"category", records[i].Category,
				"repaired", repaired,
			)
			records[i].Category = repaired
		}
	}
	if records == nil {
		records = []models.FileRecord{}
	}
	return records
}

// Save writes the full current list, replacing prior contents
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	records := s.records
	if records == nil {
		records = []models.FileRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := s.blobs.Set(ctx, s.key, string(data)); err != nil {
		slog.Error("save error", "key", s.key, "error", err)
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

// AddFiles creates one record per file and reads image files into
// thumbnails. The whole batch is prepended in a single commit once every read
// has settled, followed by one save and one change notification. A failed
// read keeps the record without a thumbnail.
func (s *Store) AddFiles(ctx context.Context, files []source.File) ([]models.FileRecord, error) {
	if len(files) == 0 {
		return nil, nil
	}

	batch := make([]models.FileRecord, len(files))
	var images []source.File
	var imageIdx []int
	for i, f := range files {
		batch[i] = models.FileRecord{
			ID:       s.newID(),
			Name:     f.Name(),
			Type:     f.Type(),
			Size:     f.Size(),
			AddedAt:  s.now(),
			Category: category.Categorize(f.Type(), f.Name()),
		}
		if category.IsImage(f.Type()) {
			images = append(images, f)
			imageIdx = append(imageIdx, i)
		}
	}

	for i, res := range s.loader.Load(images) {
		if res.Err == nil {
			batch[imageIdx[i]].Thumbnail = res.Thumb
		}
	}

	s.mu.Lock()
	merged := make([]models.FileRecord, 0, len(batch)+len(s.records))
	merged = append(merged, batch...)
	merged = append(merged, s.records...)
	s.records = merged
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	slog.Info("files added", "count", len(batch), "images", len(images))
	s.notify()
	return batch, err
}

// DeleteFile removes the record with id. An unknown id is not an error; the
// list is persisted either way.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	s.mu.Lock()
	kept := make([]models.FileRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.records = kept
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return err
}

// MoveFile changes the category of the record with id. An invalid category
// or unknown id leaves the list untouched.
func (s *Store) MoveFile(ctx context.Context, id, newCategory string) error {
	target, ok := category.Parse(newCategory)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, newCategory)
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.records[idx].Category = target
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return err
}

// ClearAll empties the list
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.records = []models.FileRecord{}
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return err
}

// LastSaved reports when the list was last written, when the backend
// records it
func (s *Store) LastSaved(ctx context.Context) (time.Time, bool) {
	ts, ok := s.blobs.(blob.Timestamped)
	if !ok {
		return time.Time{}, false
	}
	updated, err := ts.UpdatedAt(ctx, s.key)
	if err != nil {
		if !errors.Is(err, blob.ErrNotSaved) {
			slog.Warn("failed to read save time", "key", s.key, "error", err)
		}
		return time.Time{}, false
	}
	return updated, true
}

// Records returns a copy of the list in storage order
func (s *Store) Records() []models.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FileRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the exact id
func (s *Store) Get(id string) (models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return models.FileRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.records[idx], nil
}

// Resolve finds a record by exact id or by a unique id prefix
func (s *Store) Resolve(ref string) (models.FileRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.FileRecord{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(ref); idx >= 0 {
		return s.records[idx], nil
	}

	var match *models.FileRecord
	for i := range s.records {
		if !strings.HasPrefix(s.records[i].ID, ref) {
			continue
		}
		if match != nil {
			return models.FileRecord{}, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
		}
		match = &s.records[i]
	}
	if match == nil {
		return models.FileRecord{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return *match, nil
}

func (s *Store) indexLocked(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Subscribe registers fn to run after every committed mutation. The returned
// func removes the listener.
func (s *Store) Subscribe(fn func()) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	s.listenersMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
