package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/chmdznr/oss-file-organizer/internal/blob"
	"github.com/chmdznr/oss-file-organizer/internal/source"
	"github.com/chmdznr/oss-file-organizer/internal/thumb"
	"github.com/chmdznr/oss-file-organizer/pkg/models"
)

type unreadableFile struct {
	name     string
	mimeType string
}

func (f unreadableFile) Name() string { return f.name }
func (f unreadableFile) Type() string { return f.mimeType }
func (f unreadableFile) Size() int64  { return 3 }

func (f unreadableFile) Open() (io.ReadCloser, error) {
	return nil, errors.New("read failed")
}

type failingBlobs struct {
	getErr error
	setErr error
}

func (f failingBlobs) Get(context.Context, string) (string, bool, error) {
	return "", false, f.getErr
}

func (f failingBlobs) Set(context.Context, string, string) error {
	return f.setErr
}

func newTestStore(t *testing.T, blobs blob.Store) *Store {
	t.Helper()
	var mu sync.Mutex
	n := 0
	clock := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	return New(blobs, &Config{
		Loader: thumb.NewLoader(&thumb.LoaderConfig{NumWorkers: 4}, nil),
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%03d", n)
		},
		Now: func() time.Time { return clock },
	})
}

func countNotifications(s *Store) *int {
	count := new(int)
	s.Subscribe(func() { *count++ })
	return count
}

func TestAddFilesCommitsBatchOnce(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	s := newTestStore(t, blobs)
	notified := countNotifications(s)

	a := source.FromBytes("a.png", "image/png", []byte("png"))
	b := unreadableFile{name: "b.jpg", mimeType: "image/jpeg"}

	added, err := s.AddFiles(ctx, []source.File{a, b})
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 added records, got %d", len(added))
	}

	records := s.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].HasThumbnail() || records[0].Name != "a.png" {
		t.Errorf("a should have a thumbnail: %+v", records[0])
	}
	if records[1].HasThumbnail() || records[1].Name != "b.jpg" {
		t.Errorf("b should be kept without thumbnail: %+v", records[1])
	}
	if records[1].Category != models.CategoryImages {
		t.Errorf("b category = %s", records[1].Category)
	}
	if blobs.Writes() != 1 {
		t.Errorf("expected exactly one save, got %d", blobs.Writes())
	}
	if *notified != 1 {
		t.Errorf("expected one notification, got %d", *notified)
	}
}

func TestAddFilesPrependsNewBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, blob.NewMemory())

	if _, err := s.AddFiles(ctx, []source.File{source.FromBytes("old.txt", "text/plain", nil)}); err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if _, err := s.AddFiles(ctx, []source.File{
		source.FromBytes("new1.mp4", "video/mp4", nil),
		source.FromBytes("new2.zip", "application/zip", nil),
	}); err != nil {
		t.Fatalf("AddFiles: %v", err)
	}

	var names []string
	for _, r := range s.Records() {
		names = append(names, r.Name)
	}
	want := []string{"new1.mp4", "new2.zip", "old.txt"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("order = %v; want %v", names, want)
	}
}

func TestAddFilesSkipsThumbnailsForNonImages(t *testing.T) {
	s := newTestStore(t, blob.NewMemory())
	added, err := s.AddFiles(context.Background(), []source.File{
		source.FromBytes("clip.mp4", "video/mp4", []byte("video")),
	})
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if added[0].HasThumbnail() {
		t.Error("videos should not get thumbnails")
	}
}

func TestConcurrentBatchesAllLand(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, blob.NewMemory())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("f%d.png", i)
			if _, err := s.AddFiles(ctx, []source.File{source.FromBytes(name, "image/png", []byte{byte(i)})}); err != nil {
				t.Errorf("AddFiles: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(s.Records()); got != 8 {
		t.Errorf("expected 8 records, got %d", got)
	}
}

func TestDeleteFile(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	s := newTestStore(t, blobs)
	added, _ := s.AddFiles(ctx, []source.File{
		source.FromBytes("a.txt", "text/plain", nil),
		source.FromBytes("b.txt", "text/plain", nil),
	})
	notified := countNotifications(s)

	t.Run("unknown id", func(t *testing.T) {
		writes := blobs.Writes()
		if err := s.DeleteFile(ctx, "does-not-exist"); err != nil {
			t.Fatalf("DeleteFile: %v", err)
		}
		if len(s.Records()) != 2 {
			t.Errorf("list changed: %d records", len(s.Records()))
		}
		if blobs.Writes() != writes+1 {
			t.Error("expected a persist for unknown id")
		}
		if *notified != 1 {
			t.Errorf("notifications = %d", *notified)
		}
	})

	t.Run("existing id", func(t *testing.T) {
		if err := s.DeleteFile(ctx, added[0].ID); err != nil {
			t.Fatalf("DeleteFile: %v", err)
		}
		records := s.Records()
		if len(records) != 1 || records[0].ID != added[1].ID {
			t.Errorf("unexpected records: %+v", records)
		}
	})
}

func TestMoveFile(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	s := newTestStore(t, blobs)
	added, _ := s.AddFiles(ctx, []source.File{source.FromBytes("x.zip", "application/zip", nil)})
	id := added[0].ID

	if err := s.MoveFile(ctx, id, "images"); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	rec, _ := s.Get(id)
	if rec.Category != models.CategoryImages {
		t.Errorf("category = %s; want images", rec.Category)
	}

	writes := blobs.Writes()
	err := s.MoveFile(ctx, id, "bogus")
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	rec, _ = s.Get(id)
	if rec.Category != models.CategoryImages {
		t.Errorf("category changed to %s", rec.Category)
	}
	if blobs.Writes() != writes {
		t.Error("rejected move should not persist")
	}

	if err := s.MoveFile(ctx, "missing", "docs"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.MoveFile(ctx, id, " Docs "); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	rec, _ = s.Get(id)
	if rec.Category != models.CategoryDocs {
		t.Errorf("category = %s; want docs", rec.Category)
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	s := newTestStore(t, blobs)
	s.AddFiles(ctx, []source.File{source.FromBytes("a.txt", "text/plain", nil)})

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if len(s.Records()) != 0 {
		t.Error("expected empty list")
	}
	raw, _, _ := blobs.Get(ctx, DefaultKey)
	if raw != "[]" {
		t.Errorf("persisted blob = %q; want []", raw)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	s := newTestStore(t, blobs)
	s.AddFiles(ctx, []source.File{
		source.FromBytes("a.png", "image/png", []byte("img")),
		source.FromBytes("b.pdf", "application/pdf", nil),
	})
	s.MoveFile(ctx, s.Records()[1].ID, "others")

	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := newTestStore(t, blobs)
	reloaded.Load(ctx)

	want := s.Records()
	got := reloaded.Records()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d records; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Category != want[i].Category || got[i].Thumbnail != want[i].Thumbnail {
			t.Errorf("record %d = %+v; want %+v", i, got[i], want[i])
		}
		if !got[i].AddedAt.Equal(want[i].AddedAt) {
			t.Errorf("record %d AddedAt = %v; want %v", i, got[i].AddedAt, want[i].AddedAt)
		}
	}
}

func TestLoadRecoversFromBadBlobs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		blobs blob.Store
	}{
		{"absent", blob.NewMemory()},
		{"unparsable", func() blob.Store {
			m := blob.NewMemory()
			m.Set(ctx, DefaultKey, "{not json")
			return m
		}()},
		{"wrong shape", func() blob.Store {
			m := blob.NewMemory()
			m.Set(ctx, DefaultKey, `{"id":"x"}`)
			return m
		}()},
		{"null", func() blob.Store {
			m := blob.NewMemory()
			m.Set(ctx, DefaultKey, `null`)
			return m
		}()},
		{"read error", failingBlobs{getErr: errors.New("disk gone")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, tt.blobs)
			s.Load(ctx)
			records := s.Records()
			if records == nil || len(records) != 0 {
				t.Errorf("expected empty list, got %+v", records)
			}
		})
	}
}

func TestLoadRepairsInvalidCategory(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	blobs.Set(ctx, DefaultKey, `[{"id":"1","name":"a.pdf","type":"","size":1,"date":0,"category":"music"}]`)

	s := newTestStore(t, blobs)
	s.Load(ctx)
	if got := s.Records()[0].Category; got != models.CategoryDocs {
		t.Errorf("category = %s; want docs", got)
	}
}

func TestSaveErrorIsReturned(t *testing.T) {
	s := newTestStore(t, failingBlobs{setErr: errors.New("read-only")})
	_, err := s.AddFiles(context.Background(), []source.File{source.FromBytes("a.txt", "text/plain", nil)})
	if err == nil {
		t.Fatal("expected save error")
	}
	if len(s.Records()) != 1 {
		t.Error("in-memory list should keep the batch")
	}
}

func TestResolve(t *testing.T) {
	s := newTestStore(t, blob.NewMemory())
	s.AddFiles(context.Background(), []source.File{
		source.FromBytes("a.txt", "text/plain", nil),
		source.FromBytes("b.txt", "text/plain", nil),
	})

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{"exact", "id-001", "id-001", nil},
		{"unique prefix", "id-002", "id-002", nil},
		{"ambiguous prefix", "id-00", "", ErrAmbiguous},
		{"unknown", "zzz", "", ErrNotFound},
		{"empty", "  ", "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := s.Resolve(tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve(%q) err = %v; want %v", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil || rec.ID != tt.wantID {
				t.Errorf("Resolve(%q) = %s, %v", tt.ref, rec.ID, err)
			}
		})
	}
}

func TestUnsubscribe(t *testing.T) {
	s := newTestStore(t, blob.NewMemory())
	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })
	s.ClearAll(context.Background())
	unsubscribe()
	s.ClearAll(context.Background())
	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
}

func TestLastSaved(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, blob.NewMemory())
	if _, ok := s.LastSaved(ctx); ok {
		t.Error("LastSaved before any save should report false")
	}
	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, ok := s.LastSaved(ctx)
	if !ok || time.Since(saved) > time.Minute {
		t.Errorf("LastSaved = %v, %v", saved, ok)
	}

	untimed := newTestStore(t, failingBlobs{})
	if _, ok := untimed.LastSaved(ctx); ok {
		t.Error("backend without timestamps should report false")
	}
}
