package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/sceneforge/internal/ledger"
	"github.com/dshills/sceneforge/internal/link"
	"github.com/dshills/sceneforge/internal/scene"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := Open(filepath.Join(t.TempDir(), "scenes.db"), WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDoc(name string) *scene.Document {
	return &scene.Document{
		Version: scene.CurrentVersion,
		Name:    name,
		Trackers: link.Snapshot{
			Trackers:      []link.TrackerRecord{{ID: "a", Value: 1.5}},
			PointTrackers: []link.PointRecord{},
			Links:         []string{},
		},
		Animations: [][]ledger.HandleRecord{
			{{ID: "h", TargetID: "a", Type: "value", Params: map[string]any{"to": 3.0}}},
		},
	}
}

func TestPutGet(t *testing.T) {
	s := openTemp(t)
	doc := sampleDoc("orbit")

	rev, err := s.Put("orbit", doc)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if rev == "" {
		t.Error("Put() returned empty revision")
	}

	got, err := s.Get("orbit")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	entry, err := s.Stat("orbit")
	if err != nil || entry.Revision != rev {
		t.Errorf("Stat() = %+v, %v, want revision %s", entry, err, rev)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTemp(t)
	first, _ := s.Put("a", sampleDoc("one"))
	second, _ := s.Put("a", sampleDoc("two"))
	if first == second {
		t.Error("revisions not unique")
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "two" {
		t.Errorf("Get().Name = %q, want two", got.Name)
	}

	revs, err := s.History("a")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(revs) != 2 || revs[0].Revision != first || revs[1].Revision != second {
		t.Errorf("History() = %+v", revs)
	}
	if !revs[0].Saved.Before(revs[1].Saved) {
		t.Errorf("History() timestamps not increasing: %v", revs)
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTemp(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := s.Put(name, sampleDoc(name)); err != nil {
			t.Fatalf("Put(%q) error = %v", name, err)
		}
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if err := s.Delete("mid"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get("mid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete("mid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	revs, _ := s.History("mid")
	if len(revs) != 2 || !revs[1].Deleted {
		t.Errorf("History(mid) = %+v", revs)
	}
	all, _ := s.History("")
	if len(all) != 4 {
		t.Errorf("History(\"\") has %d revisions, want 4", len(all))
	}
}

func TestInvalidName(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Put("", sampleDoc("x")); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Put(\"\") error = %v, want ErrInvalidName", err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenes.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := s.Put("keep", sampleDoc("keep")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if _, err := s.Get("keep"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}

func TestOpenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenes.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := Open(path, WithTimeout(50*time.Millisecond)); err == nil {
		t.Error("second Open() on locked file succeeded")
	}
}
