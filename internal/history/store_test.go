package history

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/danieljhkim/roboplan/internal/fsops"
	"github.com/danieljhkim/roboplan/internal/planner"
	"github.com/danieljhkim/roboplan/internal/scene"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "plans")
	return NewFileStore(fsops.NewRealFS(), dir), dir
}

func sampleRecord(id string, at time.Time) *Record {
	return &Record{
		ID:         id,
		CreatedAt:  at,
		Image:      "kitchen.jpg",
		Text:       "put the cup in the cabinet",
		Perception: "offline",
		Scene: &scene.Scene{
			Objects:   []scene.Object{{Name: "cup", Location: "table"}},
			Locations: []scene.Location{{Name: "kitchen"}, {Name: "cabinet", Parent: "kitchen"}},
		},
		Instruction: &planner.Instruction{Intent: planner.IntentPlace, Target: "cup", Destination: "cabinet"},
		Plan: planner.Plan{
			planner.Navigate{Target: "cup", Purpose: planner.PurposeReachObject},
			planner.Grasp{Target: "cup"},
			planner.Navigate{Target: "cabinet", Purpose: planner.PurposeReachDestination},
			planner.Place{Target: "cup", Destination: "cabinet"},
		},
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	store, dir := newTestStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := sampleRecord("3f1c", at)

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "3f1c.json")); err != nil {
		t.Fatalf("expected record file: %v", err)
	}

	got, err := store.Load("3f1c")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestFileStore_FailedRecord(t *testing.T) {
	store, _ := newTestStore(t)
	rec := &Record{
		ID:        "bad",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Text:      "teleport the cup",
		Error:     "unsupported intent: teleport",
		ErrorKind: "unsupported_intent",
	}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load("bad")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Succeeded() {
		t.Error("expected failed record")
	}
	if got.Plan != nil {
		t.Errorf("expected no plan, got %v", got.Plan)
	}
	if got.Status() != "unsupported_intent" {
		t.Errorf("Status() = %q", got.Status())
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load("nope")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestFileStore_InvalidID(t *testing.T) {
	store, _ := newTestStore(t)

	for _, id := range []string{"", "../escape", "a/b"} {
		if err := store.Save(&Record{ID: id}); err == nil {
			t.Errorf("Save(%q) expected error", id)
		}
		if _, err := store.Load(id); err == nil {
			t.Errorf("Load(%q) expected error", id)
		}
	}
}

func TestFileStore_List(t *testing.T) {
	store, dir := newTestStore(t)

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() on missing dir error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty list, got %d", len(records))
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, r := range []*Record{
		sampleRecord("old", base),
		sampleRecord("new", base.Add(time.Hour)),
		sampleRecord("b-tie", base.Add(30*time.Minute)),
		sampleRecord("a-tie", base.Add(30*time.Minute)),
	} {
		if err := store.Save(r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	records, err = store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	want := []string{"new", "a-tie", "b-tie", "old"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("List() order = %v, want %v", ids, want)
	}
}

func TestFileStore_ListCorrupt(t *testing.T) {
	store, dir := newTestStore(t)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.List(); err == nil {
		t.Error("expected error for corrupt record")
	}
}

func TestFileStore_Delete(t *testing.T) {
	store, dir := newTestStore(t)
	if err := store.Save(sampleRecord("gone", time.Now())); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete("gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.json")); !os.IsNotExist(err) {
		t.Errorf("expected file removed, stat err = %v", err)
	}
	if err := store.Delete("gone"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("second Delete() = %v, want os.ErrNotExist", err)
	}
}
