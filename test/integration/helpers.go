package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/danieljhkim/roboplan/internal/engine"
	"github.com/danieljhkim/roboplan/internal/history"
	"github.com/danieljhkim/roboplan/internal/perception"
)

// testFS is a filesystem implementation that tracks files in memory for testing
type testFS struct {
	files map[string][]byte
}

func newTestFS() *testFS {
	return &testFS{files: make(map[string][]byte)}
}

func (fs *testFS) Exists(path string) (bool, error) {
	_, ok := fs.files[path]
	return ok, nil
}

func (fs *testFS) Remove(path string) error {
	if _, ok := fs.files[path]; !ok {
		return os.ErrNotExist
	}
	delete(fs.files, path)
	return nil
}

func (fs *testFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	fs.files[path] = append([]byte(nil), data...)
	return nil
}

func (fs *testFS) ReadFile(path string) ([]byte, error) {
	if content, ok := fs.files[path]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, os.ErrNotExist
}

func (fs *testFS) ListFiles(dir, suffix string) ([]string, error) {
	var names []string
	for p := range fs.files {
		if filepath.Dir(p) == dir && strings.HasSuffix(p, suffix) {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (fs *testFS) ValidateIdentifier(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, "..") {
		return fmt.Errorf("invalid identifier: %q", id)
	}
	return nil
}

const kitchenScene = `objects:
  - name: cup
    type: cup
    location: table
    relation: on
  - name: vase
    location: shelf
    attributes:
      fragile: "true"
  - name: 杯子
    location: 桌子
locations:
  - name: kitchen
  - name: cabinet
    parent: kitchen
  - name: shelf
    parent: kitchen
  - name: 厨房
  - name: 柜子
    parent: 厨房
`

// writeScene writes the kitchen scene as a sidecar of a fake image and
// returns the image path.
func writeScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	image := filepath.Join(dir, "kitchen.jpg")
	if err := os.WriteFile(image, []byte("not really a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kitchen.scene.yaml"), []byte(kitchenScene), 0644); err != nil {
		t.Fatal(err)
	}
	return image
}

// setupTestEngine wires the offline perception stack to an in-memory history.
func setupTestEngine(t *testing.T) (*engine.Engine, *testFS, *history.FileStore) {
	t.Helper()
	fs := newTestFS()
	store := history.NewFileStore(fs, "/test/plans")

	n := 0
	eng := engine.New(
		perception.FileSceneParser{},
		perception.NewRuleParser(),
		store,
		nil,
		engine.WithSource("offline"),
		engine.WithClock(func() time.Time { return time.Date(2024, 1, 1, 12, 0, n, 0, time.UTC) }),
		engine.WithIDs(func() string { n++; return fmt.Sprintf("run-%02d", n) }),
	)
	return eng, fs, store
}
