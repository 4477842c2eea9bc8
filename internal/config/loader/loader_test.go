package loader

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/c.toml", "[live]\naddr = \":1\"\nmax_clients = 4\n")

	config, err := NewTOMLLoaderWithFS(memfs, "/c.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := map[string]any{"live": map[string]any{"addr": ":1", "max_clients": int64(4)}}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/none.toml").Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "a = 1\nb = = 2\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if pe.Path != "/bad.toml" || pe.Line != 2 {
		t.Errorf("ParseError = %+v, want line 2 of /bad.toml", pe)
	}
}

func TestLoadWithIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/etc/main.toml", "\"@include\" = [\"a.toml\", \"/abs/b.toml\"]\n[log]\nlevel = \"debug\"\n")
	memfs.AddFile("/etc/a.toml", "[log]\nlevel = \"warn\"\n[store]\npath = \"a.db\"\n")
	memfs.AddFile("/abs/b.toml", "[store]\npath = \"b.db\"\n")

	config, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/etc/main.toml", 3)
	if err != nil {
		t.Fatalf("LoadWithIncludes failed: %v", err)
	}
	want := map[string]any{
		"log":   map[string]any{"level": "debug"},
		"store": map[string]any{"path": "b.db"},
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("LoadWithIncludes() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWithIncludes_Cycle(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", "\"@include\" = \"b.toml\"\n")
	memfs.AddFile("/b.toml", "\"@include\" = \"a.toml\"\n")

	_, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/a.toml", 4)
	if !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("LoadWithIncludes() error = %v, want ErrIncludeDepth", err)
	}
}

func TestLoadWithIncludes_BadDirective(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", "\"@include\" = 3\n")

	if _, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/a.toml", 4); err == nil {
		t.Error("LoadWithIncludes() succeeded with a numeric include")
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	src := map[string]any{"a": map[string]any{"y": 3}, "b": map[string]any{"z": 4}}

	got := DeepMerge(dst, src)
	want := map[string]any{"a": map[string]any{"x": 1, "y": 3}, "b": map[string]any{"z": 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DeepMerge() mismatch (-want +got):\n%s", diff)
	}
	if got := DeepMerge(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("DeepMerge(nil, nil) = %v, want empty map", got)
	}
}

func TestEnvLoader(t *testing.T) {
	env := []string{
		"SCENEFORGE_LOG_LEVEL=debug",
		"SCENEFORGE_LIVE_MAX_CLIENTS=8",
		"SCENEFORGE_TRACKER_EPSILON=1e-4",
		"SCENEFORGE_SCENE_WATCH=yes",
		"SCENEFORGE_STORE_PATH=",
		"SCENEFORGE_NOSECTION=1",
		"HOME=/root",
	}
	config, err := NewEnvLoaderFrom(DefaultEnvPrefix, env).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := map[string]any{
		"log":     map[string]any{"level": "debug"},
		"live":    map[string]any{"max_clients": int64(8)},
		"tracker": map[string]any{"epsilon": 1e-4},
		"scene":   map[string]any{"watch": true},
		"store":   map[string]any{"path": ""},
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"Off", false},
		{"42", int64(42)},
		{"0.5", 0.5},
		{"33ms", "33ms"},
		{"debug", "debug"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}
