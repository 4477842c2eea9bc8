package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/sceneforge/internal/scene"
)

const sweepYAML = `version: 1
name: sweep
trackers:
  trackers:
    - {id: a, value: 1}
    - {id: b, value: 0}
  links:
    - "[b] = [a] * 10;"
animations:
  - - {id: up, targetId: a, type: value, params: {to: 2, steps: 2}}
`

type harness struct {
	t   *testing.T
	dir string
	cfg string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "sceneforge.toml")
	content := "[store]\npath = " + quote(filepath.Join(dir, "scenes.db")) + "\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return &harness{t: t, dir: dir, cfg: cfg}
}

func quote(s string) string {
	return `'` + s + `'`
}

func (h *harness) write(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.t.Fatal(err)
	}
	return path
}

func (h *harness) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"-c", h.cfg}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersionAndHelp(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"-version"}, &out, &out); code != exitOK {
		t.Errorf("run(-version) = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "sceneforge dev") {
		t.Errorf("version output = %q", out.String())
	}

	out.Reset()
	if code := run([]string{"-h"}, &out, &out); code != exitOK {
		t.Errorf("run(-h) = %d, want 0", code)
	}
	for _, name := range []string{"check", "play", "serve", "save", "load", "export"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("help output missing %q", name)
		}
	}
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"missing argument", []string{"check"}},
		{"extra argument", []string{"export", "a", "b", "c"}},
	}
	for _, tt := range tests {
		if code, _, _ := h.run(tt.args...); code != exitUsage {
			t.Errorf("%s: run() = %d, want %d", tt.name, code, exitUsage)
		}
	}

	var out bytes.Buffer
	if code := run([]string{"-log-level", "loud", "list"}, &out, &out); code != exitUsage {
		t.Errorf("run(-log-level loud) = %d, want %d", code, exitUsage)
	}
}

func TestCheck(t *testing.T) {
	h := newHarness(t)
	good := h.write("good.yaml", sweepYAML)
	code, out, _ := h.run("check", good)
	if code != exitOK {
		t.Fatalf("check good = %d, output %q", code, out)
	}
	if !strings.Contains(out, "2 trackers, 0 point trackers, 1 links, 1 groups") || !strings.Contains(out, "ok") {
		t.Errorf("check output = %q", out)
	}

	bad := h.write("bad.yaml", strings.Replace(sweepYAML, "[b] = [a] * 10;", "[b] = [c] * 10;", 1))
	code, out, _ = h.run("check", bad)
	if code != exitError {
		t.Errorf("check bad = %d, want %d", code, exitError)
	}
	if !strings.Contains(out, "0 links") {
		t.Errorf("check bad output = %q", out)
	}

	if code, _, _ := h.run("check", filepath.Join(h.dir, "missing.yaml")); code != exitError {
		t.Errorf("check missing = %d, want %d", code, exitError)
	}
}

func TestPlayHeadless(t *testing.T) {
	h := newHarness(t)
	path := h.write("s.yaml", sweepYAML)
	code, out, errOut := h.run("play", path)
	if code != exitOK {
		t.Fatalf("play = %d, stderr %q", code, errOut)
	}
	for _, want := range []string{"== initial", "b = 10", "== step 1/1", "a = 2", "b = 20"} {
		if !strings.Contains(out, want) {
			t.Errorf("play output missing %q:\n%s", want, out)
		}
	}
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	src := h.write("s.yaml", sweepYAML)
	dst := filepath.Join(h.dir, "s.json")
	if code, _, errOut := h.run("export", src, dst); code != exitOK {
		t.Fatalf("export = %d, stderr %q", code, errOut)
	}
	doc, err := scene.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if doc.Name != "sweep" || len(doc.Trackers.Links) != 1 {
		t.Errorf("exported document = %+v", doc)
	}

	if code, _, _ := h.run("export", src, filepath.Join(h.dir, "s.txt")); code != exitError {
		t.Errorf("export to .txt = %d, want %d", code, exitError)
	}
}

func TestStoreCommands(t *testing.T) {
	h := newHarness(t)
	src := h.write("s.yaml", sweepYAML)

	code, out, errOut := h.run("save", src, "sweep")
	if code != exitOK || !strings.Contains(out, "saved sweep revision") {
		t.Fatalf("save = %d, %q, %q", code, out, errOut)
	}

	code, out, _ = h.run("list")
	if code != exitOK || !strings.Contains(out, "sweep") {
		t.Errorf("list = %d, %q", code, out)
	}

	dst := filepath.Join(h.dir, "back.yaml")
	if code, _, errOut := h.run("load", "sweep", dst); code != exitOK {
		t.Fatalf("load = %d, stderr %q", code, errOut)
	}
	doc, err := scene.ReadFile(dst)
	if err != nil || doc.Name != "sweep" {
		t.Errorf("loaded document = %+v, %v", doc, err)
	}

	if code, out, _ := h.run("delete", "sweep"); code != exitOK || !strings.Contains(out, "deleted sweep") {
		t.Errorf("delete = %d, %q", code, out)
	}
	code, out, _ = h.run("history", "sweep")
	if code != exitOK || !strings.Contains(out, "deleted") {
		t.Errorf("history = %d, %q", code, out)
	}
	if code, _, _ := h.run("load", "sweep", dst); code != exitError {
		t.Errorf("load after delete = %d, want %d", code, exitError)
	}
}

func TestBadConfig(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(h.cfg, []byte("[live]\nmax_clients = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := h.run("list")
	if code != exitError || !strings.Contains(errOut, "live.max_clients") {
		t.Errorf("run() with bad config = %d, stderr %q", code, errOut)
	}
}
