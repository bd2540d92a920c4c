package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectDefaults(t *testing.T) {
	p, err := LoadProject(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if p.StackMax != DefaultStackMax || p.FramesMax != DefaultFramesMax {
		t.Fatalf("bad defaults: %+v", p)
	}
}

func TestLoadProjectFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "stackMax: 4096\nframesMax: 64\nmoduleRoots:\n  - vendor\n"
	if err := os.WriteFile(filepath.Join(dir, "neon.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if p.StackMax != 4096 || p.FramesMax != 64 {
		t.Fatalf("limits not loaded: %+v", p)
	}
	if len(p.ModuleRoots) != 1 || p.ModuleRoots[0] != "vendor" {
		t.Fatalf("roots not loaded: %+v", p.ModuleRoots)
	}
}

func TestLoadProjectWalksParents(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "neon.yaml"), []byte("stackMax: 8192\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(nested)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if p.StackMax != 8192 {
		t.Fatalf("parent config not found: %+v", p)
	}
}

func TestLoadProjectMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "neon.yaml"), []byte("stackMax: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(dir); err == nil {
		t.Fatal("malformed config must be an error")
	}
}
