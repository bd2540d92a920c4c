package modules

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neon-lang/neon/internal/symbols"
	"github.com/neon-lang/neon/internal/vm"
)

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveRelative(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "lib.n", "export val x = 1\n")
	main := writeFile(t, dir, "main.n", "import \"./lib\"\n")

	l := NewLoader()
	got, err := l.Resolve("./lib", main)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != lib {
		t.Fatalf("expected %s, got %s", lib, got)
	}
}

func TestResolveProbesExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alt.neon", "export val x = 1\n")
	main := writeFile(t, dir, "main.n", "")

	l := NewLoader()
	got, err := l.Resolve("./alt", main)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.HasSuffix(got, "alt.neon") {
		t.Fatalf("expected the .neon file, got %s", got)
	}
}

func TestResolveBareNameFallsBackToRoots(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "vendor")
	shared := writeFile(t, root, "shared.n", "export val x = 1\n")
	main := writeFile(t, dir, "main.n", "")

	l := NewLoader(root)
	got, err := l.Resolve("shared", main)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != shared {
		t.Fatalf("expected %s, got %s", shared, got)
	}
}

func TestResolveSiblingBeforeRoots(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "vendor")
	writeFile(t, root, "util.n", "export val which = \"vendor\"\n")
	sibling := writeFile(t, dir, "util.n", "export val which = \"sibling\"\n")
	main := writeFile(t, dir, "main.n", "")

	l := NewLoader(root)
	got, err := l.Resolve("util", main)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != sibling {
		t.Fatalf("expected sibling file, got %s", got)
	}
}

func TestResolveRejectsSystemModules(t *testing.T) {
	l := NewLoader()
	if _, err := l.Resolve("system/io", "main.n"); err == nil {
		t.Fatal("system modules must not resolve")
	}
}

func TestResolveUnknownModule(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.n", "")

	l := NewLoader()
	_, err := l.Resolve("./nope", main)
	if err == nil || !strings.Contains(err.Error(), "cannot resolve module './nope'") {
		t.Fatalf("got %v", err)
	}
}

func TestLoadCachesPrototypes(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "lib.n", "export fn id(x) {\n    return x\n}\n")

	l := NewLoader()
	first, err := l.Load(lib)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	second, err := l.Load(lib)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if first != second {
		t.Fatal("repeat loads must return the cached prototype")
	}
}

func TestLoadReportsCompileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.n", "val = 5\n")

	l := NewLoader()
	_, err := l.Load(bad)
	if err == nil {
		t.Fatal("expected a compile error")
	}
	if _, ok := err.(*vm.CompileError); !ok {
		t.Fatalf("expected *vm.CompileError, got %T", err)
	}
}

func TestResolveExports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.n", `
export val answer = 42
export fn double(n) {
    return n * 2
}
export struct Point {
    x
    y
}
val hidden = 1
`)
	main := writeFile(t, dir, "main.n", "")

	l := NewLoader()
	_, exports, err := l.ResolveExports("./lib", main)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(exports) != 3 {
		t.Fatalf("expected 3 exports, got %d: %v", len(exports), exports)
	}
	if exports["double"] != symbols.FunctionSymbol {
		t.Errorf("double should be a function, got %v", exports["double"])
	}
	if exports["Point"] != symbols.StructSymbol {
		t.Errorf("Point should be a struct, got %v", exports["Point"])
	}
	if _, ok := exports["hidden"]; ok {
		t.Error("hidden must not be exported")
	}
}

func TestCircularImportDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.n", "import \"./b\"\nexport val x = 1\n")
	writeFile(t, dir, "b.n", "import \"./a\"\nexport val y = 2\n")
	main := writeFile(t, dir, "main.n", "")

	l := NewLoader()
	_, _, err := l.ResolveExports("./a", main)
	if err == nil || !strings.Contains(err.Error(), "circular import detected: a -> b -> a") {
		t.Fatalf("got %v", err)
	}
}

func TestEndToEndImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greeting.n", `
print "module body"
export fn greet(name) {
    return "hi " + name
}
`)
	main := writeFile(t, dir, "main.n", `
import "./greeting"
import "./greeting"
print greeting.greet("neon")
`)

	src, err := os.ReadFile(main)
	if err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	v := vm.New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	v.SetLoader(l)

	if _, err := v.Interpret(string(src), main); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if buf.String() != "module body\nhi neon\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestStaticUnknownExportIsCompileError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.n", "export val x = 1\n")
	main := writeFile(t, dir, "main.n", "import \"./lib\"\nprint lib.nope\n")

	src, err := os.ReadFile(main)
	if err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	v := vm.New()
	v.SetOutput(&bytes.Buffer{})
	v.SetLoader(l)

	_, err = v.Interpret(string(src), main)
	ce, ok := err.(*vm.CompileError)
	if !ok {
		t.Fatalf("expected *vm.CompileError, got %T: %v", err, err)
	}
	if !strings.Contains(ce.Error(), "nope") {
		t.Fatalf("got %q", ce.Error())
	}
}
