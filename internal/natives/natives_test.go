package natives

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neon-lang/neon/internal/vm"
)

func runScript(t *testing.T, src string) (vm.Value, string) {
	t.Helper()
	v := vm.New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	Install(v)
	val, err := v.Interpret(src, "script.n")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return val, buf.String()
}

func runtimeFailure(t *testing.T, src string) *vm.RuntimeError {
	t.Helper()
	v := vm.New()
	v.SetOutput(&bytes.Buffer{})
	Install(v)
	_, err := v.Interpret(src, "script.n")
	if err == nil {
		t.Fatal("expected a runtime error, got none")
	}
	var re *vm.RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RuntimeError, got %T: %s", err, err)
	}
	return re
}

func wantNumber(t *testing.T, v vm.Value, want float64) {
	t.Helper()
	if !v.IsNumber() || v.AsNumber() != want {
		t.Fatalf("expected %v, got %s", want, v.Format())
	}
}

func TestMathVariadics(t *testing.T) {
	val, _ := runScript(t, "Math.min(5, 2, 8, 1)")
	wantNumber(t, val, 1)

	val, _ = runScript(t, "Math.max(5, 2, 8, 1)")
	wantNumber(t, val, 8)

	re := runtimeFailure(t, "Math.min()")
	if !strings.Contains(re.Message, "expects at least 1 argument") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestMathFunctions(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"Math.abs(-4)", 4},
		{"Math.floor(3.9)", 3},
		{"Math.ceil(3.1)", 4},
		{"Math.sqrt(16)", 4},
		{"Math.pow(2, 10)", 1024},
	}
	for _, c := range cases {
		val, _ := runScript(t, c.src)
		if !val.IsNumber() || val.AsNumber() != c.want {
			t.Errorf("%s: expected %v, got %s", c.src, c.want, val.Format())
		}
	}
}

func TestStringMethods(t *testing.T) {
	_, out := runScript(t, `
val s = "  Hello, World  "
print s.trim()
print s.trim().toUpper()
print s.trim().toLower()
print s.trim().length()
print "hello".contains("ell")
print "hello".substring(1, 4)
print "a,b,c".split(",")
`)
	want := "Hello, World\nHELLO, WORLD\nhello, world\n12\ntrue\nell\n[a, b, c]\n"
	if out != want {
		t.Fatalf("got %q", out)
	}
}

func TestStringLengthCountsRunes(t *testing.T) {
	val, _ := runScript(t, `"héllo".length()`)
	wantNumber(t, val, 5)
}

func TestSubstringBounds(t *testing.T) {
	re := runtimeFailure(t, `"abc".substring(1, 9)`)
	if !strings.Contains(re.Message, "substring bounds out of range") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestArrayMethods(t *testing.T) {
	_, out := runScript(t, `
val arr = [1, 2]
arr.push(3)
print arr
print arr.pop()
print arr.length()
print arr.contains(2)
print ["a", "b"].join("-")
`)
	if out != "[1, 2, 3]\n3\n2\ntrue\na-b\n" {
		t.Fatalf("got %q", out)
	}
}

func TestPopFromEmptyArray(t *testing.T) {
	re := runtimeFailure(t, "[].pop()")
	if !strings.Contains(re.Message, "pop from empty array") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestMapMethods(t *testing.T) {
	_, out := runScript(t, `
val m = {"a": 1}
m.set("b", 2)
print m.get("b")
print m.has("a")
m.remove("a")
print m.has("a")
print m.keys()
print m.values()
print m.length()
`)
	if out != "2\ntrue\nfalse\n[b]\n[2]\n1\n" {
		t.Fatalf("got %q", out)
	}
}

func TestSetMethods(t *testing.T) {
	_, out := runScript(t, `
val s = {1, 2}
s.add(3)
print s.has(3)
s.remove(1)
print s.has(1)
print s.length()
`)
	if out != "true\nfalse\n2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestRangeContains(t *testing.T) {
	_, out := runScript(t, `
print (1..5).contains(4)
print (1..5).contains(5)
print (1..=5).contains(5)
`)
	if out != "true\nfalse\ntrue\n" {
		t.Fatalf("got %q", out)
	}
}

func TestClock(t *testing.T) {
	val, _ := runScript(t, "clock()")
	if !val.IsNumber() || val.AsNumber() <= 0 {
		t.Fatalf("expected positive timestamp, got %s", val.Format())
	}
}

func TestScriptArgs(t *testing.T) {
	v := vm.New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	Install(v)
	SetArgs(v, []string{"one", "two"})

	if _, err := v.Interpret("print args\nprint args[1]\n", "script.n"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if buf.String() != "[one, two]\ntwo\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestFileReadWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")

	v := vm.New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	Install(v)

	src := `
File.write(path, "hello file")
print File.exists(path)
print File.read(path)
print File.exists(path + ".missing")
`
	src = "val path = \"" + path + "\"\n" + src
	if _, err := v.Interpret(src, "script.n"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if buf.String() != "true\nhello file\nfalse\n" {
		t.Fatalf("got %q", buf.String())
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello file" {
		t.Fatalf("file content: %q, err %v", data, err)
	}
}

func TestDbRoundtrip(t *testing.T) {
	_, out := runScript(t, `
val db = Db.open(":memory:")
Db.exec(db, "CREATE TABLE users (id INTEGER, name TEXT)")
Db.exec(db, "INSERT INTO users VALUES (1, 'ada'), (2, 'grace')")
val rows = Db.query(db, "SELECT name FROM users ORDER BY id")
for row in rows {
    print row.get("name")
}
Db.close(db)
`)
	if out != "ada\ngrace\n" {
		t.Fatalf("got %q", out)
	}
}

func TestDbRejectsForeignHandle(t *testing.T) {
	re := runtimeFailure(t, `Db.exec(5, "SELECT 1")`)
	if !strings.Contains(re.Message, "database handle") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestUuid(t *testing.T) {
	val, _ := runScript(t, "Uuid.v4()")
	s := val.AsString()
	if s == nil || len(s.Value) != 36 {
		t.Fatalf("expected canonical uuid, got %s", val.Format())
	}

	_, out := runScript(t, `print Uuid.parse("C56A4180-65AA-42EC-A945-5FD21DEC0538")`)
	if out != "c56a4180-65aa-42ec-a945-5fd21dec0538\n" {
		t.Fatalf("got %q", out)
	}
}

func TestNativeErrorsCarrySourceLine(t *testing.T) {
	re := runtimeFailure(t, "val x = 1\n\"abc\".substring(0, 99)\n")
	if re.Line != 2 {
		t.Fatalf("expected line 2, got %d", re.Line)
	}
}
