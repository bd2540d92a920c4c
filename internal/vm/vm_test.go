package vm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/neon-lang/neon/internal/symbols"
)

func runScript(t *testing.T, src string) (Value, string) {
	t.Helper()
	v := New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	val, err := v.Interpret(src, "script.n")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return val, buf.String()
}

func runtimeFailure(t *testing.T, src string) (*RuntimeError, string) {
	t.Helper()
	v := New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	_, err := v.Interpret(src, "script.n")
	if err == nil {
		t.Fatal("expected a runtime error, got none")
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RuntimeError, got %T: %s", err, err)
	}
	return re, buf.String()
}

func compileFailure(t *testing.T, src string) *CompileError {
	t.Helper()
	v := New()
	_, err := v.Interpret(src, "script.n")
	if err == nil {
		t.Fatal("expected a compile error, got none")
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T: %s", err, err)
	}
	return ce
}

func wantNumber(t *testing.T, v Value, want float64) {
	t.Helper()
	if !v.IsNumber() || v.AsNumber() != want {
		t.Fatalf("expected %v, got %s", want, v.Format())
	}
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 / 2", 8},
		{"7 % 3", 1},
		{"-3 + 5", 2},
		{"2 * (3 + 4) - 1", 13},
	}
	for _, c := range cases {
		val, _ := runScript(t, c.src)
		if !val.IsNumber() || val.AsNumber() != c.want {
			t.Errorf("%s: expected %v, got %s", c.src, c.want, val.Format())
		}
	}
}

func TestComparisonAndEquality(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"4 >= 4", true},
		{"1 == 1", true},
		{"1 != 1", false},
		{`"a" == "a"`, true},
		{`"a" == "b"`, false},
		{"nil == nil", true},
		{"nil == false", false},
	}
	for _, c := range cases {
		val, _ := runScript(t, c.src)
		if val.Type != ValBool || val.AsBool() != c.want {
			t.Errorf("%s: expected %v, got %s", c.src, c.want, val.Format())
		}
	}
}

func TestLogicalOperators(t *testing.T) {
	val, _ := runScript(t, "true && 5")
	wantNumber(t, val, 5)

	val, _ = runScript(t, "false && 5")
	if val.Type != ValBool || val.AsBool() {
		t.Fatalf("false && 5 should be false, got %s", val.Format())
	}

	val, _ = runScript(t, "false || 7")
	wantNumber(t, val, 7)

	val, _ = runScript(t, "true || 7")
	if val.Type != ValBool || !val.AsBool() {
		t.Fatalf("true || 7 should be true, got %s", val.Format())
	}

	val, _ = runScript(t, "!nil")
	if val.Type != ValBool || !val.AsBool() {
		t.Fatalf("!nil should be true, got %s", val.Format())
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	_, out := runScript(t, `
var called = false
fn touch() {
    called = true
    return true
}
val r = false && touch()
print called
`)
	if out != "false\n" {
		t.Fatalf("right operand should not run, printed %q", out)
	}
}

func TestPrintFormatting(t *testing.T) {
	_, out := runScript(t, "print 1.5\nprint 3\nprint true\nprint nil\nprint \"hi\"\n")
	if out != "1.5\n3\ntrue\nnil\nhi\n" {
		t.Fatalf("got %q", out)
	}
}

func TestStringConcatAndInterpolation(t *testing.T) {
	_, out := runScript(t, `
val name = "neon"
print "hello " + name
print "1 + 1 = ${1 + 1}"
`)
	if out != "hello neon\n1 + 1 = 2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestConcatTypeMismatch(t *testing.T) {
	re, _ := runtimeFailure(t, `1 + "a"`)
	if !strings.Contains(re.Message, "operands must be two numbers or two strings") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestBlockScopingAndShadowing(t *testing.T) {
	_, out := runScript(t, `
val x = 10
{
    val x = 20
    print x
}
print x
`)
	if out != "20\n10\n" {
		t.Fatalf("got %q", out)
	}
}

func TestImmutableAssignment(t *testing.T) {
	ce := compileFailure(t, "val x = 5\nx = 10\n")
	if !strings.Contains(ce.Error(), "immutable") {
		t.Fatalf("got %q", ce.Error())
	}
	if ce.Diagnostics[0].Line != 2 {
		t.Fatalf("expected error on line 2, got %d", ce.Diagnostics[0].Line)
	}
}

func TestImmutablePostfix(t *testing.T) {
	ce := compileFailure(t, "val x = 5\nx++\n")
	if !strings.Contains(ce.Error(), "immutable") {
		t.Fatalf("got %q", ce.Error())
	}
	ce = compileFailure(t, "val y = 5\ny--\n")
	if !strings.Contains(ce.Error(), "immutable") {
		t.Fatalf("got %q", ce.Error())
	}
}

func TestVarAssignment(t *testing.T) {
	_, out := runScript(t, "var x = 5\nx = 10\nprint x\nx += 2\nprint x\n")
	if out != "10\n12\n" {
		t.Fatalf("got %q", out)
	}
}

func TestGlobalMutationAcrossFunctions(t *testing.T) {
	val, _ := runScript(t, `
var counter = 0
fn bump() {
    counter = counter + 1
}
bump()
bump()
counter
`)
	wantNumber(t, val, 2)
}

func TestIfElse(t *testing.T) {
	_, out := runScript(t, `
fn sign(n) {
    if n < 0 {
        return "neg"
    } else if n > 0 {
        return "pos"
    } else {
        return "zero"
    }
}
print sign(-3)
print sign(9)
print sign(0)
`)
	if out != "neg\npos\nzero\n" {
		t.Fatalf("got %q", out)
	}
}

func TestWhileLoop(t *testing.T) {
	val, _ := runScript(t, `
var sum = 0
var i = 0
while i < 5 {
    sum += i
    i += 1
}
sum
`)
	wantNumber(t, val, 10)
}

func TestForLoop(t *testing.T) {
	val, _ := runScript(t, `
var sum = 0
for var i = 0; i < 10; i++ {
    if i % 2 == 0 {
        continue
    }
    if i > 7 {
        break
    }
    sum += i
}
sum
`)
	// 1 + 3 + 5 + 7
	wantNumber(t, val, 16)
}

func TestForInArray(t *testing.T) {
	_, out := runScript(t, "for x in [1, 2, 3] {\n    print x\n}\n")
	if out != "1\n2\n3\n" {
		t.Fatalf("got %q", out)
	}
}

func TestForInRange(t *testing.T) {
	_, out := runScript(t, "for x in 1..4 {\n    print x\n}\nfor x in 1..=4 {\n    print x\n}\n")
	if out != "1\n2\n3\n1\n2\n3\n4\n" {
		t.Fatalf("got %q", out)
	}
}

func TestForInString(t *testing.T) {
	_, out := runScript(t, "for ch in \"abc\" {\n    print ch\n}\n")
	if out != "a\nb\nc\n" {
		t.Fatalf("got %q", out)
	}
}

func TestForInMapKeysInInsertionOrder(t *testing.T) {
	_, out := runScript(t, `
val m = {"a": 1, "b": 2, "c": 3}
for k in m {
    print k
}
`)
	if out != "a\nb\nc\n" {
		t.Fatalf("got %q", out)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	ce := compileFailure(t, "break\n")
	if !strings.Contains(ce.Error(), "'break' outside of a loop") {
		t.Fatalf("got %q", ce.Error())
	}
}

func TestFunctionsAndRecursion(t *testing.T) {
	val, _ := runScript(t, `
fn fib(n) {
    if n < 2 {
        return n
    }
    return fib(n - 1) + fib(n - 2)
}
fib(10)
`)
	wantNumber(t, val, 55)
}

func TestMutualRecursion(t *testing.T) {
	_, out := runScript(t, `
fn isEven(n) {
    if n == 0 {
        return true
    }
    return isOdd(n - 1)
}
fn isOdd(n) {
    if n == 0 {
        return false
    }
    return isEven(n - 1)
}
print isEven(10)
print isOdd(7)
`)
	if out != "true\ntrue\n" {
		t.Fatalf("got %q", out)
	}
}

func TestImplicitNilReturn(t *testing.T) {
	val, _ := runScript(t, "fn noop() {\n}\nnoop()\n")
	if !val.IsNil() {
		t.Fatalf("expected nil, got %s", val.Format())
	}
}

func TestArityMismatchIsCompileError(t *testing.T) {
	ce := compileFailure(t, "fn add(a, b) {\n    return a + b\n}\nadd(1, 2, 3)\n")
	if !strings.Contains(ce.Error(), "expects 2 arguments but got 3") {
		t.Fatalf("got %q", ce.Error())
	}
}

func TestArityMismatchAtRuntime(t *testing.T) {
	re, _ := runtimeFailure(t, `
fn add(a, b) {
    return a + b
}
val fns = [add]
fns[0](1, 2, 3)
`)
	if !strings.Contains(re.Message, "function 'add' expects 2 arguments but got 3") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestFunctionsAreValues(t *testing.T) {
	val, _ := runScript(t, `
fn twice(f, x) {
    return f(f(x))
}
fn inc(n) {
    return n + 1
}
twice(inc, 5)
`)
	wantNumber(t, val, 7)
}

func TestCaptureFromEnclosingFunctionIsRejected(t *testing.T) {
	ce := compileFailure(t, `
fn outer() {
    val x = 1
    fn inner() {
        return x
    }
    return inner
}
`)
	if !strings.Contains(ce.Error(), "cannot capture variable 'x'") {
		t.Fatalf("got %q", ce.Error())
	}
}

func TestStructs(t *testing.T) {
	_, out := runScript(t, `
struct Point {
    x
    y
    fn sum() {
        return self.x + self.y
    }
}
val p = Point(3, 4)
print p.sum()
p.x = 10
print p.x
print p
`)
	if out != "7\n10\nPoint{x: 10, y: 4}\n" {
		t.Fatalf("got %q", out)
	}
}

func TestStructUnknownField(t *testing.T) {
	re, _ := runtimeFailure(t, `
struct Point {
    x
    y
}
val p = Point(1, 2)
p.z = 3
`)
	if !strings.Contains(re.Message, "struct 'Point' has no field 'z'") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestArrayIndexing(t *testing.T) {
	_, out := runScript(t, `
val arr = [1, 2, 3]
print arr[0]
arr[1] = 5
print arr[1]
print arr
`)
	if out != "1\n5\n[1, 5, 3]\n" {
		t.Fatalf("got %q", out)
	}
}

func TestArrayIndexOutOfBounds(t *testing.T) {
	re, out := runtimeFailure(t, "val arr = [1, 2, 3]\nprint arr[10]\n")
	if !strings.Contains(re.Message, "array index 10 out of bounds (length 3)") {
		t.Fatalf("got %q", re.Message)
	}
	if re.Line != 2 {
		t.Fatalf("expected fault on line 2, got %d", re.Line)
	}
	if out != "" {
		t.Fatalf("no output expected before the fault, got %q", out)
	}
}

func TestRuntimeErrorCarriesTrace(t *testing.T) {
	re, _ := runtimeFailure(t, `
fn inner() {
    return [1][5]
}
fn outer() {
    return inner()
}
outer()
`)
	if len(re.Trace) == 0 {
		t.Fatal("expected a call trace")
	}
	joined := strings.Join(re.Trace, "\n")
	if !strings.Contains(joined, "inner()") || !strings.Contains(joined, "outer()") {
		t.Fatalf("trace missing frames: %q", joined)
	}
}

func TestMapOperations(t *testing.T) {
	_, out := runScript(t, `
val m = {"a": 1}
print m["a"]
m["b"] = 2
print m["b"]
print m["missing"]
`)
	if out != "1\n2\nnil\n" {
		t.Fatalf("got %q", out)
	}
}

func TestMapKeyRestriction(t *testing.T) {
	re, _ := runtimeFailure(t, "val m = {}\nm[[1, 2]] = 3\n")
	if !strings.Contains(re.Message, "map key must be a number, string, boolean or nil") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestSetLiteralDeduplicates(t *testing.T) {
	val, _ := runScript(t, `
val s = {1, 2, 2, 3}
var n = 0
for x in s {
    n += 1
}
n
`)
	wantNumber(t, val, 3)
}

func TestPostfixOperators(t *testing.T) {
	_, out := runScript(t, `
var i = 0
i++
print i
var j = 5
print j++
print j
j--
print j
`)
	if out != "1\n5\n6\n5\n" {
		t.Fatalf("got %q", out)
	}
}

func TestPostfixOnFieldsAndElements(t *testing.T) {
	_, out := runScript(t, `
struct Counter {
    n
}
val c = Counter(0)
c.n++
print c.n
val arr = [10]
arr[0]++
print arr[0]
`)
	if out != "1\n11\n" {
		t.Fatalf("got %q", out)
	}
}

func TestDivisionFollowsIEEE(t *testing.T) {
	_, out := runScript(t, "print 1 / 0\nprint -1 / 0\n")
	if out != "Inf\n-Inf\n" {
		t.Fatalf("got %q", out)
	}
}

func TestStackOverflow(t *testing.T) {
	re, _ := runtimeFailure(t, "fn f() {\n    return f()\n}\nf()\n")
	if !strings.Contains(re.Message, "stack overflow") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestContextCancellation(t *testing.T) {
	v := New()
	v.SetOutput(&bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v.SetContext(ctx)

	_, err := v.Interpret("while true {\n}\n", "script.n")
	if err == nil || !strings.Contains(err.Error(), "execution cancelled") {
		t.Fatalf("got %v", err)
	}
}

// stubLoader serves modules from memory and counts compilations, so
// tests can observe the at-most-once execution guarantee. aliases maps
// extra import spellings onto canonical paths.
type stubLoader struct {
	sources map[string]string
	aliases map[string]string
	loads   map[string]int
}

func newStubLoader(sources map[string]string) *stubLoader {
	return &stubLoader{sources: sources, loads: make(map[string]int)}
}

func (s *stubLoader) Resolve(path, fromFile string) (string, error) {
	if canonical, ok := s.aliases[path]; ok {
		return canonical, nil
	}
	if _, ok := s.sources[path]; !ok {
		return "", fmt.Errorf("cannot resolve module '%s'", path)
	}
	return path, nil
}

func (s *stubLoader) Load(canonical string) (*FunctionProto, error) {
	s.loads[canonical]++
	proto, diags := CompileSource(s.sources[canonical], canonical+".n", s)
	if len(diags) > 0 {
		return nil, &CompileError{Diagnostics: diags}
	}
	return proto, nil
}

// ResolveExports satisfies the analyzer's resolver without static
// export tables; membership is then checked at runtime only.
func (s *stubLoader) ResolveExports(importPath, fromFile string) (string, map[string]symbols.SymbolKind, error) {
	canonical, err := s.Resolve(importPath, fromFile)
	if err != nil {
		return "", nil, err
	}
	return canonical, nil, nil
}

func TestDoubleImportExecutesOnce(t *testing.T) {
	loader := newStubLoader(map[string]string{
		"greet": "print \"loaded\"\n",
	})
	v := New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	v.SetLoader(loader)

	_, err := v.Interpret("import \"greet\"\nimport \"greet\"\n", "main.n")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if buf.String() != "loaded\n" {
		t.Fatalf("module body must run once, printed %q", buf.String())
	}
	if loader.loads["greet"] != 1 {
		t.Fatalf("module must compile once, compiled %d times", loader.loads["greet"])
	}
}

func TestReimportDifferentModuleSameNameIsError(t *testing.T) {
	loader := newStubLoader(map[string]string{
		"a/util": "export val x = 1\n",
		"b/util": "export val x = 2\n",
	})
	v := New()
	v.SetOutput(&bytes.Buffer{})
	v.SetLoader(loader)

	_, err := v.Interpret("import \"a/util\"\nimport \"b/util\"\n", "main.n")
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T: %v", err, err)
	}
	if !strings.Contains(ce.Error(), "already declared") {
		t.Fatalf("got %q", ce.Error())
	}
}

func TestSelfImportIsCacheHit(t *testing.T) {
	loader := newStubLoader(nil)
	loader.aliases = map[string]string{"me": "main.n"}
	v := New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	v.SetLoader(loader)

	_, err := v.Interpret("print \"top\"\nimport \"me\"\nimport \"me\"\n", "main.n")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if buf.String() != "top\n" {
		t.Fatalf("entry script must not re-execute, printed %q", buf.String())
	}
	if len(loader.loads) != 0 {
		t.Fatalf("self-import must hit the cache, loads: %v", loader.loads)
	}
}

func TestModuleExports(t *testing.T) {
	loader := newStubLoader(map[string]string{
		"mathlib": `
export val answer = 42
export fn double(n) {
    return n * 2
}
val hidden = 7
`,
	})
	v := New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	v.SetLoader(loader)

	_, err := v.Interpret(`
import "mathlib"
print mathlib.answer
print mathlib.double(21)
`, "main.n")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if buf.String() != "42\n42\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestModuleNonExportedMember(t *testing.T) {
	loader := newStubLoader(map[string]string{
		"mathlib": "export val answer = 42\nval hidden = 7\n",
	})
	v := New()
	v.SetOutput(&bytes.Buffer{})
	v.SetLoader(loader)

	_, err := v.Interpret("import \"mathlib\"\nprint mathlib.hidden\n", "main.n")
	if err == nil || !strings.Contains(err.Error(), "hidden") {
		t.Fatalf("got %v", err)
	}
}

func TestImportAlias(t *testing.T) {
	loader := newStubLoader(map[string]string{
		"deeply/nested/util": "export fn id(x) {\n    return x\n}\n",
	})
	v := New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	v.SetLoader(loader)

	_, err := v.Interpret("import \"deeply/nested/util\"\nprint util.id(3)\n", "main.n")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if buf.String() != "3\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestModuleGlobalsAreIsolated(t *testing.T) {
	loader := newStubLoader(map[string]string{
		"counter": `
var n = 100
export fn bump() {
    n = n + 1
    return n
}
`,
	})
	v := New()
	var buf bytes.Buffer
	v.SetOutput(&buf)
	v.SetLoader(loader)

	_, err := v.Interpret(`
import "counter"
var n = 1
print counter.bump()
print counter.bump()
print n
`, "main.n")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if buf.String() != "101\n102\n1\n" {
		t.Fatalf("module state leaked: %q", buf.String())
	}
}

func TestCallingNonCallable(t *testing.T) {
	re, _ := runtimeFailure(t, "val x = 5\nx()\n")
	if !strings.Contains(re.Message, "can only call functions and structs") {
		t.Fatalf("got %q", re.Message)
	}
}

func TestStringEscapes(t *testing.T) {
	_, out := runScript(t, `print "a\tb\nc"`)
	if out != "a\tb\nc\n" {
		t.Fatalf("got %q", out)
	}
}

func TestInternerSharesStrings(t *testing.T) {
	v := New()
	a := v.Intern("hello")
	b := v.Intern("hello")
	if a.Obj != b.Obj {
		t.Fatal("equal strings must share one object")
	}
}
