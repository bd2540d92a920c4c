package parser

import (
	"testing"

	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/lexer"
	"github.com/neon-lang/neon/internal/pipeline"
)

func parseSource(t *testing.T, input string) (*ast.Program, *pipeline.PipelineContext) {
	t.Helper()
	ctx := pipeline.NewPipelineContext(input)
	lp := lexer.LexerProcessor{}
	ctx = lp.Process(ctx)

	p := New(ctx.TokenStream, ctx)
	return p.ParseProgram(), ctx
}

func parseNoErrors(t *testing.T, input string) *ast.Program {
	t.Helper()
	prog, ctx := parseSource(t, input)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", ctx.Errors[0])
	}
	return prog
}

func TestValVarDeclarations(t *testing.T) {
	prog := parseNoErrors(t, "val x = 5\nvar y = 10\n")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	vs, ok := prog.Statements[0].(*ast.ValStatement)
	if !ok || vs.Name.Value != "x" {
		t.Fatalf("expected val x, got %T", prog.Statements[0])
	}
	vr, ok := prog.Statements[1].(*ast.VarStatement)
	if !ok || vr.Name.Value != "y" {
		t.Fatalf("expected var y, got %T", prog.Statements[1])
	}
}

func TestOperatorPrecedence(t *testing.T) {
	prog := parseNoErrors(t, "1 + 2 * 3\n")
	es := prog.Statements[0].(*ast.ExpressionStatement)
	add, ok := es.Expression.(*ast.InfixExpression)
	if !ok || add.Operator != "+" {
		t.Fatalf("expected + at root, got %v", es.Expression)
	}
	mul, ok := add.Right.(*ast.InfixExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("expected * on the right, got %T", add.Right)
	}
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	prog := parseNoErrors(t, "(1 + 2) * 3\n")
	es := prog.Statements[0].(*ast.ExpressionStatement)
	mul, ok := es.Expression.(*ast.InfixExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("expected * at root, got %v", es.Expression)
	}
	if _, ok := mul.Left.(*ast.InfixExpression); !ok {
		t.Fatalf("expected grouped + on the left, got %T", mul.Left)
	}
}

func TestLogicalOperatorsShareRepresentation(t *testing.T) {
	prog := parseNoErrors(t, "a && b\nc and d\ne || f\ng or h\n")
	ops := []string{"&&", "&&", "||", "||"}
	for i, want := range ops {
		es := prog.Statements[i].(*ast.ExpressionStatement)
		inf := es.Expression.(*ast.InfixExpression)
		if inf.Operator != want {
			t.Errorf("statement %d: expected operator %q, got %q", i, want, inf.Operator)
		}
	}
}

func TestFunctionDeclaration(t *testing.T) {
	prog := parseNoErrors(t, "fn add(a, b) {\n    return a + b\n}\n")
	fs, ok := prog.Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("expected FunctionStatement, got %T", prog.Statements[0])
	}
	if fs.Name.Value != "add" || len(fs.Params) != 2 {
		t.Fatalf("bad function: name=%s params=%d", fs.Name.Value, len(fs.Params))
	}
	if len(fs.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fs.Body.Statements))
	}
}

func TestStructDeclaration(t *testing.T) {
	input := `struct Point {
    x
    y
    fn sum() {
        return 0
    }
}
`
	prog := parseNoErrors(t, input)
	ss, ok := prog.Statements[0].(*ast.StructStatement)
	if !ok {
		t.Fatalf("expected StructStatement, got %T", prog.Statements[0])
	}
	if len(ss.Fields) != 2 || len(ss.Methods) != 1 {
		t.Fatalf("expected 2 fields and 1 method, got %d and %d", len(ss.Fields), len(ss.Methods))
	}
}

func TestMethodCallKeepsReceiver(t *testing.T) {
	prog := parseNoErrors(t, "Math.min(1, 2)\n")
	es := prog.Statements[0].(*ast.ExpressionStatement)
	mc, ok := es.Expression.(*ast.MethodCallExpression)
	if !ok {
		t.Fatalf("expected MethodCallExpression, got %T", es.Expression)
	}
	if mc.Method.Value != "min" || len(mc.Arguments) != 2 {
		t.Fatalf("bad method call: %s/%d args", mc.Method.Value, len(mc.Arguments))
	}
}

func TestBraceLiteralDisambiguation(t *testing.T) {
	prog := parseNoErrors(t, "val m = {\"a\": 1, \"b\": 2}\nval s = {1, 2, 3}\n")
	vm := prog.Statements[0].(*ast.ValStatement)
	if _, ok := vm.Value.(*ast.MapLiteral); !ok {
		t.Fatalf("expected MapLiteral, got %T", vm.Value)
	}
	vs := prog.Statements[1].(*ast.ValStatement)
	sl, ok := vs.Value.(*ast.SetLiteral)
	if !ok {
		t.Fatalf("expected SetLiteral, got %T", vs.Value)
	}
	if len(sl.Elements) != 3 {
		t.Fatalf("expected 3 set elements, got %d", len(sl.Elements))
	}
}

func TestForLoops(t *testing.T) {
	prog := parseNoErrors(t, "for var i = 0; i < 3; i++ {\n    print i\n}\n")
	fs, ok := prog.Statements[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", prog.Statements[0])
	}
	if fs.Init == nil || fs.Condition == nil || fs.Increment == nil {
		t.Fatal("for header parts missing")
	}

	prog = parseNoErrors(t, "for x in [1, 2, 3] {\n    print x\n}\n")
	fin, ok := prog.Statements[0].(*ast.ForInStatement)
	if !ok {
		t.Fatalf("expected ForInStatement, got %T", prog.Statements[0])
	}
	if fin.Variable.Value != "x" {
		t.Fatalf("expected loop variable x, got %s", fin.Variable.Value)
	}
}

func TestRangeExpressions(t *testing.T) {
	prog := parseNoErrors(t, "val r = 1..10\nval s = 1..=10\n")
	r := prog.Statements[0].(*ast.ValStatement).Value.(*ast.RangeExpression)
	if r.Inclusive {
		t.Error("1..10 should be exclusive")
	}
	s := prog.Statements[1].(*ast.ValStatement).Value.(*ast.RangeExpression)
	if !s.Inclusive {
		t.Error("1..=10 should be inclusive")
	}
}

func TestCompoundAssignDesugars(t *testing.T) {
	prog := parseNoErrors(t, "x += 2\n")
	es := prog.Statements[0].(*ast.ExpressionStatement)
	as, ok := es.Expression.(*ast.AssignExpression)
	if !ok {
		t.Fatalf("expected AssignExpression, got %T", es.Expression)
	}
	inf, ok := as.Value.(*ast.InfixExpression)
	if !ok || inf.Operator != "+" {
		t.Fatalf("expected desugared x + 2, got %v", as.Value)
	}
}

func TestInterpolatedString(t *testing.T) {
	prog := parseNoErrors(t, "val s = \"x = ${x + 1}!\"\n")
	vs := prog.Statements[0].(*ast.ValStatement)
	is, ok := vs.Value.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("expected InterpolatedString, got %T", vs.Value)
	}
	if len(is.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(is.Parts))
	}
	if lit, ok := is.Parts[0].(*ast.StringLiteral); !ok || lit.Value != "x = " {
		t.Fatalf("bad leading part: %v", is.Parts[0])
	}
	if _, ok := is.Parts[1].(*ast.InfixExpression); !ok {
		t.Fatalf("expected embedded expression, got %T", is.Parts[1])
	}
}

func TestImportForms(t *testing.T) {
	prog := parseNoErrors(t, "import \"./lib\"\nimport helpers\n")
	imp := prog.Statements[0].(*ast.ImportStatement)
	if imp.Path != "./lib" || imp.Alias != nil {
		t.Fatalf("bad string import: %+v", imp)
	}
	imp = prog.Statements[1].(*ast.ImportStatement)
	if imp.Path != "helpers" || imp.Alias == nil {
		t.Fatalf("bad identifier import: %+v", imp)
	}
}

func TestExportWrapsDeclaration(t *testing.T) {
	prog := parseNoErrors(t, "export fn f() {\n    return 1\n}\n")
	ex, ok := prog.Statements[0].(*ast.ExportStatement)
	if !ok {
		t.Fatalf("expected ExportStatement, got %T", prog.Statements[0])
	}
	if _, ok := ex.Inner.(*ast.FunctionStatement); !ok {
		t.Fatalf("expected exported fn, got %T", ex.Inner)
	}

	_, ctx := parseSource(t, "export 5\n")
	if len(ctx.Errors) == 0 {
		t.Fatal("export of an expression should fail")
	}
}

func TestPanicModeCollectsMultipleErrors(t *testing.T) {
	input := "val = 5\nval y = 10\nfn (\n"
	_, ctx := parseSource(t, input)
	if len(ctx.Errors) < 2 {
		t.Fatalf("expected multiple errors, got %d", len(ctx.Errors))
	}
}

func TestExpectExpressionError(t *testing.T) {
	_, ctx := parseSource(t, "val x = \n")
	if len(ctx.Errors) == 0 {
		t.Fatal("expected a parse error")
	}
	found := false
	for _, e := range ctx.Errors {
		if e.Message == "Expect expression" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'Expect expression', got %v", ctx.Errors)
	}
}

func TestLexerErrorTokenBecomesDiagnostic(t *testing.T) {
	_, ctx := parseSource(t, "val x = 0b102\n")
	if len(ctx.Errors) == 0 {
		t.Fatal("expected malformed literal to produce a diagnostic")
	}
}

func TestPostfixOperators(t *testing.T) {
	prog := parseNoErrors(t, "i++\nj--\n")
	for i, op := range []string{"++", "--"} {
		es := prog.Statements[i].(*ast.ExpressionStatement)
		pf, ok := es.Expression.(*ast.PostfixExpression)
		if !ok || pf.Operator != op {
			t.Errorf("statement %d: expected postfix %s, got %v", i, op, es.Expression)
		}
	}
}
