package symbols

import "testing"

func TestDefineAndResolve(t *testing.T) {
	st := NewSymbolTable()
	if ok := st.Define(&Symbol{Name: "x", Kind: ValueSymbol}); !ok {
		t.Fatal("first definition should succeed")
	}
	sym, ok := st.Resolve("x")
	if !ok || sym.Kind != ValueSymbol || sym.ScopeDepth != 0 {
		t.Fatalf("resolve failed: %+v", sym)
	}
}

func TestDuplicateInSameScope(t *testing.T) {
	st := NewSymbolTable()
	st.Define(&Symbol{Name: "x"})
	if ok := st.Define(&Symbol{Name: "x"}); ok {
		t.Fatal("duplicate definition in same scope should fail")
	}
}

func TestShadowingInInnerScope(t *testing.T) {
	st := NewSymbolTable()
	st.Define(&Symbol{Name: "x", Kind: ValueSymbol})
	st.EnterScope()
	if ok := st.Define(&Symbol{Name: "x", Kind: VariableSymbol}); !ok {
		t.Fatal("shadowing in inner scope should succeed")
	}
	sym, _ := st.Resolve("x")
	if sym.Kind != VariableSymbol || sym.ScopeDepth != 1 {
		t.Fatalf("expected inner symbol, got %+v", sym)
	}
	st.ExitScope()
	sym, _ = st.Resolve("x")
	if sym.Kind != ValueSymbol || sym.ScopeDepth != 0 {
		t.Fatalf("outer symbol should be restored, got %+v", sym)
	}
}

func TestResolveWalksOutward(t *testing.T) {
	st := NewSymbolTable()
	st.Define(&Symbol{Name: "g"})
	st.EnterScope()
	st.EnterScope()
	if _, ok := st.Resolve("g"); !ok {
		t.Fatal("resolve should search enclosing scopes")
	}
	if _, ok := st.ResolveCurrent("g"); ok {
		t.Fatal("ResolveCurrent should only see innermost scope")
	}
}
