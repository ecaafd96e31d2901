package parser

import (
	"testing"

	"gridcalc/ast"
	"gridcalc/lexer"
)

func parse(t *testing.T, formula string) (ast.Expression, *Parser) {
	t.Helper()
	p := New(lexer.New(formula))
	expr := p.ParseFormula()
	return expr, p
}

func TestParseArithmeticPrecedence(t *testing.T) {
	expr, p := parse(t, "1+2*3")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	if got, want := ast.Format(expr), "1+2*3"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected top-level BinaryExpr, got %T", expr)
	}
	if _, ok := bin.Y.(*ast.BinaryExpr); !ok {
		t.Errorf("multiplication should bind tighter than addition: want Y to be a BinaryExpr, got %T", bin.Y)
	}
}

func TestParseCellReference(t *testing.T) {
	expr, p := parse(t, "A1")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	ref, ok := expr.(*ast.CellRef)
	if !ok {
		t.Fatalf("expected *ast.CellRef, got %T", expr)
	}
	if ref.HasSheet {
		t.Error("unqualified reference should not have HasSheet set")
	}
	if got := ref.Addr.String(); got != "A1" {
		t.Errorf("Addr.String() = %q, want %q", got, "A1")
	}
}

func TestParseQualifiedReference(t *testing.T) {
	expr, p := parse(t, "Sheet2!B3")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	ref, ok := expr.(*ast.CellRef)
	if !ok {
		t.Fatalf("expected *ast.CellRef, got %T", expr)
	}
	if !ref.HasSheet || ref.Sheet != "Sheet2" {
		t.Errorf("expected sheet qualifier %q, got HasSheet=%v Sheet=%q", "Sheet2", ref.HasSheet, ref.Sheet)
	}
}

func TestParseRangeReference(t *testing.T) {
	expr, p := parse(t, "A1:B2")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	rng, ok := expr.(*ast.RangeRef)
	if !ok {
		t.Fatalf("expected *ast.RangeRef, got %T", expr)
	}
	if rng.Start.Addr.String() != "A1" || rng.End.Addr.String() != "B2" {
		t.Errorf("range corners = %s:%s, want A1:B2", rng.Start.Addr.String(), rng.End.Addr.String())
	}
}

func TestParseFunctionCall(t *testing.T) {
	expr, p := parse(t, "SUM(A1,A2,A3)")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected *ast.CallExpr, got %T", expr)
	}
	if call.Name != "SUM" || len(call.Args) != 3 {
		t.Errorf("call = %q with %d args, want SUM with 3 args", call.Name, len(call.Args))
	}
}

func TestParseAbsoluteReferencePreserved(t *testing.T) {
	expr, p := parse(t, "$A$1+1")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	if got := ast.Format(expr); got != "$A$1+1" {
		t.Errorf("Format() = %q, want %q", got, "$A$1+1")
	}
}

func TestParseUnexpectedTokenRecordsError(t *testing.T) {
	_, p := parse(t, "1+*2")
	if len(p.Errors()) == 0 {
		t.Error("malformed formula should record at least one ParseError")
	}
}

func TestParseUnclosedParenRecordsError(t *testing.T) {
	_, p := parse(t, "(1+2")
	if len(p.Errors()) == 0 {
		t.Error("unclosed parenthesis should record a ParseError")
	}
}

func TestParseErrorLiteral(t *testing.T) {
	expr, p := parse(t, "#REF!")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	lit, ok := expr.(*ast.ErrorLiteral)
	if !ok {
		t.Fatalf("expected *ast.ErrorLiteral, got %T", expr)
	}
	if got := lit.Kind.Spelling(); got != "#REF!" {
		t.Errorf("Kind.Spelling() = %q, want %q", got, "#REF!")
	}
}

func TestParseBoolLiterals(t *testing.T) {
	for _, c := range []struct {
		formula string
		want    bool
	}{
		{"TRUE", true},
		{"FALSE", false},
	} {
		expr, p := parse(t, c.formula)
		if len(p.Errors()) != 0 {
			t.Fatalf("unexpected parse errors for %q: %v", c.formula, p.Errors())
		}
		lit, ok := expr.(*ast.BoolLiteral)
		if !ok {
			t.Fatalf("expected *ast.BoolLiteral for %q, got %T", c.formula, expr)
		}
		if lit.Value != c.want {
			t.Errorf("%q parsed as %v, want %v", c.formula, lit.Value, c.want)
		}
	}
}
