package eval

import (
	"strings"

	"gridcalc/address"
	"gridcalc/ast"
	"gridcalc/token"
	"gridcalc/value"
)

// Evaluator walks a parsed formula AST and produces a value.Value, per
// spec.md §4.E, grounded on karl/interpreter's Eval/evalNode dispatch
// (interpreter/eval_core.go) but returning a single CellValue instead of
// karl's (Value, *Signal, error) triple — formulas have no control-flow
// signals, and evaluation errors are themselves first-class CellValues.
type Evaluator struct {
	funcs map[string]BuiltinFunc
}

// New returns an Evaluator with the complete built-in function table of
// spec.md §4.E wired in.
func New() *Evaluator {
	e := &Evaluator{funcs: make(map[string]BuiltinFunc)}
	registerBuiltins(e)
	return e
}

// Eval evaluates node under ctx.
func (e *Evaluator) Eval(node ast.Expression, ctx *Context) value.Value {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		num, ok := value.ParseDecimal(n.Text)
		if !ok {
			return value.NewError(value.ErrType, "malformed numeric literal: "+n.Text)
		}
		return num
	case *ast.StringLiteral:
		return value.StringValue{Value: n.Value}
	case *ast.BoolLiteral:
		return value.BoolValue{Value: n.Value}
	case *ast.ErrorLiteral:
		return value.NewError(n.Kind, "")
	case *ast.UnaryExpr:
		return e.evalUnary(n, ctx)
	case *ast.BinaryExpr:
		return e.evalBinary(n, ctx)
	case *ast.CellRef:
		return e.evalCellRef(n, ctx)
	case *ast.RangeRef:
		// A range used where a scalar is expected (i.e. not consumed by a
		// range-accepting function via EvalMatrix) has no scalar meaning.
		return value.NewError(value.ErrType, "range reference requires a range-accepting function")
	case *ast.CallExpr:
		return e.evalCall(n, ctx)
	default:
		return value.NewError(value.ErrGeneric, "unrecognized expression")
	}
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpr, ctx *Context) value.Value {
	x := value.ToNumber(e.Eval(n.X, ctx))
	if errv, ok := value.AsError(x); ok {
		return errv
	}
	num := x.(value.NumberValue)
	switch n.Op {
	case token.MINUS:
		return num.Neg()
	case token.PLUS:
		return num
	default:
		return value.NewError(value.ErrGeneric, "unknown unary operator "+string(n.Op))
	}
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpr, ctx *Context) value.Value {
	switch n.Op {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH:
		return e.evalArithmetic(n, ctx)
	case token.AMP:
		return e.evalConcat(n, ctx)
	case token.EQ, token.EQEQ, token.NOTEQ, token.BANGEQ, token.LT, token.GT, token.LE, token.GE:
		return e.evalComparison(n, ctx)
	default:
		return value.NewError(value.ErrGeneric, "unknown binary operator "+string(n.Op))
	}
}

// evalArithmetic implements spec.md §4.E's arithmetic rules: to_number on
// both operands, leftmost error wins, DivideByZero for any "/ 0" (finite
// numerator or not, including 0/0).
func (e *Evaluator) evalArithmetic(n *ast.BinaryExpr, ctx *Context) value.Value {
	x := value.ToNumber(e.Eval(n.X, ctx))
	if errv, ok := value.AsError(x); ok {
		return errv
	}
	y := value.ToNumber(e.Eval(n.Y, ctx))
	if errv, ok := value.AsError(y); ok {
		return errv
	}
	xn, yn := x.(value.NumberValue), y.(value.NumberValue)
	switch n.Op {
	case token.PLUS:
		return xn.Add(yn)
	case token.MINUS:
		return xn.Sub(yn)
	case token.ASTERISK:
		return xn.Mul(yn)
	case token.SLASH:
		if yn.IsZero() {
			return value.NewError(value.ErrDivideByZero, "division by zero")
		}
		return xn.Div(yn)
	default:
		return value.NewError(value.ErrGeneric, "unknown arithmetic operator "+string(n.Op))
	}
}

func (e *Evaluator) evalConcat(n *ast.BinaryExpr, ctx *Context) value.Value {
	x := value.ToStringValue(e.Eval(n.X, ctx))
	if errv, ok := value.AsError(x); ok {
		return errv
	}
	y := value.ToStringValue(e.Eval(n.Y, ctx))
	if errv, ok := value.AsError(y); ok {
		return errv
	}
	return value.StringValue{Value: x.(value.StringValue).Value + y.(value.StringValue).Value}
}

func (e *Evaluator) evalComparison(n *ast.BinaryExpr, ctx *Context) value.Value {
	x := e.Eval(n.X, ctx)
	if errv, ok := value.AsError(x); ok {
		return errv
	}
	y := e.Eval(n.Y, ctx)
	if errv, ok := value.AsError(y); ok {
		return errv
	}
	cmp, propagated, isError := value.Compare(x, y)
	if isError {
		return propagated
	}
	switch n.Op {
	case token.EQ, token.EQEQ:
		return value.BoolValue{Value: cmp == 0}
	case token.NOTEQ, token.BANGEQ:
		return value.BoolValue{Value: cmp != 0}
	case token.LT:
		return value.BoolValue{Value: cmp < 0}
	case token.GT:
		return value.BoolValue{Value: cmp > 0}
	case token.LE:
		return value.BoolValue{Value: cmp <= 0}
	case token.GE:
		return value.BoolValue{Value: cmp >= 0}
	default:
		return value.NewError(value.ErrGeneric, "unknown comparison operator "+string(n.Op))
	}
}

// refSheet resolves the sheet a reference binds to: its own qualifier, or
// the evaluating cell's sheet if unqualified.
func refSheet(ctx *Context, hasSheet bool, sheet string) string {
	if hasSheet {
		return strings.ToLower(sheet)
	}
	return ctx.SheetLower
}

func (e *Evaluator) evalCellRef(n *ast.CellRef, ctx *Context) value.Value {
	sheetLower := refSheet(ctx, n.HasSheet, n.Sheet)
	if !ctx.Workbook.SheetExists(sheetLower) {
		return value.NewError(value.ErrBadReference, "unknown sheet: "+n.Sheet)
	}
	v, ok := ctx.Workbook.CellValue(sheetLower, n.Addr)
	if !ok {
		return value.NewError(value.ErrBadReference, "address out of bounds: "+n.Addr.String())
	}
	return v
}

// EvalMatrix evaluates node as a range-accepting function argument: a
// *ast.RangeRef becomes the rectangular grid of cell values it spans; any
// other expression becomes a 1x1 grid holding its scalar value (spec.md
// §4.E — "only range-accepting functions consume" range matrices, and a
// bare scalar argument is equally acceptable wherever a range is, per the
// function contracts of MIN/MAX/SUM/AVERAGE/HLOOKUP/VLOOKUP).
func (e *Evaluator) EvalMatrix(node ast.Expression, ctx *Context) ([][]value.Value, bool) {
	r, isRange := node.(*ast.RangeRef)
	if !isRange {
		return [][]value.Value{{e.Eval(node, ctx)}}, true
	}
	sheetLower := refSheet(ctx, r.Start.HasSheet, r.Start.Sheet)
	if !ctx.Workbook.SheetExists(sheetLower) {
		return nil, false
	}
	grid, ok := ctx.Workbook.RangeValues(sheetLower, address.CellRange{Start: r.Start.Addr, End: r.End.Addr})
	if !ok {
		return nil, false
	}
	return grid, true
}

// EvalFlat is EvalMatrix flattened row-major, the shape MIN/MAX/SUM/
// AVERAGE consume.
func (e *Evaluator) EvalFlat(node ast.Expression, ctx *Context) ([]value.Value, bool) {
	grid, ok := e.EvalMatrix(node, ctx)
	if !ok {
		return nil, false
	}
	var out []value.Value
	for _, row := range grid {
		out = append(out, row...)
	}
	return out, true
}

func (e *Evaluator) evalCall(n *ast.CallExpr, ctx *Context) value.Value {
	fn, ok := e.funcs[strings.ToUpper(n.Name)]
	if !ok {
		return value.NewError(value.ErrBadName, "unknown function: "+n.Name)
	}
	return fn(e, n.Args, ctx)
}
