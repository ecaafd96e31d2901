package eval

import (
	"strings"

	"gridcalc/ast"
	"gridcalc/lexer"
	"gridcalc/parser"
	"gridcalc/value"
)

// Version is returned by the VERSION() builtin.
const Version = "gridcalc 1.0"

// BuiltinFunc implements one entry of the built-in function table (spec.md
// §4.E). It receives the unevaluated argument expressions so conditional
// functions can defer evaluating a not-taken branch.
type BuiltinFunc func(e *Evaluator, args []ast.Expression, ctx *Context) value.Value

func registerBuiltins(e *Evaluator) {
	e.funcs["AND"] = fnAnd
	e.funcs["OR"] = fnOr
	e.funcs["NOT"] = fnNot
	e.funcs["XOR"] = fnXor
	e.funcs["EXACT"] = fnExact
	e.funcs["IF"] = fnIf
	e.funcs["IFERROR"] = fnIfError
	e.funcs["CHOOSE"] = fnChoose
	e.funcs["ISBLANK"] = fnIsBlank
	e.funcs["ISERROR"] = fnIsError
	e.funcs["VERSION"] = fnVersion
	e.funcs["INDIRECT"] = fnIndirect
	e.funcs["MIN"] = fnMin
	e.funcs["MAX"] = fnMax
	e.funcs["SUM"] = fnSum
	e.funcs["AVERAGE"] = fnAverage
	e.funcs["HLOOKUP"] = fnHLookup
	e.funcs["VLOOKUP"] = fnVLookup
}

func arityError(name string) value.Value {
	return value.NewError(value.ErrType, name+": wrong number of arguments")
}

func fnAnd(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) < 1 {
		return arityError("AND")
	}
	result := true
	for _, a := range args {
		b := value.ToBool(e.Eval(a, ctx))
		if errv, ok := value.AsError(b); ok {
			return errv
		}
		if !b.(value.BoolValue).Value {
			result = false
		}
	}
	return value.BoolValue{Value: result}
}

func fnOr(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) < 1 {
		return arityError("OR")
	}
	result := false
	for _, a := range args {
		b := value.ToBool(e.Eval(a, ctx))
		if errv, ok := value.AsError(b); ok {
			return errv
		}
		if b.(value.BoolValue).Value {
			result = true
		}
	}
	return value.BoolValue{Value: result}
}

func fnNot(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) != 1 {
		return arityError("NOT")
	}
	b := value.ToBool(e.Eval(args[0], ctx))
	if errv, ok := value.AsError(b); ok {
		return errv
	}
	return value.BoolValue{Value: !b.(value.BoolValue).Value}
}

func fnXor(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) < 1 {
		return arityError("XOR")
	}
	trueCount := 0
	for _, a := range args {
		b := value.ToBool(e.Eval(a, ctx))
		if errv, ok := value.AsError(b); ok {
			return errv
		}
		if b.(value.BoolValue).Value {
			trueCount++
		}
	}
	return value.BoolValue{Value: trueCount%2 == 1}
}

func fnExact(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) != 2 {
		return arityError("EXACT")
	}
	a := value.ToStringValue(e.Eval(args[0], ctx))
	if errv, ok := value.AsError(a); ok {
		return errv
	}
	b := value.ToStringValue(e.Eval(args[1], ctx))
	if errv, ok := value.AsError(b); ok {
		return errv
	}
	return value.BoolValue{Value: a.(value.StringValue).Value == b.(value.StringValue).Value}
}

func fnIf(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) != 2 && len(args) != 3 {
		return arityError("IF")
	}
	c := value.ToBool(e.Eval(args[0], ctx))
	if errv, ok := value.AsError(c); ok {
		return errv
	}
	if c.(value.BoolValue).Value {
		return e.Eval(args[1], ctx)
	}
	if len(args) == 3 {
		return e.Eval(args[2], ctx)
	}
	return value.BoolValue{Value: false}
}

func fnIfError(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) != 1 && len(args) != 2 {
		return arityError("IFERROR")
	}
	v := e.Eval(args[0], ctx)
	if _, ok := value.AsError(v); !ok {
		return v
	}
	if len(args) == 2 {
		return e.Eval(args[1], ctx)
	}
	return value.StringValue{Value: ""}
}

func fnChoose(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) < 2 {
		return arityError("CHOOSE")
	}
	idx := value.ToNumber(e.Eval(args[0], ctx))
	if errv, ok := value.AsError(idx); ok {
		return errv
	}
	i, exact := idx.(value.NumberValue).Int64()
	if !exact || i < 1 || int(i) > len(args)-1 {
		return value.NewError(value.ErrType, "CHOOSE: index out of range")
	}
	return e.Eval(args[i], ctx)
}

func fnIsBlank(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) != 1 {
		return arityError("ISBLANK")
	}
	v := e.Eval(args[0], ctx)
	if errv, ok := value.AsError(v); ok {
		return errv
	}
	_, isEmpty := v.(value.EmptyValue)
	return value.BoolValue{Value: isEmpty}
}

func fnIsError(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) != 1 {
		return arityError("ISERROR")
	}
	v := e.Eval(args[0], ctx)
	_, isErr := value.AsError(v)
	return value.BoolValue{Value: isErr}
}

func fnVersion(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) != 0 {
		return arityError("VERSION")
	}
	return value.StringValue{Value: Version}
}

// fnIndirect implements INDIRECT(s): parse s as an A1 reference relative
// to the evaluating cell's sheet, and add the dynamic edge this creates
// to the graph so it participates in cycle detection even though it never
// appears in the AST (spec.md §9's open question).
func fnIndirect(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) != 1 {
		return arityError("INDIRECT")
	}
	s := value.ToStringValue(e.Eval(args[0], ctx))
	if errv, ok := value.AsError(s); ok {
		return errv
	}
	text := strings.TrimSpace(s.(value.StringValue).Value)

	l := lexer.New(text)
	p := parser.New(l)
	expr := p.ParseFormula()
	if len(p.Errors()) > 0 {
		return value.NewError(value.ErrBadReference, "INDIRECT: malformed reference: "+text)
	}
	ref, ok := expr.(*ast.CellRef)
	if !ok {
		return value.NewError(value.ErrBadReference, "INDIRECT: not a single-cell reference: "+text)
	}

	targetSheet := refSheet(ctx, ref.HasSheet, ref.Sheet)
	if !ctx.Workbook.SheetExists(targetSheet) {
		return value.NewError(value.ErrBadReference, "INDIRECT: unknown sheet: "+ref.Sheet)
	}
	if ctx.Workbook.RecordDynamicRef(ctx.SheetLower, ctx.AddrLower, targetSheet, ref.Addr.Normalized()) {
		return value.NewError(value.ErrCircular, "INDIRECT introduces a circular reference")
	}
	v, ok := ctx.Workbook.CellValue(targetSheet, ref.Addr)
	if !ok {
		return value.NewError(value.ErrBadReference, "INDIRECT: address out of bounds: "+ref.Addr.String())
	}
	return v
}

// numericAggregate flattens every argument (range or scalar) and returns
// the non-Empty, to_number-coerced values it contains, or the first error
// an operand coerces to (with the bool result true).
func numericAggregate(e *Evaluator, args []ast.Expression, ctx *Context) ([]value.NumberValue, value.Value, bool) {
	var nums []value.NumberValue
	for _, a := range args {
		flat, ok := e.EvalFlat(a, ctx)
		if !ok {
			return nil, value.NewError(value.ErrBadReference, "range argument references an unknown sheet"), true
		}
		for _, v := range flat {
			if _, isEmpty := v.(value.EmptyValue); isEmpty {
				continue
			}
			n := value.ToNumber(v)
			if errv, ok := value.AsError(n); ok {
				return nil, errv, true
			}
			nums = append(nums, n.(value.NumberValue))
		}
	}
	return nums, nil, false
}

func fnMin(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) < 1 {
		return arityError("MIN")
	}
	nums, errv, isErr := numericAggregate(e, args, ctx)
	if isErr {
		return errv
	}
	if len(nums) == 0 {
		return value.NewNumberFromInt(0)
	}
	min := nums[0]
	for _, n := range nums[1:] {
		if n.Cmp(min) < 0 {
			min = n
		}
	}
	return min
}

func fnMax(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) < 1 {
		return arityError("MAX")
	}
	nums, errv, isErr := numericAggregate(e, args, ctx)
	if isErr {
		return errv
	}
	if len(nums) == 0 {
		return value.NewNumberFromInt(0)
	}
	max := nums[0]
	for _, n := range nums[1:] {
		if n.Cmp(max) > 0 {
			max = n
		}
	}
	return max
}

func fnSum(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) < 1 {
		return arityError("SUM")
	}
	nums, errv, isErr := numericAggregate(e, args, ctx)
	if isErr {
		return errv
	}
	sum := value.NewNumberFromInt(0)
	for _, n := range nums {
		sum = sum.Add(n)
	}
	return sum
}

func fnAverage(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	if len(args) < 1 {
		return arityError("AVERAGE")
	}
	nums, errv, isErr := numericAggregate(e, args, ctx)
	if isErr {
		return errv
	}
	if len(nums) == 0 {
		return value.NewError(value.ErrDivideByZero, "AVERAGE: no numeric values")
	}
	sum := value.NewNumberFromInt(0)
	for _, n := range nums {
		sum = sum.Add(n)
	}
	return sum.Div(value.NewNumberFromInt(int64(len(nums))))
}

// lookupArgs evaluates the shared (k, R, i) shape of HLOOKUP/VLOOKUP.
func lookupArgs(e *Evaluator, name string, args []ast.Expression, ctx *Context) (key value.Value, grid [][]value.Value, index int64, errv value.Value, ok bool) {
	if len(args) != 3 {
		return nil, nil, 0, arityError(name), false
	}
	key = e.Eval(args[0], ctx)
	if v, isErr := value.AsError(key); isErr {
		return nil, nil, 0, v, false
	}
	rangeNode, isRange := args[1].(*ast.RangeRef)
	if !isRange {
		return nil, nil, 0, value.NewError(value.ErrType, name+": second argument must be a range"), false
	}
	g, gridOK := e.EvalMatrix(rangeNode, ctx)
	if !gridOK {
		return nil, nil, 0, value.NewError(value.ErrBadReference, name+": range references an unknown sheet"), false
	}
	idx := value.ToNumber(e.Eval(args[2], ctx))
	if v, isErr := value.AsError(idx); isErr {
		return nil, nil, 0, v, false
	}
	i, exact := idx.(value.NumberValue).Int64()
	if !exact || i < 1 {
		return nil, nil, 0, value.NewError(value.ErrType, name+": index out of range"), false
	}
	return key, g, i, nil, true
}

func fnHLookup(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	key, grid, idx, errv, ok := lookupArgs(e, "HLOOKUP", args, ctx)
	if !ok {
		return errv
	}
	if len(grid) == 0 || int(idx) > len(grid) {
		return value.NewError(value.ErrType, "HLOOKUP: index out of range")
	}
	header := grid[0]
	for col, cand := range header {
		if value.Equal(cand, key) {
			return grid[idx-1][col]
		}
	}
	return value.NewError(value.ErrBadReference, "HLOOKUP: key not found")
}

func fnVLookup(e *Evaluator, args []ast.Expression, ctx *Context) value.Value {
	key, grid, idx, errv, ok := lookupArgs(e, "VLOOKUP", args, ctx)
	if !ok {
		return errv
	}
	for _, row := range grid {
		if len(row) == 0 {
			continue
		}
		if value.Equal(row[0], key) {
			if int(idx) > len(row) {
				return value.NewError(value.ErrType, "VLOOKUP: index out of range")
			}
			return row[idx-1]
		}
	}
	return value.NewError(value.ErrBadReference, "VLOOKUP: key not found")
}
