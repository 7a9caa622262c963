package analyzer

import (
	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

// exprType returns the static type of e, or nil when it cannot be known
// before running. want is the type the context expects; it is only used to
// size array literals.
func (c *ctx) exprType(e ast.Expression, want types.Type) types.Type {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return types.Int
	case *ast.BoolLiteral:
		return types.Bool
	case *ast.StringLiteral:
		return types.Str
	case *ast.Var:
		return c.lookup(expr.Name)
	case *ast.Binary:
		return c.binaryType(expr)
	case *ast.Unary:
		got := c.exprType(expr.Operand, nil)
		result := types.Int
		if expr.Op == types.BANG {
			result = types.Bool
		}
		if got != nil && !types.Equal(got, result) {
			c.fault(errors.InvalidOperation, expr.Pos, "%s is not defined for %s", ast.OpString(expr.Op), got)
		}
		return result
	case *ast.Call:
		got := c.callType(expr)
		if got == nil && c.returnsNothing(expr.Function.Name) {
			c.fault(errors.NoValue, expr.Pos, "%s does not produce a value", ast.ExprString(expr))
		}
		return got
	case *ast.Field:
		of := c.exprType(expr.Of, nil)
		if of == nil {
			return nil
		}
		st, ok := of.(*types.Struct)
		if !ok {
			c.fault(errors.InvalidOperation, expr.Pos, "%s is a %s, not a struct", ast.ExprString(expr.Of), of)
			return nil
		}
		decl, ok := c.structDecl(st.Name)
		if !ok {
			return nil
		}
		kind, _, _ := decl.FieldType(expr.Ident.Name)
		return kind
	case *ast.Index:
		of := c.exprType(expr.Of, nil)
		idx := c.exprType(expr.Index, types.Int)
		if idx != nil && !types.Equal(idx, types.Int) {
			c.fault(errors.TypeMismatch, expr.Index.Span(), "array index must be int, not %s", idx)
		}
		if of == nil {
			return nil
		}
		arr, ok := of.(*types.Array)
		if !ok {
			c.fault(errors.InvalidOperation, expr.Pos, "%s is a %s, not an array", ast.ExprString(expr.Of), of)
			return nil
		}
		return arr.Elem
	case *ast.ArrayLiteral:
		return c.arrayType(expr, want)
	case *ast.StructLiteral:
		return c.structLiteralType(expr)
	}
	return nil
}

func (c *ctx) binaryType(expr *ast.Binary) types.Type {
	left := c.exprType(expr.Left, nil)
	right := c.exprType(expr.Right, left)

	mismatch := func() {
		c.fault(errors.TypeMismatch, expr.Pos, "mismatched operands for %s: %s and %s", ast.OpString(expr.Op), left, right)
	}
	// only reports operands outside allowed; false means the result type
	// should not be trusted
	only := func(allowed ...types.Type) bool {
		for _, side := range []types.Type{left, right} {
			if side == nil {
				continue
			}
			ok := false
			for _, t := range allowed {
				ok = ok || types.Equal(side, t)
			}
			if !ok {
				c.fault(errors.InvalidOperation, expr.Pos, "%s is not defined for %s", ast.OpString(expr.Op), side)
				return false
			}
		}
		if !types.Compatible(left, right) {
			mismatch()
			return false
		}
		return true
	}

	switch expr.Op {
	case types.AND, types.OR:
		only(types.Bool)
		return types.Bool
	case types.EQ, types.NEQ:
		if !types.Compatible(left, right) {
			mismatch()
		}
		return types.Bool
	case types.LT, types.LTE, types.GT, types.GTE:
		only(types.Int, types.Str)
		return types.Bool
	case types.PLUS:
		if !only(types.Int, types.Str) {
			return nil
		}
		return firstKnown(left, right)
	default:
		only(types.Int)
		return types.Int
	}
}

// returnsNothing reports whether calling name is known to produce no value.
func (c *ctx) returnsNothing(name string) bool {
	if name == "print" {
		return true
	}
	fn, ok := c.funcDecl(name)
	return ok && fn.Returns == nil
}

func (c *ctx) callType(call *ast.Call) types.Type {
	name := call.Function.Name

	if Builtins[name] {
		if len(call.Arguments) != 1 {
			c.fault(errors.ArityMismatch, call.Pos, "%s takes exactly one argument, got %d", name, len(call.Arguments))
		}
		var arg types.Type
		for _, a := range call.Arguments {
			arg = c.exprType(a, nil)
		}
		if name == "len" {
			switch arg.(type) {
			case nil, *types.Array:
			default:
				if !types.Equal(arg, types.Str) {
					c.fault(errors.InvalidOperation, call.Pos, "len is not defined for %s", arg)
				}
			}
			return types.Int
		}
		return nil
	}

	fn, ok := c.funcDecl(name)
	if !ok {
		c.fault(errors.UndefinedFunction, call.Function.Pos, "undefined function %s", name)
		for _, arg := range call.Arguments {
			c.exprType(arg, nil)
		}
		return nil
	}

	if len(call.Arguments) > len(fn.Arguments) {
		c.fault(errors.ArityMismatch, call.Pos, "%s takes at most %d arguments, got %d", name, len(fn.Arguments), len(call.Arguments))
	}
	for idx, param := range fn.Arguments {
		if idx >= len(call.Arguments) {
			if param.Default == nil {
				c.fault(errors.ArityMismatch, call.Pos, "missing argument %s in call to %s", param.Ident.Name, name)
			}
			continue
		}
		arg := call.Arguments[idx]
		got := c.exprType(arg, param.Kind)
		if !types.Compatible(param.Kind, got) {
			c.fault(errors.TypeMismatch, arg.Span(), "argument %s of %s is %s, not %s", param.Ident.Name, name, param.Kind, got)
		}
	}
	for _, extra := range call.Arguments[minInt(len(call.Arguments), len(fn.Arguments)):] {
		c.exprType(extra, nil)
	}

	return fn.Returns
}

func (c *ctx) arrayType(lit *ast.ArrayLiteral, want types.Type) types.Type {
	expected, _ := want.(*types.Array)

	var elemWant types.Type
	if expected != nil {
		elemWant = expected.Elem
	}
	var elem types.Type
	for _, e := range lit.Elements {
		got := c.exprType(e, elemWant)
		if elem == nil {
			elem = got
		}
		if !types.Compatible(elem, got) || !types.Compatible(elemWant, got) {
			c.fault(errors.TypeMismatch, e.Span(), "array element is %s, not %s", got, firstKnown(elemWant, elem))
		}
	}
	if elem == nil {
		elem = elemWant
	}

	fill := lit.Fill || len(lit.Elements) == 1
	if expected == nil {
		if lit.Fill {
			c.fault(errors.ArrayArity, lit.Pos, "cannot tell how long a filled array should be here")
			return nil
		}
		if len(lit.Elements) == 0 {
			c.fault(errors.ArrayArity, lit.Pos, "empty array literal")
			return nil
		}
		return &types.Array{Elem: elem, Len: len(lit.Elements)}
	}

	if len(lit.Elements) != expected.Len && !(fill && len(lit.Elements) == 1) {
		c.fault(errors.ArrayArity, lit.Pos, "array of length %d needs %d values or a single fill value, got %d", expected.Len, expected.Len, len(lit.Elements))
	}
	return &types.Array{Elem: elem, Len: expected.Len}
}

func (c *ctx) structLiteralType(lit *ast.StructLiteral) types.Type {
	decl, ok := c.structDecl(lit.Ident.Name)
	if !ok {
		c.fault(errors.UnknownType, lit.Ident.Pos, "unknown type %s", lit.Ident.Name)
		for _, field := range lit.Fields {
			c.exprType(field.Value, nil)
		}
		return nil
	}

	for _, field := range lit.Fields {
		// fields the struct does not have are reported when the literal runs
		kind, _, _ := decl.FieldType(field.Ident.Name)
		got := c.exprType(field.Value, kind)
		if !types.Compatible(kind, got) {
			c.fault(errors.TypeMismatch, field.Value.Span(), "field %s of %s is %s, not %s", field.Ident.Name, decl.Ident.Name, kind, got)
		}
	}
	return &types.Struct{Name: decl.Ident.Name}
}

func firstKnown(ts ...types.Type) types.Type {
	for _, t := range ts {
		if t != nil {
			return t
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
