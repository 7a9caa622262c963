package eval

import (
	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/runtime"
	"github.com/pontaoski/brace/types"
)

// value evaluates e and refuses a call that produced nothing.
func (i *Interpreter) value(e ast.Expression, frame *runtime.Frame, want types.Type) (runtime.Value, error) {
	v, err := i.eval(e, frame, want)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fault(errors.NoValue, e.Span(), "%s does not produce a value", ast.ExprString(e))
	}
	return v, nil
}

// eval computes e. want sizes array literals, as in the static pass.
func (i *Interpreter) eval(e ast.Expression, frame *runtime.Frame, want types.Type) (runtime.Value, error) {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return runtime.IntValue(expr.Value), nil
	case *ast.BoolLiteral:
		return runtime.BoolValue(expr.Value), nil
	case *ast.StringLiteral:
		return runtime.StrValue(expr.Value), nil
	case *ast.Var:
		v, err := frame.Lookup(expr.Name)
		if err != nil {
			return nil, locate(err, expr.Pos)
		}
		return v, nil
	case *ast.Unary:
		operand, err := i.value(expr.Operand, frame, nil)
		if err != nil {
			return nil, err
		}
		switch v := operand.(type) {
		case runtime.IntValue:
			if expr.Op == types.MINUS {
				return -v, nil
			}
		case runtime.BoolValue:
			if expr.Op == types.BANG {
				return !v, nil
			}
		}
		return nil, fault(errors.InvalidOperation, expr.Pos, "%s is not defined for %s", ast.OpString(expr.Op), operand.Type())
	case *ast.Binary:
		return i.binary(expr, frame)
	case *ast.Call:
		return i.evalCall(expr, frame)
	case *ast.Field:
		of, err := i.value(expr.Of, frame, nil)
		if err != nil {
			return nil, err
		}
		st, ok := of.(*runtime.StructValue)
		if !ok {
			return nil, fault(errors.InvalidOperation, expr.Pos, "%s is a %s, not a struct", ast.ExprString(expr.Of), of.Type())
		}
		ref, ok := st.Field(expr.Ident.Name)
		if !ok {
			return nil, fault(errors.UndefinedField, expr.Ident.Pos, "%s has no field %s", st.Name, expr.Ident.Name)
		}
		return *ref, nil
	case *ast.Index:
		of, err := i.value(expr.Of, frame, nil)
		if err != nil {
			return nil, err
		}
		arr, ok := of.(*runtime.ArrayValue)
		if !ok {
			return nil, fault(errors.InvalidOperation, expr.Pos, "%s is a %s, not an array", ast.ExprString(expr.Of), of.Type())
		}
		idx, err := i.index(arr, expr.Index, frame)
		if err != nil {
			return nil, err
		}
		return arr.Items[idx], nil
	case *ast.ArrayLiteral:
		return i.arrayLiteral(expr, frame, want)
	case *ast.StructLiteral:
		return i.structLiteral(expr, frame)
	}
	return nil, fault(errors.InvalidOperation, e.Span(), "cannot evaluate %s", ast.ExprString(e))
}

func (i *Interpreter) index(arr *runtime.ArrayValue, e ast.Expression, frame *runtime.Frame) (int, error) {
	v, err := i.value(e, frame, types.Int)
	if err != nil {
		return 0, err
	}
	n, ok := v.(runtime.IntValue)
	if !ok {
		return 0, fault(errors.TypeMismatch, e.Span(), "array index must be int, not %s", v.Type())
	}
	if n < 0 || int64(n) >= int64(len(arr.Items)) {
		return 0, fault(errors.IndexOutOfRange, e.Span(), "index %d out of range for %s", n, arr.Type())
	}
	return int(n), nil
}

func (i *Interpreter) binary(expr *ast.Binary, frame *runtime.Frame) (runtime.Value, error) {
	left, err := i.value(expr.Left, frame, nil)
	if err != nil {
		return nil, err
	}

	if expr.Op == types.AND || expr.Op == types.OR {
		l, ok := left.(runtime.BoolValue)
		if !ok {
			return nil, fault(errors.InvalidOperation, expr.Pos, "%s is not defined for %s", ast.OpString(expr.Op), left.Type())
		}
		if (expr.Op == types.AND && !bool(l)) || (expr.Op == types.OR && bool(l)) {
			return l, nil
		}
		right, err := i.value(expr.Right, frame, types.Bool)
		if err != nil {
			return nil, err
		}
		r, ok := right.(runtime.BoolValue)
		if !ok {
			return nil, fault(errors.InvalidOperation, expr.Pos, "%s is not defined for %s", ast.OpString(expr.Op), right.Type())
		}
		return r, nil
	}

	right, err := i.value(expr.Right, frame, left.Type())
	if err != nil {
		return nil, err
	}
	return i.arith(expr.Op, left, right, expr.Pos)
}

// arith applies a non short-circuiting binary operator. Integers wrap.
func (i *Interpreter) arith(op types.TokenKind, left, right runtime.Value, at types.Span) (runtime.Value, error) {
	if !types.Equal(left.Type(), right.Type()) {
		return nil, fault(errors.TypeMismatch, at, "mismatched operands for %s: %s and %s", ast.OpString(op), left.Type(), right.Type())
	}

	switch op {
	case types.EQ:
		return runtime.BoolValue(runtime.Equal(left, right)), nil
	case types.NEQ:
		return runtime.BoolValue(!runtime.Equal(left, right)), nil
	}

	switch l := left.(type) {
	case runtime.IntValue:
		r := right.(runtime.IntValue)
		switch op {
		case types.PLUS:
			return l + r, nil
		case types.MINUS:
			return l - r, nil
		case types.STAR:
			return l * r, nil
		case types.SLASH, types.PERCENT:
			if r == 0 {
				return nil, fault(errors.DivisionByZero, at, "division by zero")
			}
			if op == types.SLASH {
				return l / r, nil
			}
			return l % r, nil
		case types.LT:
			return runtime.BoolValue(l < r), nil
		case types.LTE:
			return runtime.BoolValue(l <= r), nil
		case types.GT:
			return runtime.BoolValue(l > r), nil
		case types.GTE:
			return runtime.BoolValue(l >= r), nil
		}
	case runtime.StrValue:
		r := right.(runtime.StrValue)
		switch op {
		case types.PLUS:
			return l + r, nil
		case types.LT:
			return runtime.BoolValue(l < r), nil
		case types.LTE:
			return runtime.BoolValue(l <= r), nil
		case types.GT:
			return runtime.BoolValue(l > r), nil
		case types.GTE:
			return runtime.BoolValue(l >= r), nil
		}
	}
	return nil, fault(errors.InvalidOperation, at, "%s is not defined for %s", ast.OpString(op), left.Type())
}

func (i *Interpreter) evalCall(call *ast.Call, frame *runtime.Frame) (runtime.Value, error) {
	name := call.Function.Name

	if b, ok := i.builtins[name]; ok {
		args := make([]runtime.Value, len(call.Arguments))
		for idx, arg := range call.Arguments {
			v, err := i.value(arg, frame, nil)
			if err != nil {
				return nil, err
			}
			args[idx] = v
		}
		return b(i, args, call.Pos)
	}

	fn, ok := i.funcs[name]
	if !ok {
		return nil, fault(errors.UndefinedFunction, call.Function.Pos, "undefined function %s", name)
	}

	args := make([]runtime.Value, len(call.Arguments))
	for idx, arg := range call.Arguments {
		var want types.Type
		if idx < len(fn.Arguments) {
			want = fn.Arguments[idx].Kind
		}
		v, err := i.value(arg, frame, want)
		if err != nil {
			return nil, err
		}
		args[idx] = runtime.Copy(v)
	}
	return i.call(fn, args, call.Pos)
}

// arrayLiteral builds an array. A single element fills the expected length.
func (i *Interpreter) arrayLiteral(lit *ast.ArrayLiteral, frame *runtime.Frame, want types.Type) (runtime.Value, error) {
	expected, _ := want.(*types.Array)

	var elemWant types.Type
	if expected != nil {
		elemWant = expected.Elem
	}
	items := make([]runtime.Value, 0, len(lit.Elements))
	for _, e := range lit.Elements {
		v, err := i.value(e, frame, elemWant)
		if err != nil {
			return nil, err
		}
		items = append(items, runtime.Copy(v))
	}

	if expected == nil {
		if lit.Fill || len(items) == 0 {
			return nil, fault(errors.TypeMismatch, lit.Pos, "cannot tell how long this array should be")
		}
		expected = &types.Array{Elem: items[0].Type(), Len: len(items)}
	}

	if len(items) == 1 && expected.Len != 1 {
		fill := items[0]
		items = make([]runtime.Value, expected.Len)
		for idx := range items {
			items[idx] = fill.Copy()
		}
	}
	if len(items) != expected.Len {
		return nil, fault(errors.TypeMismatch, lit.Pos, "array of length %d given %d values", expected.Len, len(items))
	}
	for idx, item := range items {
		if !types.Equal(expected.Elem, item.Type()) {
			return nil, fault(errors.TypeMismatch, lit.Pos, "array element %d is %s, not %s", idx, item.Type(), expected.Elem)
		}
	}
	return &runtime.ArrayValue{Elem: expected.Elem, Items: items}, nil
}

// structLiteral starts from the zero value and overwrites named fields.
func (i *Interpreter) structLiteral(lit *ast.StructLiteral, frame *runtime.Frame) (runtime.Value, error) {
	decl, ok := i.structs[lit.Ident.Name]
	if !ok {
		return nil, fault(errors.UnknownType, lit.Ident.Pos, "unknown type %s", lit.Ident.Name)
	}
	zero, err := runtime.Zero(&types.Struct{Name: decl.Ident.Name}, i.layout)
	if err != nil {
		return nil, zeroFault(err, lit.Pos, errors.UnknownType)
	}
	st := zero.(*runtime.StructValue)

	for _, field := range lit.Fields {
		kind, _, ok := decl.FieldType(field.Ident.Name)
		if !ok {
			return nil, fault(errors.UndefinedField, field.Ident.Pos, "%s has no field %s", decl.Ident.Name, field.Ident.Name)
		}
		v, err := i.value(field.Value, frame, kind)
		if err != nil {
			return nil, err
		}
		if !types.Equal(kind, v.Type()) {
			return nil, fault(errors.TypeMismatch, field.Value.Span(), "field %s of %s is %s, not %s", field.Ident.Name, decl.Ident.Name, kind, v.Type())
		}
		ref, _ := st.Field(field.Ident.Name)
		*ref = runtime.Copy(v)
	}
	return st, nil
}
