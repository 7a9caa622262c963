package eval

import (
	stderrors "errors"

	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/runtime"
	"github.com/pontaoski/brace/types"
)

type flow int

const (
	normal flow = iota
	breaking
	continuing
	returning
)

// outcome is what every statement hands back: either carry on, or unwind
// to the nearest loop or call.
type outcome struct {
	flow  flow
	value runtime.Value
	at    types.Span
}

func (i *Interpreter) execBlock(block *ast.Block, parent *runtime.Frame) (outcome, error) {
	frame := runtime.NewFrame(parent)
	defer frame.Exit()

	for _, stmt := range block.Statements {
		out, err := i.execStatement(stmt, frame)
		if err != nil || out.flow != normal {
			return out, err
		}
	}
	return outcome{}, nil
}

func (i *Interpreter) execStatement(s ast.Statement, frame *runtime.Frame) (outcome, error) {
	switch stmt := s.(type) {
	case *ast.Declaration:
		var val runtime.Value
		if stmt.Value == nil {
			zero, err := runtime.Zero(stmt.Kind, i.layout)
			if err != nil {
				return outcome{}, zeroFault(err, stmt.Pos, errors.TypeMismatch)
			}
			val = zero
		} else {
			v, err := i.value(stmt.Value, frame, stmt.Kind)
			if err != nil {
				return outcome{}, err
			}
			val = runtime.Copy(v)
		}
		if err := frame.Bind(stmt.To.Name, stmt.Kind, val); err != nil {
			return outcome{}, locate(err, stmt.Pos)
		}
	case *ast.Assignment:
		return outcome{}, i.assign(stmt, frame)
	case *ast.IncDec:
		op := types.PLUSEQUALS
		if stmt.Op == types.DECREMENT {
			op = types.MINUSEQUALS
		}
		return outcome{}, i.assign(&ast.Assignment{
			To:    stmt.To,
			Op:    op,
			Value: &ast.IntLiteral{Value: 1, Pos: stmt.Pos},
			Pos:   stmt.Pos,
		}, frame)
	case *ast.Block:
		return i.execBlock(stmt, frame)
	case *ast.If:
		cond, err := i.condition(stmt.Condition, frame)
		if err != nil {
			return outcome{}, err
		}
		if cond {
			return i.execBlock(stmt.Then, frame)
		}
		if stmt.Else != nil {
			return i.execStatement(stmt.Else, frame)
		}
	case *ast.For:
		return i.execFor(stmt, frame)
	case *ast.While:
		return i.execWhile(stmt, frame)
	case *ast.Break:
		return outcome{flow: breaking, at: stmt.Pos}, nil
	case *ast.Continue:
		return outcome{flow: continuing, at: stmt.Pos}, nil
	case *ast.Return:
		out := outcome{flow: returning, at: stmt.Pos}
		if stmt.Value != nil {
			var want types.Type
			if act := i.current(); act != nil {
				want = act.fn.Returns
			}
			v, err := i.eval(stmt.Value, frame, want)
			if err != nil {
				return outcome{}, err
			}
			out.value = runtime.Copy(v)
		}
		return out, nil
	case *ast.ExpressionStatement:
		_, err := i.eval(stmt.Expression, frame, nil)
		return outcome{}, err
	}
	return outcome{}, nil
}

// zeroFault reports a failed runtime.Zero. Oversized values are an
// ArrayArity fault, anything else is kind.
func zeroFault(err error, at types.Span, kind errors.Kind) *errors.Fault {
	if stderrors.Is(err, runtime.ErrTooLarge) {
		return fault(errors.ArrayArity, at, "%s", err)
	}
	return fault(kind, at, "%s", err)
}

func (i *Interpreter) condition(e ast.Expression, frame *runtime.Frame) (bool, error) {
	v, err := i.value(e, frame, types.Bool)
	if err != nil {
		return false, err
	}
	b, ok := v.(runtime.BoolValue)
	if !ok {
		return false, fault(errors.TypeMismatch, e.Span(), "condition must be bool, not %s", v.Type())
	}
	return bool(b), nil
}

// loopBody runs one iteration and reports whether the loop should stop,
// along with the outcome to hand upwards when it should.
func (i *Interpreter) loopBody(body *ast.Block, frame *runtime.Frame) (bool, outcome, error) {
	if err := i.cancelled(body.Pos); err != nil {
		return true, outcome{}, err
	}
	out, err := i.execBlock(body, frame)
	if err != nil {
		return true, outcome{}, err
	}
	switch out.flow {
	case breaking:
		return true, outcome{}, nil
	case returning:
		return true, out, nil
	}
	return false, outcome{}, nil
}

// execFor gives init its own frame that lives across iterations; the body
// gets a fresh frame every time round.
func (i *Interpreter) execFor(loop *ast.For, parent *runtime.Frame) (outcome, error) {
	frame := runtime.NewFrame(parent)
	defer frame.Exit()

	if loop.Init != nil {
		if _, err := i.execStatement(loop.Init, frame); err != nil {
			return outcome{}, err
		}
	}
	for {
		if loop.Condition != nil {
			ok, err := i.condition(loop.Condition, frame)
			if err != nil || !ok {
				return outcome{}, err
			}
		}
		stop, out, err := i.loopBody(loop.Body, frame)
		if stop || err != nil {
			return out, err
		}
		if loop.Post != nil {
			if _, err := i.execStatement(loop.Post, frame); err != nil {
				return outcome{}, err
			}
		}
	}
}

func (i *Interpreter) execWhile(loop *ast.While, frame *runtime.Frame) (outcome, error) {
	for {
		ok, err := i.condition(loop.Condition, frame)
		if err != nil || !ok {
			return outcome{}, err
		}
		stop, out, err := i.loopBody(loop.Body, frame)
		if stop || err != nil {
			return out, err
		}
	}
}

func (i *Interpreter) assign(stmt *ast.Assignment, frame *runtime.Frame) error {
	slot, kind, err := i.slot(stmt.To, frame)
	if err != nil {
		return err
	}

	val, err := i.value(stmt.Value, frame, kind)
	if err != nil {
		return err
	}
	switch stmt.Op {
	case types.PLUSEQUALS:
		val, err = i.arith(types.PLUS, *slot, val, stmt.Pos)
	case types.MINUSEQUALS:
		val, err = i.arith(types.MINUS, *slot, val, stmt.Pos)
	}
	if err != nil {
		return err
	}

	val = runtime.Copy(val)
	if kind != nil && !types.Equal(kind, val.Type()) {
		return fault(errors.TypeMismatch, stmt.Pos, "cannot assign a %s value to %s (%s)", val.Type(), ast.ExprString(stmt.To), kind)
	}
	*slot = val
	return nil
}

// slot resolves an assignment target to the storage it names.
func (i *Interpreter) slot(e ast.Expression, frame *runtime.Frame) (*runtime.Value, types.Type, error) {
	switch target := e.(type) {
	case *ast.Var:
		ref, kind, err := frame.Reference(target.Name)
		if err != nil {
			return nil, nil, locate(err, target.Pos)
		}
		return ref, kind, nil
	case *ast.Field:
		of, _, err := i.slot(target.Of, frame)
		if err != nil {
			return nil, nil, err
		}
		st, ok := (*of).(*runtime.StructValue)
		if !ok {
			return nil, nil, fault(errors.TypeMismatch, target.Pos, "%s is not a struct", ast.ExprString(target.Of))
		}
		ref, ok := st.Field(target.Ident.Name)
		if !ok {
			return nil, nil, fault(errors.UndefinedField, target.Ident.Pos, "%s has no field %s", st.Name, target.Ident.Name)
		}
		var kind types.Type
		if decl, ok := i.structs[st.Name]; ok {
			kind, _, _ = decl.FieldType(target.Ident.Name)
		}
		return ref, kind, nil
	case *ast.Index:
		of, _, err := i.slot(target.Of, frame)
		if err != nil {
			return nil, nil, err
		}
		arr, ok := (*of).(*runtime.ArrayValue)
		if !ok {
			return nil, nil, fault(errors.TypeMismatch, target.Pos, "%s is not an array", ast.ExprString(target.Of))
		}
		idx, err := i.index(arr, target.Index, frame)
		if err != nil {
			return nil, nil, err
		}
		return &arr.Items[idx], arr.Elem, nil
	}
	return nil, nil, fault(errors.NotAssignable, e.Span(), "cannot assign to %s", ast.ExprString(e))
}
