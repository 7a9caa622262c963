// Package eval runs analysed programs by walking their syntax tree.
package eval

import (
	"context"
	"io"
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/runtime"
	"github.com/pontaoski/brace/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/brace", "eval")

const DefaultMaxCallDepth = 10000

type Interpreter struct {
	Out          io.Writer
	MaxCallDepth int

	ctx      context.Context
	funcs    map[string]*ast.Func
	structs  map[string]*ast.StructDecl
	builtins map[string]builtin
	stack    *arraystack.Stack
}

// activation is one entry on the call stack.
type activation struct {
	fn    *ast.Func
	frame *runtime.Frame
	at    types.Span
}

// Outcome is what a finished run produced.
type Outcome struct {
	// Value is the entry function's result, nil if it returned nothing.
	Value runtime.Value
}

func New(out io.Writer) *Interpreter {
	if out == nil {
		out = os.Stdout
	}
	return &Interpreter{
		Out:          out,
		MaxCallDepth: DefaultMaxCallDepth,
	}
}

// Execute runs entry with no arguments. Faults come back as *errors.Fault
// with phase Runtime.
func (i *Interpreter) Execute(ctx context.Context, prog *ast.Program, entry string) (Outcome, error) {
	i.ctx = ctx
	i.funcs = map[string]*ast.Func{}
	i.structs = map[string]*ast.StructDecl{}
	i.builtins = addBuiltins()
	i.stack = arraystack.New()
	if i.MaxCallDepth <= 0 {
		i.MaxCallDepth = DefaultMaxCallDepth
	}

	for _, fn := range prog.Funcs() {
		i.funcs[fn.Ident.Name] = fn
	}
	for _, st := range prog.Structs() {
		i.structs[st.Ident.Name] = st
	}

	fn, ok := i.funcs[entry]
	if !ok {
		return Outcome{}, errors.New(errors.Runtime, errors.UndefinedFunction, nil, "entry function %s is not defined", entry)
	}

	plog.Debugf("executing %s", entry)
	val, err := i.call(fn, nil, fn.Ident.Pos)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Value: val}, nil
}

// Depth is the number of active function calls.
func (i *Interpreter) Depth() int {
	if i.stack == nil {
		return 0
	}
	return i.stack.Size()
}

func (i *Interpreter) layout(name string) ([]runtime.FieldLayout, bool) {
	st, ok := i.structs[name]
	if !ok {
		return nil, false
	}
	fields := make([]runtime.FieldLayout, len(st.Fields))
	for idx, field := range st.Fields {
		fields[idx] = runtime.FieldLayout{Name: field.Ident.Name, Kind: field.Kind}
	}
	return fields, true
}

func (i *Interpreter) cancelled(at types.Span) error {
	if i.ctx == nil {
		return nil
	}
	if err := i.ctx.Err(); err != nil {
		return fault(errors.Cancelled, at, "evaluation stopped: %s", err)
	}
	return nil
}

func fault(kind errors.Kind, at types.Span, format string, args ...interface{}) *errors.Fault {
	return errors.New(errors.Runtime, kind, &at.From, format, args...)
}

// locate pins a position on faults raised where none was known.
func locate(err error, at types.Span) error {
	if f, ok := err.(*errors.Fault); ok && f.Position == nil {
		pos := at.From
		f.Position = &pos
	}
	return err
}

// call runs fn with already evaluated arguments. Missing trailing
// arguments take their defaults, evaluated in the callee's frame.
func (i *Interpreter) call(fn *ast.Func, args []runtime.Value, at types.Span) (runtime.Value, error) {
	if i.stack.Size() >= i.MaxCallDepth {
		return nil, fault(errors.StackOverflow, at, "call depth exceeded %d calling %s", i.MaxCallDepth, fn.Ident.Name)
	}
	if err := i.cancelled(at); err != nil {
		return nil, err
	}
	if len(args) > len(fn.Arguments) {
		return nil, fault(errors.ArityMismatch, at, "%s takes at most %d arguments, got %d", fn.Ident.Name, len(fn.Arguments), len(args))
	}

	frame := runtime.NewFrame(nil)
	defer frame.Exit()
	i.stack.Push(&activation{fn: fn, frame: frame, at: at})
	defer i.stack.Pop()
	plog.Tracef("call %s (depth %d)", fn.Ident.Name, i.stack.Size())

	for idx, param := range fn.Arguments {
		var val runtime.Value
		switch {
		case idx < len(args):
			val = args[idx]
		case param.Default != nil:
			def, err := i.value(param.Default, frame, param.Kind)
			if err != nil {
				return nil, err
			}
			val = runtime.Copy(def)
		default:
			return nil, fault(errors.ArityMismatch, at, "missing argument %s in call to %s", param.Ident.Name, fn.Ident.Name)
		}
		if err := frame.Bind(param.Ident.Name, param.Kind, val); err != nil {
			return nil, locate(err, at)
		}
	}

	out, err := i.execBlock(fn.Body, frame)
	if err != nil {
		return nil, err
	}

	switch out.flow {
	case returning:
		if fn.Returns == nil || out.value == nil {
			return out.value, nil
		}
		if !types.Equal(fn.Returns, out.value.Type()) {
			return nil, fault(errors.TypeMismatch, out.at, "%s returns %s, not %s", fn.Ident.Name, fn.Returns, out.value.Type())
		}
		return out.value, nil
	case breaking, continuing:
		return nil, fault(errors.MisplacedLoopControl, out.at, "break or continue outside a loop in %s", fn.Ident.Name)
	}

	if fn.Returns != nil {
		return nil, fault(errors.MissingReturn, types.SingleCharSpan(fn.Body.Pos.To), "%s reached its end without returning a %s", fn.Ident.Name, fn.Returns)
	}
	return nil, nil
}

func (i *Interpreter) current() *activation {
	top, ok := i.stack.Peek()
	if !ok {
		return nil
	}
	return top.(*activation)
}
