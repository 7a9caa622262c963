package eval

import (
	"fmt"
	"unicode/utf8"

	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/runtime"
	"github.com/pontaoski/brace/types"
)

type builtin func(i *Interpreter, args []runtime.Value, at types.Span) (runtime.Value, error)

func addBuiltins() (ret map[string]builtin) {
	ret = make(map[string]builtin)

	funcs := []func() (string, builtin){
		addPrint,
		addLen,
	}
	for _, fn := range funcs {
		k, v := fn()
		ret[k] = v
	}

	return
}

func oneArgument(name string, args []runtime.Value, at types.Span) error {
	if len(args) != 1 {
		return fault(errors.ArityMismatch, at, "%s takes exactly one argument, got %d", name, len(args))
	}
	return nil
}

func addPrint() (string, builtin) {
	return "print", func(i *Interpreter, args []runtime.Value, at types.Span) (runtime.Value, error) {
		if err := oneArgument("print", args, at); err != nil {
			return nil, err
		}
		fmt.Fprintln(i.Out, args[0].String())
		return nil, nil
	}
}

func addLen() (string, builtin) {
	return "len", func(i *Interpreter, args []runtime.Value, at types.Span) (runtime.Value, error) {
		if err := oneArgument("len", args, at); err != nil {
			return nil, err
		}
		switch v := args[0].(type) {
		case *runtime.ArrayValue:
			return runtime.IntValue(len(v.Items)), nil
		case runtime.StrValue:
			return runtime.IntValue(utf8.RuneCountInString(string(v))), nil
		}
		return nil, fault(errors.InvalidOperation, at, "len is not defined for %s", args[0].Type())
	}
}
