// Package analyzer validates a parsed program before it runs.
//
// Only faults that can be found without executing anything are reported
// here. Where a type cannot be known statically (a name that is not visible
// in the current block, a field a struct does not declare, the result of a
// function without a declared return type) the check is left to the
// evaluator.
package analyzer

import (
	"github.com/coreos/pkg/capnslog"
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/brace", "analyzer")

// Builtins are the functions every program can call without declaring.
var Builtins = map[string]bool{
	"print": true,
	"len":   true,
}

type ctx struct {
	names   []map[string]types.Type
	structs *linkedhashmap.Map
	funcs   *linkedhashmap.Map

	fn     *ast.Func
	loops  int
	faults errors.Faults
}

func (c *ctx) pushScope() {
	c.names = append(c.names, make(map[string]types.Type))
}

func (c *ctx) popScope() {
	c.names = c.names[:len(c.names)-1]
}

func (c *ctx) top() map[string]types.Type {
	return c.names[len(c.names)-1]
}

// lookup returns nil when the name is not visible; that is not an error
// at this stage.
func (c *ctx) lookup(name string) types.Type {
	for i := len(c.names) - 1; i >= 0; i-- {
		if val, ok := c.names[i][name]; ok {
			return val
		}
	}
	return nil
}

func (c *ctx) bind(id ast.Identifier, t types.Type) {
	if _, ok := c.top()[id.Name]; ok {
		c.fault(errors.DuplicateBinding, id.Pos, "%s is already declared in this block", id.Name)
		return
	}
	c.top()[id.Name] = t
}

func (c *ctx) fault(kind errors.Kind, at types.Span, format string, args ...interface{}) {
	c.faults = append(c.faults, errors.New(errors.Static, kind, &at.From, format, args...))
}

func (c *ctx) structDecl(name string) (*ast.StructDecl, bool) {
	v, ok := c.structs.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*ast.StructDecl), true
}

func (c *ctx) funcDecl(name string) (*ast.Func, bool) {
	v, ok := c.funcs.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*ast.Func), true
}

// Analyze checks prog and returns it unchanged, or an errors.Faults holding
// every static fault found.
func Analyze(prog *ast.Program) (*ast.Program, error) {
	c := &ctx{
		structs: linkedhashmap.New(),
		funcs:   linkedhashmap.New(),
	}

	c.register(prog)
	for _, v := range c.structs.Values() {
		c.checkStruct(v.(*ast.StructDecl))
	}
	for _, v := range c.funcs.Values() {
		c.checkFunc(v.(*ast.Func))
	}

	plog.Debugf("analyzed %d structs and %d functions: %d faults", c.structs.Size(), c.funcs.Size(), len(c.faults))
	if err := c.faults.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

func (c *ctx) register(prog *ast.Program) {
	for _, tl := range prog.Toplevels {
		switch decl := tl.(type) {
		case *ast.StructDecl:
			if _, ok := c.structs.Get(decl.Ident.Name); ok {
				c.fault(errors.DuplicateDeclaration, decl.Ident.Pos, "struct %s is declared more than once", decl.Ident.Name)
				continue
			}
			if _, ok := types.Builtins[decl.Ident.Name]; ok {
				c.fault(errors.DuplicateDeclaration, decl.Ident.Pos, "struct %s shadows a builtin type", decl.Ident.Name)
				continue
			}
			c.structs.Put(decl.Ident.Name, decl)
		case *ast.Func:
			if _, ok := c.funcs.Get(decl.Ident.Name); ok {
				c.fault(errors.DuplicateDeclaration, decl.Ident.Pos, "function %s is declared more than once", decl.Ident.Name)
				continue
			}
			if Builtins[decl.Ident.Name] {
				c.fault(errors.DuplicateDeclaration, decl.Ident.Pos, "function %s shadows a builtin", decl.Ident.Name)
				continue
			}
			c.funcs.Put(decl.Ident.Name, decl)
		}
	}
}

// checkType reports struct names that were never declared.
func (c *ctx) checkType(t types.Type, at types.Span) bool {
	switch kind := t.(type) {
	case *types.Array:
		return c.checkType(kind.Elem, at)
	case *types.Struct:
		if _, ok := c.structDecl(kind.Name); !ok {
			c.fault(errors.UnknownType, at, "unknown type %s", kind.Name)
			return false
		}
	}
	return true
}

func (c *ctx) checkStruct(decl *ast.StructDecl) {
	for _, field := range decl.Fields {
		c.checkType(field.Kind, field.Ident.Pos)
	}
	if c.containsStruct(decl.Ident.Name, decl, map[string]bool{}) {
		c.fault(errors.RecursiveStruct, decl.Ident.Pos, "struct %s contains itself", decl.Ident.Name)
	}
}

func (c *ctx) containsStruct(target string, decl *ast.StructDecl, seen map[string]bool) bool {
	if seen[decl.Ident.Name] {
		return false
	}
	seen[decl.Ident.Name] = true

	for _, field := range decl.Fields {
		kind := field.Kind
		for {
			arr, ok := kind.(*types.Array)
			if !ok {
				break
			}
			kind = arr.Elem
		}
		st, ok := kind.(*types.Struct)
		if !ok {
			continue
		}
		if st.Name == target {
			return true
		}
		if inner, ok := c.structDecl(st.Name); ok && c.containsStruct(target, inner, seen) {
			return true
		}
	}
	return false
}

func (c *ctx) checkFunc(fn *ast.Func) {
	c.fn = fn
	c.loops = 0
	c.names = nil
	c.pushScope()
	defer c.popScope()

	if _, isArray := fn.Returns.(*types.Array); isArray {
		c.fault(errors.ArrayReturnType, fn.Ident.Pos, "function %s cannot return array type %s", fn.Ident.Name, fn.Returns)
	} else if fn.Returns != nil {
		c.checkType(fn.Returns, fn.Ident.Pos)
	}

	seenDefault := false
	for _, arg := range fn.Arguments {
		known := c.checkType(arg.Kind, arg.Ident.Pos)
		if arg.Default != nil {
			seenDefault = true
			// defaults see the parameters declared before them
			got := c.exprType(arg.Default, arg.Kind)
			if known && !types.Compatible(arg.Kind, got) {
				c.fault(errors.TypeMismatch, arg.Default.Span(), "default for %s has type %s, not %s", arg.Ident.Name, types.Name(got), arg.Kind)
			}
		} else if seenDefault {
			c.fault(errors.DefaultOrder, arg.Ident.Pos, "parameter %s without a default follows a parameter with one", arg.Ident.Name)
		}
		if known {
			c.bind(arg.Ident, arg.Kind)
		} else {
			c.bind(arg.Ident, nil)
		}
	}

	c.checkBlock(fn.Body)
}
