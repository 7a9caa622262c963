package analyzer

import (
	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

func (c *ctx) checkBlock(block *ast.Block) {
	c.pushScope()
	for _, stmt := range block.Statements {
		c.checkStatement(stmt)
	}
	c.popScope()
}

func (c *ctx) checkStatement(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.Declaration:
		declared := stmt.Kind
		if !c.checkType(declared, stmt.To.Pos) {
			declared = nil
		}
		if stmt.Value != nil {
			got := c.exprType(stmt.Value, declared)
			if !types.Compatible(declared, got) {
				c.fault(errors.TypeMismatch, stmt.Value.Span(), "cannot initialize %s (%s) with a %s value", stmt.To.Name, declared, got)
			}
		}
		c.bind(stmt.To, declared)
	case *ast.Assignment:
		target := c.lvalueType(stmt.To)
		got := c.exprType(stmt.Value, target)
		switch stmt.Op {
		case types.EQUALS:
			if !types.Compatible(target, got) {
				c.fault(errors.TypeMismatch, stmt.Value.Span(), "cannot assign a %s value to %s (%s)", got, ast.ExprString(stmt.To), target)
			}
		case types.PLUSEQUALS, types.MINUSEQUALS:
			c.compound(stmt, target, got)
		}
	case *ast.IncDec:
		target := c.lvalueType(stmt.To)
		if target != nil && !types.Equal(target, types.Int) {
			c.fault(errors.InvalidOperation, stmt.Pos, "%s needs an int operand, %s is %s", stmt.Op, ast.ExprString(stmt.To), target)
		}
	case *ast.Block:
		c.checkBlock(stmt)
	case *ast.If:
		c.checkCondition(stmt.Condition)
		c.checkBlock(stmt.Then)
		if stmt.Else != nil {
			c.checkStatement(stmt.Else)
		}
	case *ast.For:
		c.pushScope()
		if stmt.Init != nil {
			c.checkStatement(stmt.Init)
		}
		if stmt.Condition != nil {
			c.checkCondition(stmt.Condition)
		}
		if stmt.Post != nil {
			c.checkStatement(stmt.Post)
		}
		c.loops++
		c.checkBlock(stmt.Body)
		c.loops--
		c.popScope()
	case *ast.While:
		c.checkCondition(stmt.Condition)
		c.loops++
		c.checkBlock(stmt.Body)
		c.loops--
	case *ast.Break:
		if c.loops == 0 {
			c.fault(errors.MisplacedLoopControl, stmt.Pos, "break is only allowed inside for or while")
		}
	case *ast.Continue:
		if c.loops == 0 {
			c.fault(errors.MisplacedLoopControl, stmt.Pos, "continue is only allowed inside for or while")
		}
	case *ast.Return:
		c.checkReturn(stmt)
	case *ast.ExpressionStatement:
		if call, ok := stmt.Expression.(*ast.Call); ok {
			c.callType(call)
			return
		}
		c.exprType(stmt.Expression, nil)
	}
}

func (c *ctx) compound(stmt *ast.Assignment, target, got types.Type) {
	if target == nil {
		return
	}
	switch {
	case types.Equal(target, types.Int):
	case types.Equal(target, types.Str) && stmt.Op == types.PLUSEQUALS:
	default:
		c.fault(errors.InvalidOperation, stmt.Pos, "%s is not defined for %s", stmt.Op, target)
		return
	}
	if !types.Compatible(target, got) {
		c.fault(errors.TypeMismatch, stmt.Value.Span(), "cannot apply %s with a %s value to %s (%s)", stmt.Op, got, ast.ExprString(stmt.To), target)
	}
}

func (c *ctx) checkCondition(cond ast.Expression) {
	got := c.exprType(cond, types.Bool)
	if !types.Compatible(types.Bool, got) {
		c.fault(errors.TypeMismatch, cond.Span(), "condition must be bool, not %s", got)
	}
}

func (c *ctx) checkReturn(stmt *ast.Return) {
	want := c.fn.Returns
	if stmt.Value == nil {
		if want != nil {
			c.fault(errors.TypeMismatch, stmt.Pos, "function %s must return a %s value", c.fn.Ident.Name, want)
		}
		return
	}

	// functions without a declared result may still hand back a value
	got := c.exprType(stmt.Value, want)
	if !types.Compatible(want, got) {
		c.fault(errors.TypeMismatch, stmt.Value.Span(), "function %s returns %s, not %s", c.fn.Ident.Name, want, got)
	}
}

// lvalueType is the static type of an assignment target, or nil. Field
// and index chains must end at a variable.
func (c *ctx) lvalueType(e ast.Expression) types.Type {
	root := e
	for {
		switch target := root.(type) {
		case *ast.Field:
			root = target.Of
			continue
		case *ast.Index:
			root = target.Of
			continue
		}
		break
	}
	if _, ok := root.(*ast.Var); !ok {
		c.fault(errors.NotAssignable, e.Span(), "cannot assign to %s", ast.ExprString(e))
	}
	return c.exprType(e, nil)
}
