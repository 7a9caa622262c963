package parser

import (
	"fmt"

	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

// parseBlock should be called with the parser past the opening brace
func (p *Parser) parseBlock(open types.Token) *ast.Block {
	var statements []ast.Statement

	for !p.l.PeekIs(types.RBRACKET) {
		if p.l.PeekIs(types.EOF) {
			p.l.LexExpecting(types.RBRACKET)
		}
		if p.l.PeekIs(types.EOS) {
			p.l.Lex()
			continue
		}
		statements = append(statements, p.parseStatement())
	}
	p.l.LexExpecting(types.RBRACKET)

	return &ast.Block{
		Statements: statements,
		Pos:        types.Span{From: open.Location.From, To: p.l.pos()},
	}
}

func (p *Parser) parseStatement() ast.Statement {
	tok := p.l.Peek()

	switch tok.Kind {
	case types.LBRACKET:
		p.l.Lex()
		return p.parseBlock(tok)
	case types.IF:
		p.l.Lex()
		return p.parseIf(tok)
	case types.FOR:
		return p.parseFor()
	case types.WHILE:
		p.l.Lex()
		cond := p.parseCondition()
		open := p.l.LexExpecting(types.LBRACKET)
		body := p.parseBlock(open)
		return &ast.While{
			Condition: cond,
			Body:      body,
			Pos:       types.Span{From: tok.Location.From, To: p.l.pos()},
		}
	case types.BREAK:
		p.l.Lex()
		p.l.LexExpecting(types.EOS)
		return &ast.Break{Pos: tok.Location}
	case types.CONTINUE:
		p.l.Lex()
		p.l.LexExpecting(types.EOS)
		return &ast.Continue{Pos: tok.Location}
	case types.RETURN:
		p.l.Lex()
		ret := &ast.Return{}
		if !p.l.PeekIs(types.EOS) {
			ret.Value = p.parseExpression()
		}
		p.l.LexExpecting(types.EOS)
		ret.Pos = types.Span{From: tok.Location.From, To: p.l.pos()}
		return ret
	case types.GOTO:
		p.unsupportedKeyword(tok)
	}

	stmt := p.parseSimple()
	p.l.LexExpecting(types.EOS)
	return stmt
}

// parseIf is called past the if (or elif) keyword.
func (p *Parser) parseIf(start types.Token) *ast.If {
	cond := p.parseCondition()
	open := p.l.LexExpecting(types.LBRACKET)
	stmt := &ast.If{
		Condition: cond,
		Then:      p.parseBlock(open),
	}

	switch {
	case p.l.PeekIs(types.ELIF):
		elif := p.l.Lex()
		stmt.Else = p.parseIf(elif)
	case p.l.PeekIs(types.ELSE):
		p.l.Lex()
		if p.l.PeekIs(types.IF) {
			stmt.Else = p.parseIf(p.l.Lex())
			break
		}
		open := p.l.LexExpecting(types.LBRACKET)
		stmt.Else = p.parseBlock(open)
	}

	stmt.Pos = types.Span{From: start.Location.From, To: p.l.pos()}
	return stmt
}

func (p *Parser) parseFor() *ast.For {
	start := p.l.LexExpecting(types.FOR)
	loop := &ast.For{}

	parens := p.l.PeekIs(types.LPAREN)
	if parens {
		p.l.Lex()
	}

	saved := p.noStructLit
	p.noStructLit = !parens
	if !p.l.PeekIs(types.COMMA, types.EOS) {
		loop.Init = p.parseSimple()
	}
	p.l.LexExpecting(types.COMMA, types.EOS)
	if !p.l.PeekIs(types.COMMA, types.EOS) {
		loop.Condition = p.parseExpression()
	}
	p.l.LexExpecting(types.COMMA, types.EOS)
	if !p.l.PeekIs(types.LBRACKET, types.RPAREN) {
		loop.Post = p.parseSimple()
	}
	p.noStructLit = saved

	if parens {
		p.l.LexExpecting(types.RPAREN)
	}
	open := p.l.LexExpecting(types.LBRACKET)
	loop.Body = p.parseBlock(open)
	loop.Pos = types.Span{From: start.Location.From, To: p.l.pos()}

	return loop
}

func (p *Parser) parseCondition() ast.Expression {
	saved := p.noStructLit
	p.noStructLit = true
	defer func() { p.noStructLit = saved }()

	return p.parseExpression()
}

// parseSimple parses a declaration, assignment, increment or bare
// expression, without the terminating semicolon.
func (p *Parser) parseSimple() ast.Statement {
	start := p.l.Peek()

	if start.Kind == types.IDENT && p.l.PeekN(1).Kind == types.COLON {
		p.l.Lex()
		p.l.Lex()
		decl := &ast.Declaration{
			To:   ident(start),
			Kind: p.parseType(),
		}
		if p.l.PeekIs(types.EQUALS) {
			p.l.Lex()
			decl.Value = p.parseExpression()
		}
		decl.Pos = types.Span{From: start.Location.From, To: p.l.pos()}
		return decl
	}

	expr := p.parseExpression()
	op := p.l.Peek()

	switch op.Kind {
	case types.EQUALS, types.PLUSEQUALS, types.MINUSEQUALS:
		p.l.Lex()
		p.checkAssignable(expr, op)
		value := p.parseExpression()
		return &ast.Assignment{
			To:    expr,
			Op:    op.Kind,
			Value: value,
			Pos:   types.Span{From: start.Location.From, To: p.l.pos()},
		}
	case types.STAREQUALS, types.SLASHEQUALS, types.PERCENTEQUALS:
		panic(errors.ParseError{
			Kind:     errors.UnsupportedAssignment,
			Position: op.Location.From,
			Expected: "=, += or -=",
			Found:    op.Text,
			Message:  fmt.Sprintf("assignment operator %s is not supported; only =, += and -= are", op.Text),
		})
	case types.INCREMENT, types.DECREMENT:
		p.l.Lex()
		p.checkAssignable(expr, op)
		return &ast.IncDec{
			To:  expr,
			Op:  op.Kind,
			Pos: types.Span{From: start.Location.From, To: p.l.pos()},
		}
	}

	return &ast.ExpressionStatement{Expression: expr}
}

func (p *Parser) checkAssignable(expr ast.Expression, op types.Token) {
	switch expr.(type) {
	case *ast.Var, *ast.Field, *ast.Index:
		return
	}
	panic(errors.ParseError{
		Kind:     errors.NotAssignable,
		Position: expr.Span().From,
		Expected: "variable, field or element",
		Found:    ast.ExprString(expr),
		Message:  fmt.Sprintf("cannot use %s on %s", op.Text, ast.ExprString(expr)),
	})
}
