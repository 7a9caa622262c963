package parser

import (
	"fmt"
	"strconv"

	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

// binding power of each binary operator, loosest first
var precedence = map[types.TokenKind]int{
	types.OR:      1,
	types.AND:     2,
	types.EQ:      3,
	types.NEQ:     3,
	types.LT:      4,
	types.LTE:     4,
	types.GT:      4,
	types.GTE:     4,
	types.PLUS:    5,
	types.MINUS:   5,
	types.STAR:    6,
	types.SLASH:   6,
	types.PERCENT: 6,
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(min int) ast.Expression {
	left := p.parseUnary()

	for {
		op := p.l.Peek()
		prec, ok := precedence[op.Kind]
		if !ok || prec < min {
			return left
		}
		p.l.Lex()

		right := p.parseBinary(prec + 1)
		left = &ast.Binary{
			Op:    op.Kind,
			Left:  left,
			Right: right,
			Pos:   types.Span{From: left.Span().From, To: right.Span().To},
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	if p.l.PeekIs(types.MINUS, types.BANG) {
		op := p.l.Lex()
		operand := p.parseUnary()
		return &ast.Unary{
			Op:      op.Kind,
			Operand: operand,
			Pos:     types.Span{From: op.Location.From, To: operand.Span().To},
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parseExpressionLeaf()

	for {
		switch {
		case p.l.PeekIs(types.PERIOD):
			p.l.Lex()
			name := p.l.LexExpecting(types.IDENT)
			expr = &ast.Field{
				Of:    expr,
				Ident: ident(name),
				Pos:   types.Span{From: expr.Span().From, To: name.Location.To},
			}
		case p.l.PeekIs(types.LSQUARE):
			p.l.Lex()
			idx := p.parseNested()
			p.l.LexExpecting(types.RSQUARE)
			expr = &ast.Index{
				Of:    expr,
				Index: idx,
				Pos:   types.Span{From: expr.Span().From, To: p.l.pos()},
			}
		default:
			return expr
		}
	}
}

// parseNested parses an expression inside brackets, where struct literals
// are always allowed.
func (p *Parser) parseNested() ast.Expression {
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()

	return p.parseExpression()
}

func (p *Parser) parseExpressionLeaf() ast.Expression {
	if p.l.PeekIs(types.GOTO) {
		p.unsupportedKeyword(p.l.Peek())
	}
	tok := p.l.LexExpecting(types.IDENT, types.INT, types.STRING, types.TRUE, types.FALSE, types.LPAREN, types.LSQUARE)

	switch tok.Kind {
	case types.INT:
		parsed, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			panic(err)
		}
		return &ast.IntLiteral{Value: parsed, Pos: tok.Location}
	case types.STRING:
		return &ast.StringLiteral{Value: tok.Text, Pos: tok.Location}
	case types.TRUE, types.FALSE:
		return &ast.BoolLiteral{Value: tok.Kind == types.TRUE, Pos: tok.Location}
	case types.LPAREN:
		expr := p.parseNested()
		p.l.LexExpecting(types.RPAREN)
		return expr
	case types.LSQUARE:
		return p.parseArrayLiteral(tok)
	case types.IDENT:
		if p.l.PeekIs(types.LPAREN) {
			return p.parseCall(tok)
		}
		if p.l.PeekIs(types.LBRACKET) && !p.noStructLit {
			return p.parseStructLiteral(tok)
		}
		return &ast.Var{Identifier: ident(tok)}
	}

	panic("unhandled")
}

func (p *Parser) parseCall(name types.Token) *ast.Call {
	p.l.LexExpecting(types.LPAREN)
	var args []ast.Expression

	if !p.l.PeekIs(types.RPAREN) {
		for {
			args = append(args, p.parseNested())

			if p.l.PeekIs(types.RPAREN) {
				break
			}
			p.l.LexExpecting(types.COMMA, types.RPAREN)
		}
	}
	p.l.LexExpecting(types.RPAREN)

	return &ast.Call{
		Function:  ident(name),
		Arguments: args,
		Pos:       types.Span{From: name.Location.From, To: p.l.pos()},
	}
}

// parseArrayLiteral is called past the opening bracket.
func (p *Parser) parseArrayLiteral(open types.Token) *ast.ArrayLiteral {
	lit := &ast.ArrayLiteral{}

	for !p.l.PeekIs(types.RSQUARE) {
		if p.l.PeekIs(types.ELLIPSIS) {
			fill := p.l.Lex()
			if len(lit.Elements) != 1 {
				panic(errors.ParseError{
					Kind:     errors.ArrayArity,
					Position: fill.Location.From,
					Expected: "exactly one value before ..",
					Found:    fmt.Sprintf("%d values", len(lit.Elements)),
					Message:  fmt.Sprintf("an array can only be filled from one value, got %d", len(lit.Elements)),
				})
			}
			lit.Fill = true
			break
		}

		lit.Elements = append(lit.Elements, p.parseNested())
		if p.l.PeekIs(types.RSQUARE) {
			break
		}
		p.l.LexExpecting(types.COMMA, types.RSQUARE)
	}
	p.l.LexExpecting(types.RSQUARE)
	lit.Pos = types.Span{From: open.Location.From, To: p.l.pos()}

	return lit
}

func (p *Parser) parseStructLiteral(name types.Token) *ast.StructLiteral {
	lit := &ast.StructLiteral{Ident: ident(name)}
	seen := map[string]bool{}

	p.l.LexExpecting(types.LBRACKET)
	for !p.l.PeekIs(types.RBRACKET) {
		if p.l.PeekIs(types.COMMA) {
			p.l.Lex()
			continue
		}

		tok := p.l.LexExpecting(types.IDENT)
		p.l.LexExpecting(types.COLON)
		expr := p.parseNested()

		if seen[tok.Text] {
			panic(errors.DuplicateField{
				Name:     tok.Text,
				Location: tok.Location,
			})
		}
		seen[tok.Text] = true
		lit.Fields = append(lit.Fields, ast.FieldInit{Ident: ident(tok), Value: expr})

		if !p.l.PeekIs(types.RBRACKET) {
			p.l.LexExpecting(types.COMMA, types.RBRACKET)
		}
	}
	p.l.LexExpecting(types.RBRACKET)
	lit.Pos = types.Span{From: name.Location.From, To: p.l.pos()}

	return lit
}
