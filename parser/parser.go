package parser

import (
	"fmt"
	"io"
	"strconv"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/lexer"
	"github.com/pontaoski/brace/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/brace", "parser")

type Parser struct {
	l   *stream
	ast ast.Program

	// noStructLit is set while parsing if/while/for headers, where a
	// '{' opens the body rather than a struct literal.
	noStructLit bool
}

func NewParser(toks []types.Token) Parser {
	return Parser{l: newStream(toks)}
}

// Parse builds a program from a token stream.
func Parse(toks []types.Token) (*ast.Program, error) {
	p := NewParser(toks)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return &p.ast, nil
}

// ParseSource tokenizes and parses one source file.
func ParseSource(r io.Reader, filename string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(r, filename)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

func (p *Parser) Program() *ast.Program {
	return &p.ast
}

func (p *Parser) Parse() (err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				panic(r)
			}
			if _, isFault := errors.AsFaults(rerr); isFault {
				err = rerr
			} else {
				err = tracerr.Wrap(rerr)
			}
		}
	}()
	for {
		tok := p.l.Peek()

		switch tok.Kind {
		case types.EOF:
			plog.Debugf("parsed %d declarations from %s", len(p.ast.Toplevels), tok.Location.From.Filename)
			return
		case types.STRUCT:
			p.ast.Toplevels = append(p.ast.Toplevels, p.parseStruct())
		case types.FN:
			p.l.Lex()
			p.ast.Toplevels = append(p.ast.Toplevels, p.parseFunc(tok))
		case types.IDENT:
			if p.l.PeekN(1).Kind != types.LPAREN {
				p.l.Lex()
				p.l.LexExpecting(types.LPAREN)
			}
			p.ast.Toplevels = append(p.ast.Toplevels, p.parseFunc(tok))
		case types.GOTO:
			p.unsupportedKeyword(tok)
		default:
			panic(errors.ExpectedOneOfKindGotKind{
				Expected: []types.TokenKind{types.FN, types.STRUCT},
				Got:      tok,
				Location: tok.Location,
			})
		}
	}
}

func (p *Parser) unsupportedKeyword(tok types.Token) {
	panic(errors.ParseError{
		Kind:     errors.UnsupportedKeyword,
		Position: tok.Location.From,
		Found:    tok.Text,
		Message:  fmt.Sprintf("%s is not supported", tok.Text),
	})
}

func (p *Parser) parseStruct() *ast.StructDecl {
	open := p.l.LexExpecting(types.STRUCT)
	name := p.l.LexExpecting(types.IDENT)
	decl := &ast.StructDecl{Ident: ident(name)}

	p.l.LexExpecting(types.LBRACKET)
	for !p.l.PeekIs(types.RBRACKET) {
		if p.l.PeekIs(types.COMMA, types.EOS) {
			p.l.Lex()
			continue
		}

		fieldTok := p.l.LexExpecting(types.IDENT)
		p.l.LexExpecting(types.COLON)
		kind := p.parseType()

		if _, _, dup := decl.FieldType(fieldTok.Text); dup {
			panic(errors.DuplicateField{
				Name:     fieldTok.Text,
				Location: fieldTok.Location,
			})
		}
		decl.Fields = append(decl.Fields, ast.StructField{Ident: ident(fieldTok), Kind: kind})

		if !p.l.PeekIs(types.RBRACKET) {
			p.l.LexExpecting(types.COMMA, types.EOS)
		}
	}
	p.l.LexExpecting(types.RBRACKET)
	decl.Pos = types.Span{From: open.Location.From, To: p.l.pos()}

	return decl
}

// parseFunc is called with the parser on the function name; start is the
// first token of the declaration.
func (p *Parser) parseFunc(start types.Token) *ast.Func {
	name := p.l.LexExpecting(types.IDENT)
	fn := &ast.Func{Ident: ident(name)}

	p.l.LexExpecting(types.LPAREN)
	if !p.l.PeekIs(types.RPAREN) {
		for {
			argTok := p.l.LexExpecting(types.IDENT)
			p.l.LexExpecting(types.COLON)
			param := ast.Param{Ident: ident(argTok), Kind: p.parseType()}
			if p.l.PeekIs(types.EQUALS) {
				p.l.Lex()
				param.Default = p.parseExpression()
			}
			fn.Arguments = append(fn.Arguments, param)

			if p.l.PeekIs(types.RPAREN) {
				break
			}
			p.l.LexExpecting(types.COMMA, types.RPAREN)
		}
	}
	p.l.LexExpecting(types.RPAREN)

	if p.l.PeekIs(types.ARROW) {
		p.l.Lex()
		if !p.l.PeekIs(types.LBRACKET) {
			at := p.l.Peek()
			ret := p.parseType()
			if _, isArray := ret.(*types.Array); isArray {
				panic(errors.ParseError{
					Kind:     errors.ArrayReturnType,
					Position: at.Location.From,
					Found:    ret.String(),
					Message:  fmt.Sprintf("function %s cannot return array type %s", name.Text, ret),
				})
			}
			fn.Returns = ret
		}
	}

	open := p.l.LexExpecting(types.LBRACKET)
	fn.Body = p.parseBlock(open)
	fn.Pos = types.Span{From: start.Location.From, To: p.l.pos()}

	return fn
}

func (p *Parser) parseType() types.Type {
	tok := p.l.LexExpecting(types.IDENT, types.LSQUARE)

	switch tok.Kind {
	case types.IDENT:
		if builtin, ok := types.Builtins[tok.Text]; ok {
			return builtin
		}
		return &types.Struct{Name: tok.Text}
	case types.LSQUARE:
		elem := p.parseType()
		p.l.LexExpecting(types.STAR)
		lenTok := p.l.LexExpecting(types.INT)
		n, err := strconv.Atoi(lenTok.Text)
		if err != nil || n <= 0 {
			panic(errors.ParseError{
				Kind:     errors.ArrayArity,
				Position: lenTok.Location.From,
				Found:    lenTok.Text,
				Message:  fmt.Sprintf("array length must be a positive integer, got %s", lenTok.Text),
			})
		}
		if n > types.MaxArrayLen || n*types.Elements(elem) > types.MaxArrayLen {
			panic(errors.ParseError{
				Kind:     errors.ArrayArity,
				Position: lenTok.Location.From,
				Found:    lenTok.Text,
				Message:  fmt.Sprintf("array of %s elements is larger than the limit of %d", lenTok.Text, types.MaxArrayLen),
			})
		}
		p.l.LexExpecting(types.RSQUARE)
		return &types.Array{Elem: elem, Len: n}
	}

	panic("unexpected type token")
}

func ident(tok types.Token) ast.Identifier {
	return ast.Identifier{Name: tok.Text, Pos: tok.Location}
}
