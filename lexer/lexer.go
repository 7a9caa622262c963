package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/ztrue/tracerr"

	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

type Lexer struct {
	pos     types.Position
	lastCol int
	reader  *bufio.Reader
}

func NewLexer(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		pos:    types.Position{Line: 1, Column: 0, Filename: filename},
		reader: bufio.NewReader(reader),
	}
}

// Tokenize reads the whole source and returns its tokens, ending with EOF.
func Tokenize(reader io.Reader, filename string) (toks []types.Token, err error) {
	l := NewLexer(reader, filename)
	defer func() {
		if r := recover(); r != nil {
			lerr, ok := r.(errors.LexError)
			if ok {
				err = lerr
				return
			}
			if rerr, ok := r.(error); ok {
				err = tracerr.Wrap(rerr)
				return
			}
			panic(r)
		}
	}()

	for {
		tok := l.Lex()
		toks = append(toks, tok)
		if tok.Kind == types.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) read() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			return 0, false
		}
		panic(err)
	}
	if r == '\n' {
		l.lastCol = l.pos.Column
		l.pos.Line++
		l.pos.Column = 0
	} else {
		l.pos.Column++
	}
	return r, true
}

func (l *Lexer) backup(r rune) {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}
	if r == '\n' {
		l.pos.Line--
		l.pos.Column = l.lastCol
	} else {
		l.pos.Column--
	}
}

func (l *Lexer) peek() rune {
	r, ok := l.read()
	if !ok {
		return 0
	}
	l.backup(r)
	return r
}

func (l *Lexer) fail(kind errors.Kind, at types.Position, format string, args ...interface{}) {
	panic(errors.LexError{
		Kind:     kind,
		Position: at,
		Message:  fmt.Sprintf(format, args...),
	})
}

func firstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func otherChar(r rune) bool {
	return firstChar(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (l *Lexer) lexWhile(first rune, pred func(rune) bool) string {
	var lit strings.Builder
	lit.WriteRune(first)
	for {
		r, ok := l.read()
		if !ok {
			return lit.String()
		}
		if !pred(r) {
			l.backup(r)
			return lit.String()
		}
		lit.WriteRune(r)
	}
}

// lexString is called after the opening quote has been consumed.
func (l *Lexer) lexString(from types.Position) string {
	var lit strings.Builder
	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			l.fail(errors.UnterminatedString, from, "unterminated string literal")
		}

		switch r {
		case '"':
			return lit.String()
		case '\\':
			esc, ok := l.read()
			if !ok {
				l.fail(errors.UnterminatedString, from, "unterminated string literal")
			}
			switch esc {
			case 'n':
				lit.WriteRune('\n')
			case 't':
				lit.WriteRune('\t')
			case '"', '\\':
				lit.WriteRune(esc)
			default:
				l.fail(errors.UnexpectedCharacter, l.pos, "unknown escape sequence \\%c", esc)
			}
		default:
			lit.WriteRune(r)
		}
	}
}

func (l *Lexer) skipComment() {
	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			return
		}
	}
}

var single = map[rune]types.TokenKind{
	':': types.COLON,
	'(': types.LPAREN,
	')': types.RPAREN,
	'{': types.LBRACKET,
	'}': types.RBRACKET,
	'[': types.LSQUARE,
	']': types.RSQUARE,
	',': types.COMMA,
	';': types.EOS,
}

// operators lists every multi-character spelling a leading rune may start,
// longest first, followed by its single-rune meaning.
var operators = map[rune][]struct {
	text string
	kind types.TokenKind
}{
	'+': {{"++", types.INCREMENT}, {"+=", types.PLUSEQUALS}, {"+", types.PLUS}},
	'-': {{"--", types.DECREMENT}, {"-=", types.MINUSEQUALS}, {"->", types.ARROW}, {"-", types.MINUS}},
	'*': {{"*=", types.STAREQUALS}, {"*", types.STAR}},
	'/': {{"/=", types.SLASHEQUALS}, {"/", types.SLASH}},
	'%': {{"%=", types.PERCENTEQUALS}, {"%", types.PERCENT}},
	'=': {{"==", types.EQ}, {"=", types.EQUALS}},
	'!': {{"!=", types.NEQ}, {"!", types.BANG}},
	'<': {{"<=", types.LTE}, {"<", types.LT}},
	'>': {{">=", types.GTE}, {">", types.GT}},
	'&': {{"&&", types.AND}},
	'|': {{"||", types.OR}},
	'.': {{"..", types.ELLIPSIS}, {".", types.PERIOD}},
}

func (l *Lexer) lexOperator(r rune, from types.Position) types.Token {
	next := l.peek()
	for _, op := range operators[r] {
		if len(op.text) == 2 {
			if rune(op.text[1]) != next {
				continue
			}
			l.read()
		}
		return types.Token{Kind: op.kind, Text: op.text, Location: types.Span{From: from, To: l.pos}}
	}
	l.fail(errors.UnexpectedCharacter, from, "unexpected character %q", r)
	return types.Token{}
}

// Lex returns the next token. Malformed input panics with an errors.LexError.
func (l *Lexer) Lex() types.Token {
	for {
		r, ok := l.read()
		if !ok {
			return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(l.pos)}
		}
		from := l.pos

		if kind, ok := single[r]; ok {
			return types.Token{Kind: kind, Text: string(r), Location: types.SingleCharSpan(from)}
		}

		switch {
		case unicode.IsSpace(r):
			continue
		case r == '/' && l.peek() == '/':
			l.skipComment()
			continue
		case r == '"':
			lit := l.lexString(from)
			return types.Token{Kind: types.STRING, Text: lit, Location: types.Span{From: from, To: l.pos}}
		case isDigit(r):
			lit := l.lexWhile(r, isDigit)
			if _, err := strconv.ParseInt(lit, 10, 64); err != nil {
				l.fail(errors.IntegerOverflow, from, "integer literal %s does not fit in 64 bits", lit)
			}
			return types.Token{Kind: types.INT, Text: lit, Location: types.Span{From: from, To: l.pos}}
		case firstChar(r):
			lit := l.lexWhile(r, otherChar)
			span := types.Span{From: from, To: l.pos}
			if kind, ok := types.Keywords[lit]; ok {
				return types.Token{Kind: kind, Text: lit, Location: span}
			}
			return types.Token{Kind: types.IDENT, Text: lit, Location: span}
		case operators[r] != nil:
			return l.lexOperator(r, from)
		}

		l.fail(errors.UnexpectedCharacter, from, "unexpected character %q", r)
	}
}
