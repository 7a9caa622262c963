package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	COLON
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LSQUARE
	RSQUARE
	COMMA
	PERIOD
	ELLIPSIS
	ARROW
	EOS

	EQUALS
	PLUSEQUALS
	MINUSEQUALS
	STAREQUALS
	SLASHEQUALS
	PERCENTEQUALS
	INCREMENT
	DECREMENT

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	BANG
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
	AND
	OR

	INT
	IDENT
	STRING

	FN
	STRUCT
	IF
	ELIF
	ELSE
	FOR
	WHILE
	BREAK
	CONTINUE
	RETURN
	TRUE
	FALSE
	GOTO
)

var kindNames = map[TokenKind]string{
	EOF:           "EOF",
	ILLEGAL:       "ILLEGAL",
	COLON:         "':'",
	LPAREN:        "'('",
	RPAREN:        "')'",
	LBRACKET:      "'{'",
	RBRACKET:      "'}'",
	LSQUARE:       "'['",
	RSQUARE:       "']'",
	COMMA:         "','",
	PERIOD:        "'.'",
	ELLIPSIS:      "'..'",
	ARROW:         "'->'",
	EOS:           "';'",
	EQUALS:        "'='",
	PLUSEQUALS:    "'+='",
	MINUSEQUALS:   "'-='",
	STAREQUALS:    "'*='",
	SLASHEQUALS:   "'/='",
	PERCENTEQUALS: "'%='",
	INCREMENT:     "'++'",
	DECREMENT:     "'--'",
	PLUS:          "'+'",
	MINUS:         "'-'",
	STAR:          "'*'",
	SLASH:         "'/'",
	PERCENT:       "'%'",
	BANG:          "'!'",
	EQ:            "'=='",
	NEQ:           "'!='",
	LT:            "'<'",
	LTE:           "'<='",
	GT:            "'>'",
	GTE:           "'>='",
	AND:           "'&&'",
	OR:            "'||'",
	INT:           "integer",
	IDENT:         "identifier",
	STRING:        "string",
	FN:            "fn",
	STRUCT:        "struct",
	IF:            "if",
	ELIF:          "elif",
	ELSE:          "else",
	FOR:           "for",
	WHILE:         "while",
	BREAK:         "break",
	CONTINUE:      "continue",
	RETURN:        "return",
	TRUE:          "true",
	FALSE:         "false",
	GOTO:          "goto",
}

func (t TokenKind) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// Keywords maps reserved words to their token kinds.
var Keywords = map[string]TokenKind{
	"fn":       FN,
	"struct":   STRUCT,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"for":      FOR,
	"while":    WHILE,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"true":     TRUE,
	"false":    FALSE,
	"goto":     GOTO,
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

type Token struct {
	Kind     TokenKind
	Text     string
	Location Span
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT, INT:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case STRING:
		return fmt.Sprintf("string %q", t.Text)
	}
	return t.Kind.String()
}
