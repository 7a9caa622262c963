package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/brace/types"
)

type ExpectedOneOfKindGotKind struct {
	Expected []types.TokenKind
	Got      types.Token
	Location types.Span
}

func (e ExpectedOneOfKindGotKind) Error() string {
	return e.Fault().Error()
}

func (e ExpectedOneOfKindGotKind) Fault() *Fault {
	var names []string
	for _, kind := range e.Expected {
		names = append(names, kind.String())
	}
	expected := strings.Join(names, " or ")
	if len(names) > 2 {
		expected = "one of " + strings.Join(names, ", ")
	}
	return ParseError{
		Kind:     UnexpectedToken,
		Position: e.Location.From,
		Expected: expected,
		Found:    e.Got.String(),
	}.Fault()
}

type DuplicateField struct {
	Name     string
	Location types.Span
}

func (e DuplicateField) Error() string {
	return e.Fault().Error()
}

func (e DuplicateField) Fault() *Fault {
	return New(Parse, DuplicateFieldKind, &e.Location.From, "field %s specified more than once", e.Name)
}

// ParseError is a grammar violation found while building the tree.
type ParseError struct {
	Kind     Kind
	Position types.Position
	Expected string
	Found    string
	Message  string
}

func (e ParseError) Error() string {
	return e.Fault().Error()
}

func (e ParseError) Fault() *Fault {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	}
	return New(Parse, e.Kind, &e.Position, "%s", msg)
}

// LexError is raised for text that cannot be turned into a token.
type LexError struct {
	Kind     Kind
	Position types.Position
	Message  string
}

func (e LexError) Error() string {
	return e.Fault().Error()
}

func (e LexError) Fault() *Fault {
	return New(Lex, e.Kind, &e.Position, "%s", e.Message)
}
