package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/pontaoski/brace/types"
)

// Phase is the pipeline stage that detected a fault.
type Phase int

const (
	Lex Phase = iota
	Parse
	Static
	Runtime
)

func (p Phase) String() string {
	switch p {
	case Lex:
		return "lex"
	case Parse:
		return "parse"
	case Static:
		return "static"
	case Runtime:
		return "runtime"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type Kind string

const (
	UnexpectedCharacter Kind = "UnexpectedCharacter"
	UnterminatedString  Kind = "UnterminatedString"
	IntegerOverflow     Kind = "IntegerOverflow"

	UnexpectedToken       Kind = "UnexpectedToken"
	DuplicateFieldKind    Kind = "DuplicateField"
	ArrayReturnType       Kind = "ArrayReturnType"
	UnsupportedKeyword    Kind = "UnsupportedKeyword"
	UnsupportedAssignment Kind = "UnsupportedAssignment"
	ArrayArity            Kind = "ArrayArity"

	TypeMismatch         Kind = "TypeMismatch"
	DuplicateBinding     Kind = "DuplicateBinding"
	DuplicateDeclaration Kind = "DuplicateDeclaration"
	MisplacedLoopControl Kind = "MisplacedLoopControl"
	UnknownType          Kind = "UnknownType"
	RecursiveStruct      Kind = "RecursiveStruct"
	UndefinedFunction    Kind = "UndefinedFunction"
	ArityMismatch        Kind = "ArityMismatch"
	DefaultOrder         Kind = "DefaultOrder"
	InvalidOperation     Kind = "InvalidOperation"
	NotAssignable        Kind = "NotAssignable"

	DivisionByZero      Kind = "DivisionByZero"
	UndefinedIdentifier Kind = "UndefinedIdentifier"
	UndefinedField      Kind = "UndefinedField"
	IndexOutOfRange     Kind = "IndexOutOfRange"
	MissingReturn       Kind = "MissingReturn"
	NoValue             Kind = "NoValue"
	StackOverflow       Kind = "StackOverflow"
	Cancelled           Kind = "Cancelled"
)

// Fault is the structured diagnostic every phase reports.
type Fault struct {
	Phase    Phase
	Kind     Kind
	Message  string
	Position *types.Position
}

func New(phase Phase, kind Kind, pos *types.Position, format string, args ...interface{}) *Fault {
	f := &Fault{
		Phase:   phase,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
	if pos != nil {
		p := *pos
		f.Position = &p
	}
	return f
}

func (f *Fault) Error() string {
	if f.Position != nil {
		return fmt.Sprintf("%s error [%s] at %s: %s", f.Phase, f.Kind, f.Position, f.Message)
	}
	return fmt.Sprintf("%s error [%s]: %s", f.Phase, f.Kind, f.Message)
}

// Faults collects several faults from the same phase.
type Faults []*Fault

func (fs Faults) Error() string {
	var lines []string
	for _, f := range fs {
		lines = append(lines, f.Error())
	}
	return strings.Join(lines, "\n")
}

// Err returns nil when no faults were collected.
func (fs Faults) Err() error {
	if len(fs) == 0 {
		return nil
	}
	return fs
}

type faulter interface {
	Fault() *Fault
}

// AsFaults extracts the faults carried by err, if any.
func AsFaults(err error) (Faults, bool) {
	var list Faults
	if stderrors.As(err, &list) {
		return list, true
	}
	var fault *Fault
	if stderrors.As(err, &fault) {
		return Faults{fault}, true
	}
	var f faulter
	if stderrors.As(err, &f) {
		return Faults{f.Fault()}, true
	}
	return nil, false
}
