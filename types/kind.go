package types

import "fmt"

// Type is a language-level type. A nil Type means the type could not be
// determined without running the program.
type Type interface {
	is_Type()
	String() string
}

type Primitive int

const (
	IntKind Primitive = iota
	BoolKind
	StrKind
)

func (p Primitive) is_Type() {}

func (p Primitive) String() string {
	switch p {
	case IntKind:
		return "int"
	case BoolKind:
		return "bool"
	case StrKind:
		return "str"
	}
	return "?"
}

var (
	Int  Type = IntKind
	Bool Type = BoolKind
	Str  Type = StrKind
)

// Builtins are the type names that never refer to a struct.
var Builtins = map[string]Type{
	"int":  Int,
	"bool": Bool,
	"str":  Str,
}

// MaxArrayLen bounds the number of elements one array type may hold,
// counting every element of nested arrays.
const MaxArrayLen = 1 << 20

type Array struct {
	Elem Type
	Len  int
}

// Elements is the number of scalar slots in t when t is a (possibly
// nested) array, 1 otherwise.
func Elements(t Type) int {
	if arr, ok := t.(*Array); ok {
		return arr.Len * Elements(arr.Elem)
	}
	return 1
}

func (a *Array) is_Type() {}

func (a *Array) String() string {
	return fmt.Sprintf("[%s*%d]", a.Elem, a.Len)
}

type Struct struct {
	Name string
}

func (s *Struct) is_Type() {}

func (s *Struct) String() string {
	return s.Name
}

// Equal reports whether a and b denote the same type. Indeterminate types
// are never equal to anything.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x == y
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Len == y.Len && Equal(x.Elem, y.Elem)
	case *Struct:
		y, ok := b.(*Struct)
		return ok && x.Name == y.Name
	}
	return false
}

// Compatible is Equal, except that an indeterminate side is accepted.
func Compatible(a, b Type) bool {
	if a == nil || b == nil {
		return true
	}
	if x, ok := a.(*Array); ok {
		y, ok := b.(*Array)
		return ok && x.Len == y.Len && Compatible(x.Elem, y.Elem)
	}
	return Equal(a, b)
}

func Name(t Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}
