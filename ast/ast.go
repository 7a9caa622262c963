package ast

import "github.com/pontaoski/brace/types"

type Identifier struct {
	Name string
	Pos  types.Span
}

type Node interface {
	Span() types.Span
}

type Expression interface {
	Node
	is_Expression()
}

type Statement interface {
	Node
	is_Statement()
}

type TopLevel interface {
	Node
	is_TopLevel()
}

type IntLiteral struct {
	Value int64
	Pos   types.Span
}

func (v *IntLiteral) is_Expression()   {}
func (v *IntLiteral) Span() types.Span { return v.Pos }

type BoolLiteral struct {
	Value bool
	Pos   types.Span
}

func (v *BoolLiteral) is_Expression()   {}
func (v *BoolLiteral) Span() types.Span { return v.Pos }

type StringLiteral struct {
	Value string
	Pos   types.Span
}

func (v *StringLiteral) is_Expression()   {}
func (v *StringLiteral) Span() types.Span { return v.Pos }

type Var struct {
	Identifier
}

func (v *Var) is_Expression()   {}
func (v *Var) Span() types.Span { return v.Pos }

type Binary struct {
	Op    types.TokenKind
	Left  Expression
	Right Expression
	Pos   types.Span
}

func (v *Binary) is_Expression()   {}
func (v *Binary) Span() types.Span { return v.Pos }

type Unary struct {
	Op      types.TokenKind
	Operand Expression
	Pos     types.Span
}

func (v *Unary) is_Expression()   {}
func (v *Unary) Span() types.Span { return v.Pos }

type Call struct {
	Function  Identifier
	Arguments []Expression
	Pos       types.Span
}

func (v *Call) is_Expression()   {}
func (v *Call) Span() types.Span { return v.Pos }

type Field struct {
	Of    Expression
	Ident Identifier
	Pos   types.Span
}

func (v *Field) is_Expression()   {}
func (v *Field) Span() types.Span { return v.Pos }

type Index struct {
	Of    Expression
	Index Expression
	Pos   types.Span
}

func (v *Index) is_Expression()   {}
func (v *Index) Span() types.Span { return v.Pos }

// ArrayLiteral is either a full element list or, when Fill is set or only
// one element is given, a single value repeated over the whole array.
type ArrayLiteral struct {
	Elements []Expression
	Fill     bool
	Pos      types.Span
}

func (v *ArrayLiteral) is_Expression()   {}
func (v *ArrayLiteral) Span() types.Span { return v.Pos }

type FieldInit struct {
	Ident Identifier
	Value Expression
}

type StructLiteral struct {
	Ident  Identifier
	Fields []FieldInit
	Pos    types.Span
}

func (v *StructLiteral) is_Expression()   {}
func (v *StructLiteral) Span() types.Span { return v.Pos }

type Declaration struct {
	To    Identifier
	Kind  types.Type
	Value Expression
	Pos   types.Span
}

func (v *Declaration) is_Statement()    {}
func (v *Declaration) Span() types.Span { return v.Pos }

// Assignment covers =, += and -=. To is a Var, Field or Index.
type Assignment struct {
	To    Expression
	Op    types.TokenKind
	Value Expression
	Pos   types.Span
}

func (v *Assignment) is_Statement()    {}
func (v *Assignment) Span() types.Span { return v.Pos }

type IncDec struct {
	To  Expression
	Op  types.TokenKind
	Pos types.Span
}

func (v *IncDec) is_Statement()    {}
func (v *IncDec) Span() types.Span { return v.Pos }

type Block struct {
	Statements []Statement
	Pos        types.Span
}

func (v *Block) is_Statement()    {}
func (v *Block) Span() types.Span { return v.Pos }

// If holds one condition; elif chains are nested Ifs in Else.
type If struct {
	Condition Expression
	Then      *Block
	Else      Statement
	Pos       types.Span
}

func (v *If) is_Statement()    {}
func (v *If) Span() types.Span { return v.Pos }

type For struct {
	Init      Statement
	Condition Expression
	Post      Statement
	Body      *Block
	Pos       types.Span
}

func (v *For) is_Statement()    {}
func (v *For) Span() types.Span { return v.Pos }

type While struct {
	Condition Expression
	Body      *Block
	Pos       types.Span
}

func (v *While) is_Statement()    {}
func (v *While) Span() types.Span { return v.Pos }

type Break struct {
	Pos types.Span
}

func (v *Break) is_Statement()    {}
func (v *Break) Span() types.Span { return v.Pos }

type Continue struct {
	Pos types.Span
}

func (v *Continue) is_Statement()    {}
func (v *Continue) Span() types.Span { return v.Pos }

type Return struct {
	Value Expression
	Pos   types.Span
}

func (v *Return) is_Statement()    {}
func (v *Return) Span() types.Span { return v.Pos }

type ExpressionStatement struct {
	Expression
}

func (v *ExpressionStatement) is_Statement()    {}
func (v *ExpressionStatement) Span() types.Span { return v.Expression.Span() }

type StructField struct {
	Ident Identifier
	Kind  types.Type
}

type StructDecl struct {
	Ident  Identifier
	Fields []StructField
	Pos    types.Span
}

func (v *StructDecl) is_TopLevel()     {}
func (v *StructDecl) Span() types.Span { return v.Pos }

// FieldType returns the declared type of a field and its position.
func (v *StructDecl) FieldType(name string) (types.Type, int, bool) {
	for idx, field := range v.Fields {
		if field.Ident.Name == name {
			return field.Kind, idx, true
		}
	}
	return nil, -1, false
}

type Param struct {
	Ident   Identifier
	Kind    types.Type
	Default Expression
}

type Func struct {
	Ident     Identifier
	Arguments []Param

	// Returns is nil when no result type was declared.
	Returns types.Type
	Body    *Block
	Pos     types.Span
}

func (v *Func) is_TopLevel()     {}
func (v *Func) Span() types.Span { return v.Pos }

// Required counts the parameters that have no default.
func (v *Func) Required() int {
	n := 0
	for _, arg := range v.Arguments {
		if arg.Default == nil {
			n++
		}
	}
	return n
}

type Program struct {
	Toplevels []TopLevel
}

func (p *Program) Func(name string) (*Func, bool) {
	for _, tl := range p.Toplevels {
		if fn, ok := tl.(*Func); ok && fn.Ident.Name == name {
			return fn, true
		}
	}
	return nil, false
}

func (p *Program) Struct(name string) (*StructDecl, bool) {
	for _, tl := range p.Toplevels {
		if st, ok := tl.(*StructDecl); ok && st.Ident.Name == name {
			return st, true
		}
	}
	return nil, false
}

func (p *Program) Funcs() (ret []*Func) {
	for _, tl := range p.Toplevels {
		if fn, ok := tl.(*Func); ok {
			ret = append(ret, fn)
		}
	}
	return
}

func (p *Program) Structs() (ret []*StructDecl) {
	for _, tl := range p.Toplevels {
		if st, ok := tl.(*StructDecl); ok {
			ret = append(ret, st)
		}
	}
	return
}
