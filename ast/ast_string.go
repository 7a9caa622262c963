package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pontaoski/brace/types"
)

func typeToString(t types.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func (f *Func) String() string {
	var args []string
	for _, arg := range f.Arguments {
		s := fmt.Sprintf("%s: %s", arg.Ident.Name, typeToString(arg.Kind))
		if arg.Default != nil {
			s += " = " + ExprString(arg.Default)
		}
		args = append(args, s)
	}
	ret := typeToString(f.Returns)
	if ret != "" {
		ret = " " + ret
	}
	return fmt.Sprintf("fn %s(%s) ->%s", f.Ident.Name, strings.Join(args, ", "), ret)
}

func (s *StructDecl) String() string {
	var fields []string
	for _, field := range s.Fields {
		fields = append(fields, fmt.Sprintf("%s: %s", field.Ident.Name, typeToString(field.Kind)))
	}
	return fmt.Sprintf("struct %s { %s }", s.Ident.Name, strings.Join(fields, ", "))
}

var opText = map[types.TokenKind]string{
	types.PLUS:    "+",
	types.MINUS:   "-",
	types.STAR:    "*",
	types.SLASH:   "/",
	types.PERCENT: "%",
	types.BANG:    "!",
	types.EQ:      "==",
	types.NEQ:     "!=",
	types.LT:      "<",
	types.LTE:     "<=",
	types.GT:      ">",
	types.GTE:     ">=",
	types.AND:     "&&",
	types.OR:      "||",
}

// OpString renders an operator token kind as source text.
func OpString(k types.TokenKind) string {
	if s, ok := opText[k]; ok {
		return s
	}
	return k.String()
}

// ExprString renders an expression back to source form, fully parenthesised.
func ExprString(e Expression) string {
	switch expr := e.(type) {
	case *IntLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *BoolLiteral:
		return strconv.FormatBool(expr.Value)
	case *StringLiteral:
		return strconv.Quote(expr.Value)
	case *Var:
		return expr.Name
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", ExprString(expr.Left), OpString(expr.Op), ExprString(expr.Right))
	case *Unary:
		return fmt.Sprintf("(%s%s)", OpString(expr.Op), ExprString(expr.Operand))
	case *Call:
		var args []string
		for _, arg := range expr.Arguments {
			args = append(args, ExprString(arg))
		}
		return fmt.Sprintf("%s(%s)", expr.Function.Name, strings.Join(args, ", "))
	case *Field:
		return fmt.Sprintf("%s.%s", ExprString(expr.Of), expr.Ident.Name)
	case *Index:
		return fmt.Sprintf("%s[%s]", ExprString(expr.Of), ExprString(expr.Index))
	case *ArrayLiteral:
		var elems []string
		for _, elem := range expr.Elements {
			elems = append(elems, ExprString(elem))
		}
		if expr.Fill {
			elems = append(elems, "..")
		}
		return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
	case *StructLiteral:
		var fields []string
		for _, field := range expr.Fields {
			fields = append(fields, fmt.Sprintf("%s: %s", field.Ident.Name, ExprString(field.Value)))
		}
		return fmt.Sprintf("%s { %s }", expr.Ident.Name, strings.Join(fields, ", "))
	case nil:
		return ""
	}
	return fmt.Sprintf("%T", e)
}
