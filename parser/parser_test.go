package parser

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/stretchr/testify/require"

	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseSource(strings.NewReader(src), "test.br")
	require.NoError(t, err)
	return prog
}

func parseFault(t *testing.T, src string) *errors.Fault {
	t.Helper()
	_, err := ParseSource(strings.NewReader(src), "test.br")
	require.Error(t, err)
	faults, ok := errors.AsFaults(err)
	require.True(t, ok, "not a fault: %v", err)
	require.Len(t, faults, 1)
	require.Equal(t, errors.Parse, faults[0].Phase)
	return faults[0]
}

func body(t *testing.T, prog *ast.Program, name string) []ast.Statement {
	t.Helper()
	fn, ok := prog.Func(name)
	require.True(t, ok, "no function %s", name)
	return fn.Body.Statements
}

func TestParseDeclarations(t *testing.T) {
	prog := parse(t, `
struct Rectangle {
  x: int,
  y: int
}

fn area(r: Rectangle, scale: int = 1) -> int {
  return r.x * r.y * scale;
}

main() -> {
  print(area(Rectangle { x: 2, y: 3 }));
}
`)
	require.Len(t, prog.Toplevels, 3)

	st, ok := prog.Struct("Rectangle")
	require.True(t, ok)
	require.Equal(t, "struct Rectangle { x: int, y: int }", st.String())

	fn, ok := prog.Func("area")
	require.True(t, ok)
	require.Equal(t, "fn area(r: Rectangle, scale: int = 1) -> int", fn.String())
	require.Equal(t, 1, fn.Required())

	main, ok := prog.Func("main")
	require.True(t, ok)
	require.Nil(t, main.Returns)
}

func TestParsePrecedence(t *testing.T) {
	prog := parse(t, `fn f() -> {
  x: bool = 1 + 2 * 3 < 10 && !false || a.b[2] % 4 == -1;
}`)
	decl := body(t, prog, "f")[0].(*ast.Declaration)
	require.Equal(t,
		"((((1 + (2 * 3)) < 10) && (!false)) || ((a.b[2] % 4) == (-1)))",
		ast.ExprString(decl.Value),
		repr.String(decl.Value),
	)
}

func TestParseStatements(t *testing.T) {
	prog := parse(t, `fn f() -> {
  for i: int = 0, i < 3, i++ {
    continue;
  }
  for (j: int = 0; j < 3; j += 1) {
    break;
  }
  while true {
    n--;
  }
  if a {
  } elif b {
  } else if c {
  } else {
    return;
  }
  arr[0] = 5;
  s.x -= 1;
  {
    inner: [int*3] = [0, ..];
  }
}`)
	stmts := body(t, prog, "f")
	require.Len(t, stmts, 7)

	loop := stmts[0].(*ast.For)
	require.IsType(t, &ast.Declaration{}, loop.Init)
	require.IsType(t, &ast.IncDec{}, loop.Post)
	require.IsType(t, &ast.Continue{}, loop.Body.Statements[0])

	paren := stmts[1].(*ast.For)
	require.Equal(t, types.PLUSEQUALS, paren.Post.(*ast.Assignment).Op)

	require.IsType(t, &ast.While{}, stmts[2])

	chain := stmts[3].(*ast.If)
	elif := chain.Else.(*ast.If)
	require.Equal(t, "b", ast.ExprString(elif.Condition))
	elseIf := elif.Else.(*ast.If)
	require.Equal(t, "c", ast.ExprString(elseIf.Condition))
	require.IsType(t, &ast.Block{}, elseIf.Else)

	require.IsType(t, &ast.Index{}, stmts[4].(*ast.Assignment).To)
	require.Equal(t, types.MINUSEQUALS, stmts[5].(*ast.Assignment).Op)

	inner := stmts[6].(*ast.Block).Statements[0].(*ast.Declaration)
	lit := inner.Value.(*ast.ArrayLiteral)
	require.True(t, lit.Fill)
	require.Len(t, lit.Elements, 1)
	require.Equal(t, "[int*3]", inner.Kind.String())
}

func TestStructLiteralInCondition(t *testing.T) {
	prog := parse(t, `fn f() -> {
  if p == (Point { x: 1 }) {
  }
  if ok {
  }
}`)
	stmts := body(t, prog, "f")
	cond := stmts[0].(*ast.If).Condition.(*ast.Binary)
	require.IsType(t, &ast.StructLiteral{}, cond.Right)
	require.IsType(t, &ast.Var{}, stmts[1].(*ast.If).Condition)
}

func TestParseFaults(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind errors.Kind
		line int
	}{
		{"array return type", "nope2() -> [int*2] {\n  return [1,2];\n}", errors.ArrayReturnType, 1},
		{"goto", "nope3() -> bool {\n  if false {\n    goto main;\n  }\n}", errors.UnsupportedKeyword, 3},
		{"star equals", "nope5() -> {\n  i:int = 1;\n  i *= 2;\n}", errors.UnsupportedAssignment, 3},
		{"slash equals", "nope5() -> {\n  i /= 2;\n}", errors.UnsupportedAssignment, 2},
		{"partial fill", "nope8() -> {\n  i: [int*10] = [1, 2, .. ];\n}", errors.ArrayArity, 2},
		{"zero length", "f() -> {\n  i: [int*0];\n}", errors.ArrayArity, 2},
		{"huge length", "f() -> {\n  a: [int*9223372036854775807];\n}", errors.ArrayArity, 2},
		{"nested too large", "f() -> {\n  a: [[int*2048]*1024];\n}", errors.ArrayArity, 2},
		{"duplicate field", "struct P {\n  x: int,\n  x: int\n}", errors.DuplicateFieldKind, 3},
		{"duplicate literal field", "f() -> {\n  p: P = P { x: 1, x: 2 };\n}", errors.DuplicateFieldKind, 2},
		{"not assignable", "f() -> {\n  g() = 1;\n}", errors.NotAssignable, 2},
		{"missing semicolon", "f() -> {\n  x: int = 1\n}", errors.UnexpectedToken, 3},
		{"stray top level", "x: int = 1;", errors.UnexpectedToken, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fault := parseFault(t, c.src)
			require.Equal(t, c.kind, fault.Kind, fault.Error())
			require.NotNil(t, fault.Position)
			require.Equal(t, c.line, fault.Position.Line, fault.Error())
		})
	}
}
