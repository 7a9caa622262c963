package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/parser"
)

func analyze(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.ParseSource(strings.NewReader(src), "test.br")
	require.NoError(t, err)
	_, err = Analyze(prog)
	return err
}

func faultKinds(t *testing.T, err error) []errors.Kind {
	t.Helper()
	require.Error(t, err)
	faults, ok := errors.AsFaults(err)
	require.True(t, ok, "not a fault: %v", err)

	var kinds []errors.Kind
	for _, f := range faults {
		require.Equal(t, errors.Static, f.Phase)
		require.NotNil(t, f.Position)
		kinds = append(kinds, f.Kind)
	}
	return kinds
}

func TestAnalyzeAccepts(t *testing.T) {
	cases := map[string]string{
		"fib": `
fn fib(n:int = 5, a:int = 1, b:int = 1) -> int {
  if 0 < n {
    return fib(n-1, b, a+b);
  }
  return a+b;
}
fn main() -> {
  print(fib());
}`,
		"closed scope is left to runtime": `
nope10() -> {
  j:int = 1;
  {
    i:int = 2;
  }
  print(j*i);
}`,
		"untyped function may return a value": `
nope7() -> {
  del:int = 0;
  val:int = 1029301238;
  return val / del;
}`,
		"undeclared name in elif": `
nope4() -> {
  text:str = "yay";
  if text == "y" {
    return false;
  } elif text == yay {
    return false;
  }
  return true;
}`,
		"structs and arrays": `
struct Point {
  x: int,
  y: int
}
struct Shape {
  corners: [Point*4],
  name: str
}
fn main() -> {
  s: Shape = Shape { name: "square" };
  s.corners[0].x = 1;
  s.corners[1] = Point { x: 2, y: 2 };
  s.name += "!";
  grid: [[bool*2]*3] = [[true, false]];
  print(len(s.corners) + len(s.name));
}`,
		"defaults see earlier parameters": `
fn span(from: int, to: int = from + 10) -> int {
  return to - from;
}`,
		"shadowing in nested block": `
fn f() -> {
  x: int = 1;
  {
    x: str = "inner";
  }
}`,
		"calls as statements": "g() -> {\n}\nf() -> {\n  g();\n  print(1);\n}",
	}

	for name, src := range cases {
		src := src
		t.Run(name, func(t *testing.T) {
			require.NoError(t, analyze(t, src))
		})
	}
}

func TestAnalyzeFaults(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []errors.Kind
	}{
		{"nope6", "nope6() -> {\n  i:int = \"lol\";\n}", []errors.Kind{errors.TypeMismatch}},
		{"nope9", "nope9() -> {\n  continue;\n  break;\n}", []errors.Kind{errors.MisplacedLoopControl, errors.MisplacedLoopControl}},
		{"duplicate binding", "f() -> {\n  a: int;\n  a: int;\n}", []errors.Kind{errors.DuplicateBinding}},
		{"duplicate function", "f() -> {\n}\nf() -> {\n}", []errors.Kind{errors.DuplicateDeclaration}},
		{"shadowed builtin", "print() -> {\n}", []errors.Kind{errors.DuplicateDeclaration}},
		{"unknown type", "f(p: Point) -> {\n}", []errors.Kind{errors.UnknownType}},
		{"recursive struct", "struct A {\n  b: B\n}\nstruct B {\n  a: [A*2]\n}", []errors.Kind{errors.RecursiveStruct, errors.RecursiveStruct}},
		{"undefined function", "f() -> {\n  g(1);\n}", []errors.Kind{errors.UndefinedFunction}},
		{"too many arguments", "g(a: int) -> {\n}\nf() -> {\n  g(1, 2);\n}", []errors.Kind{errors.ArityMismatch}},
		{"missing argument", "g(a: int, b: int = 2) -> {\n}\nf() -> {\n  g();\n}", []errors.Kind{errors.ArityMismatch}},
		{"argument type", "g(a: int) -> {\n}\nf() -> {\n  g(true);\n}", []errors.Kind{errors.TypeMismatch}},
		{"default order", "g(a: int = 1, b: int) -> {\n}", []errors.Kind{errors.DefaultOrder}},
		{"bool arithmetic", "f() -> {\n  x: int = true + 1;\n}", []errors.Kind{errors.InvalidOperation}},
		{"condition type", "f() -> {\n  while 1 {\n  }\n}", []errors.Kind{errors.TypeMismatch}},
		{"return type", "f() -> int {\n  return \"one\";\n}", []errors.Kind{errors.TypeMismatch}},
		{"bare return in typed function", "f() -> int {\n  return;\n}", []errors.Kind{errors.TypeMismatch}},
		{"subtract assign on str", "f() -> {\n  s: str;\n  s -= \"x\";\n}", []errors.Kind{errors.InvalidOperation}},
		{"array length", "f() -> {\n  a: [int*3] = [1, 2];\n}", []errors.Kind{errors.ArrayArity}},
		{"fill without length", "f() -> {\n  print([1, ..]);\n}", []errors.Kind{errors.ArrayArity}},
		{"index type", "f() -> {\n  a: [int*3];\n  a[true] = 1;\n}", []errors.Kind{errors.TypeMismatch}},
		{"assign to call result", "g() -> int {\n  return 1;\n}\nf() -> {\n  g().x = 1;\n}", []errors.Kind{errors.NotAssignable, errors.InvalidOperation}},
		{"increment bool", "f() -> {\n  b: bool;\n  b++;\n}", []errors.Kind{errors.InvalidOperation}},
		{"print as value", "f() -> {\n  x: int = print(1);\n}", []errors.Kind{errors.NoValue}},
		{"print of print", "f() -> {\n  print(print(1));\n}", []errors.Kind{errors.NoValue}},
		{"nothing as operand", "g() -> {\n}\nf() -> {\n  x: int = 1 + g();\n}", []errors.Kind{errors.NoValue}},
		{"loop control inside loop only", "f() -> {\n  while true {\n    break;\n  }\n  continue;\n}", []errors.Kind{errors.MisplacedLoopControl}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, faultKinds(t, analyze(t, c.src)))
		})
	}
}
