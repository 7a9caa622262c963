package eval

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pontaoski/brace/analyzer"
	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/parser"
	"github.com/pontaoski/brace/runtime"
	"github.com/pontaoski/brace/types"
)

func execute(t *testing.T, src, entry string) (string, Outcome, error) {
	t.Helper()
	prog, err := parser.ParseSource(strings.NewReader(src), "test.br")
	require.NoError(t, err)
	prog, err = analyzer.Analyze(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	interp := New(&out)
	res, err := interp.Execute(context.Background(), prog, entry)
	return out.String(), res, err
}

func requireRuntimeFault(t *testing.T, err error, kind errors.Kind) *errors.Fault {
	t.Helper()
	require.Error(t, err)
	fault, ok := err.(*errors.Fault)
	require.True(t, ok, "expected *errors.Fault, got %T: %v", err, err)
	require.Equal(t, errors.Runtime, fault.Phase)
	require.Equal(t, kind, fault.Kind, fault.Error())
	return fault
}

const fibSource = `
fn fib(n:int = 5, a:int = 1, b:int = 1) -> int {
  if 0 < n {
    return fib(n-1, b, a+b);
  }
  return a+b;
}

fn fib_better(n:int = 5) -> int {
  a: int = 1;
  b: int = 1;
  c: int;

  for i:int = 0, i < n, i++ {
    if a + b < 0 {
      break;
    }
    c = a + b;
    a = b;
    b = c;
  }
  return b;
}

fn main() -> {
  print(fib_better(5));
}

fn defaults() -> int {
  return fib();
}
`

func TestFib(t *testing.T) {
	out, res, err := execute(t, fibSource, "main")
	require.NoError(t, err)
	require.Equal(t, "13\n", out)
	require.Nil(t, res.Value)

	_, res, err = execute(t, fibSource, "defaults")
	require.NoError(t, err)
	require.Equal(t, runtime.IntValue(21), res.Value)
}

func fibonacci(n int) int64 {
	a, b := int64(0), int64(1)
	for ; n > 0; n-- {
		a, b = b, a+b
	}
	return a
}

// fib(n, 1, 1) and fib_better(n + 1) both land on F(n + 3).
func TestFibAgreement(t *testing.T) {
	for _, n := range []int{0, 1, 2, 10, 50, 88} {
		want := fmt.Sprintf("%d\n", fibonacci(n+3))
		for _, call := range []string{
			fmt.Sprintf("fib(%d, 1, 1)", n),
			fmt.Sprintf("fib_better(%d + 1)", n),
		} {
			src := fibSource + fmt.Sprintf("\nfn check() -> {\n  print(%s);\n}\n", call)
			out, _, err := execute(t, src, "check")
			require.NoError(t, err, call)
			require.Equal(t, want, out, call)
		}
	}
}

func TestFibBetterStopsBeforeOverflow(t *testing.T) {
	src := fibSource + "\nfn check() -> int {\n  return fib_better(200);\n}\n"
	_, res, err := execute(t, src, "check")
	require.NoError(t, err)
	require.Equal(t, runtime.IntValue(fibonacci(92)), res.Value)
	require.Equal(t, "7540113804746346429", res.Value.String())
}

// The parser never produces an array this long, so the program is built
// by hand to reach the runtime check.
func TestOversizedDeclaration(t *testing.T) {
	prog := &ast.Program{Toplevels: []ast.TopLevel{
		&ast.Func{
			Ident: ast.Identifier{Name: "main"},
			Body: &ast.Block{Statements: []ast.Statement{
				&ast.Declaration{
					To:   ast.Identifier{Name: "a"},
					Kind: &types.Array{Elem: types.Int, Len: types.MaxArrayLen + 1},
				},
			}},
		},
	}}

	var out bytes.Buffer
	_, err := New(&out).Execute(context.Background(), prog, "main")
	requireRuntimeFault(t, err, errors.ArrayArity)
}

// The analyzer rejects using a call that produces nothing; the interpreter
// still refuses it for programs that skip analysis.
func TestNoValueUnanalyzed(t *testing.T) {
	prog, err := parser.ParseSource(strings.NewReader(`fn nothing() -> {
}
fn main() -> {
  x: int = 1 + nothing();
}`), "test.br")
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = New(&out).Execute(context.Background(), prog, "main")
	fault := requireRuntimeFault(t, err, errors.NoValue)
	require.Equal(t, 4, fault.Position.Line)
}

func TestStructsAreValues(t *testing.T) {
	src := `
struct Rectangle {
  x: int,
  y: int
}

fn rectangle_area(r: Rectangle) -> int {
  return r.x * r.y;
}

fn rectangle_new(x: int, y: int) -> Rectangle {
  r: Rectangle;
  r.x = x;
  r.y = y;
  return r;
}

fn grow(r: Rectangle) -> {
  r.x = 1000;
}

fn main() -> {
  r: Rectangle = rectangle_new(10, 20);
  grow(r);
  s: Rectangle = r;
  s.y = 1;
  print(rectangle_area(r));
  print(s);
}
`
	out, _, err := execute(t, src, "main")
	require.NoError(t, err)
	require.Equal(t, "200\nRectangle { x: 10, y: 1 }\n", out)
}

func TestControlFlow(t *testing.T) {
	src := `
fn classify(n: int) -> str {
  if n < 0 {
    return "negative";
  } elif n == 0 {
    return "zero";
  } else if n < 10 {
    return "small";
  } else {
    return "large";
  }
}

fn main() -> {
  total: int = 0;
  for i: int = 0; i < 10; i++ {
    if i % 2 == 0 {
      continue;
    }
    if i > 7 {
      break;
    }
    total += i;
  }
  print(total);

  n: int = 3;
  while n > 0 {
    n--;
  }
  print(n);
  print(classify(-4) + " " + classify(0) + " " + classify(7) + " " + classify(70));
  print(true && !false || 1 / 0 == 0);
}
`
	out, _, err := execute(t, src, "main")
	require.NoError(t, err)
	require.Equal(t, "16\n0\nnegative zero small large\ntrue\n", out)
}

func TestArrays(t *testing.T) {
	src := `
fn sum(a: [int*4]) -> int {
  total: int = 0;
  for i: int = 0, i < len(a), i++ {
    total += a[i];
  }
  a[0] = 100;
  return total;
}

fn main() -> {
  ones: [int*4] = [1];
  nums: [int*4] = [1, 2, 3, 4];
  print(sum(ones));
  print(sum(nums));
  print(nums);
  grid: [[int*2]*2] = [[0, 0], [0, 0]];
  grid[1][0] = 5;
  print(grid);
  print(len("hello"));
  print(len("héllo"));
}
`
	out, _, err := execute(t, src, "main")
	require.NoError(t, err)
	require.Equal(t, "4\n10\n[1, 2, 3, 4]\n[[0, 0], [5, 0]]\n5\n5\n", out)
}

func TestRuntimeFaults(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		kind  errors.Kind
		line  int
		print string
	}{
		{
			name: "division by zero",
			src: `fn main() -> {
  del:int = 0;
  val:int = 1029301238;
  return val / del;
}`,
			kind: errors.DivisionByZero,
			line: 4,
		},
		{
			name: "closed scope",
			src: `fn main() -> {
  j:int = 1;
  {
    i:int = 2;
  }
  print(j*i);
}`,
			kind: errors.UndefinedIdentifier,
			line: 6,
		},
		{
			name: "undeclared in elif",
			src: `fn main() -> {
  text:str = "yay";
  if text == "y" {
    return false;
  } elif text == yay {
    return false;
  }
  return true;
}`,
			kind: errors.UndefinedIdentifier,
			line: 5,
		},
		{
			name: "index out of range",
			src: `fn main() -> {
  a: [int*2] = [1, 2];
  print(a[2]);
}`,
			kind: errors.IndexOutOfRange,
			line: 3,
		},
		{
			name: "missing return",
			src: `fn f(n: int) -> int {
  if n > 0 {
    return n;
  }
}
fn main() -> {
  print(f(0));
}`,
			kind: errors.MissingReturn,
		},
		{
			name: "stack overflow",
			src: `fn down(n: int) -> int {
  return down(n + 1);
}
fn main() -> {
  down(0);
}`,
			kind: errors.StackOverflow,
		},
		{
			name: "output before fault is kept",
			src: `fn main() -> {
  print("before");
  x: int = 1 % 0;
}`,
			kind:  errors.DivisionByZero,
			line:  3,
			print: "before\n",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, _, err := execute(t, c.src, "main")
			fault := requireRuntimeFault(t, err, c.kind)
			if c.line != 0 {
				require.NotNil(t, fault.Position)
				require.Equal(t, c.line, fault.Position.Line)
			}
			require.Equal(t, c.print, out)
		})
	}
}

func TestMissingEntry(t *testing.T) {
	_, _, err := execute(t, "fn helper() -> {\n}\n", "main")
	requireRuntimeFault(t, err, errors.UndefinedFunction)
}

func TestEntryWithRequiredArguments(t *testing.T) {
	_, _, err := execute(t, "fn main(n: int) -> {\n}\n", "main")
	requireRuntimeFault(t, err, errors.ArityMismatch)
}

func TestCancelled(t *testing.T) {
	prog, err := parser.ParseSource(strings.NewReader("fn main() -> {\n  while true {\n  }\n}\n"), "loop.br")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(nil).Execute(ctx, prog, "main")
	requireRuntimeFault(t, err, errors.Cancelled)
}

func TestMaxCallDepth(t *testing.T) {
	prog, err := parser.ParseSource(strings.NewReader(`
fn count(n: int) -> int {
  if n == 0 {
    return 0;
  }
  return 1 + count(n - 1);
}
fn main() -> int {
  return count(50);
}
`), "depth.br")
	require.NoError(t, err)

	interp := New(nil)
	interp.MaxCallDepth = 20
	_, err = interp.Execute(context.Background(), prog, "main")
	requireRuntimeFault(t, err, errors.StackOverflow)

	interp.MaxCallDepth = 100
	res, err := interp.Execute(context.Background(), prog, "main")
	require.NoError(t, err)
	require.Equal(t, runtime.IntValue(50), res.Value)
	require.Equal(t, 0, interp.Depth())
}
