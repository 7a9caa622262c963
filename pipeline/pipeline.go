// Package pipeline drives a program through lexing, parsing, static
// analysis and evaluation, stopping at the first phase that faults.
package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/brace/analyzer"
	"github.com/pontaoski/brace/ast"
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/eval"
	"github.com/pontaoski/brace/lexer"
	"github.com/pontaoski/brace/parser"
	"github.com/pontaoski/brace/runtime"
	"github.com/pontaoski/brace/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/brace", "pipeline")

const DefaultEntry = "main"

// Source is one named program text.
type Source struct {
	Name string
	Text string
}

type Options struct {
	// Entry is the function to run, DefaultEntry when empty.
	Entry        string
	MaxCallDepth int
	// Out also receives print output as it happens, if set.
	Out io.Writer
}

// Result is everything a run produced. Output holds whatever was printed
// before a fault, too.
type Result struct {
	Output string
	Value  runtime.Value
	// Fault is the first fault, Faults all of them from the failing phase.
	Fault  *errors.Fault
	Faults errors.Faults
	// Err is set for failures that are not faults of the program.
	Err error
}

// Failed reports whether the run stopped early.
func (r Result) Failed() bool {
	return r.Fault != nil || r.Err != nil
}

func (r *Result) fail(err error) {
	if faults, ok := errors.AsFaults(err); ok {
		r.Faults = faults
		r.Fault = faults[0]
		return
	}
	r.Err = err
}

// Tokens lexes src.
func Tokens(src Source) ([]types.Token, error) {
	return lexer.Tokenize(strings.NewReader(src.Text), src.Name)
}

// Load parses every source into one program. Declarations from all files
// share one namespace.
func Load(sources ...Source) (*ast.Program, error) {
	prog := &ast.Program{}
	for _, src := range sources {
		toks, err := Tokens(src)
		if err != nil {
			return nil, err
		}
		plog.Debugf("lexed %s: %d tokens", src.Name, len(toks))

		part, err := parser.Parse(toks)
		if err != nil {
			return nil, err
		}
		prog.Toplevels = append(prog.Toplevels, part.Toplevels...)
	}
	return prog, nil
}

// Check loads and statically analyses sources without running anything.
func Check(sources ...Source) (*ast.Program, error) {
	prog, err := Load(sources...)
	if err != nil {
		return nil, err
	}
	return analyzer.Analyze(prog)
}

func Run(ctx context.Context, src Source, opts Options) Result {
	return RunAll(ctx, []Source{src}, opts)
}

// RunAll checks sources and, if they are sound, executes the entry
// function.
func RunAll(ctx context.Context, sources []Source, opts Options) (res Result) {
	prog, err := Check(sources...)
	if err != nil {
		res.fail(err)
		return
	}

	entry := opts.Entry
	if entry == "" {
		entry = DefaultEntry
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if opts.Out != nil {
		out = io.MultiWriter(&buf, opts.Out)
	}

	interp := eval.New(out)
	if opts.MaxCallDepth > 0 {
		interp.MaxCallDepth = opts.MaxCallDepth
	}

	plog.Debugf("running %s", entry)
	outcome, err := interp.Execute(ctx, prog, entry)
	res.Output = buf.String()
	if err != nil {
		if _, ok := errors.AsFaults(err); !ok {
			err = tracerr.Wrap(err)
		}
		res.fail(err)
		return
	}
	res.Value = outcome.Value
	return
}
