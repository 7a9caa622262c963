package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/coreos/pkg/capnslog"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"

	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/pipeline"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/brace", "main")

// sources returns the files named on the command line, or every source
// file in the current directory.
func sources(c *cli.Context) ([]pipeline.Source, error) {
	if c.Args().Present() {
		return pipeline.ReadSources(c.Args().Slice()...)
	}
	return pipeline.ParseDirectory(".")
}

func setupLogging(c *cli.Context) error {
	level, err := capnslog.ParseLevel(strings.ToUpper(c.String("log-level")))
	if err != nil {
		return err
	}
	capnslog.SetFormatter(capnslog.NewPrettyFormatter(os.Stderr, level >= capnslog.DEBUG))
	capnslog.SetGlobalLogLevel(level)
	return nil
}

// report prints err and exits with status 1. Program faults are printed one
// per line; anything else is an internal failure and gets a trace.
func report(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	if faults, ok := errors.AsFaults(err); ok {
		for _, f := range faults {
			fmt.Fprintln(os.Stderr, f.Error())
		}
		os.Exit(1)
	}
	if exit, ok := err.(cli.ExitCoder); ok {
		if msg := exit.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(exit.ExitCode())
	}
	tracerr.PrintSourceColor(err)
	os.Exit(1)
}

func main() {
	app := &cli.App{
		Name:           "brace",
		Usage:          "brace interpreter",
		ExitErrHandler: report,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warning",
				Usage: "one of critical, error, warning, notice, info, debug, trace",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "init a directory",
				ArgsUsage: "<module name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("no module name provided", 1)
					}
					err := pipeline.WriteModuleInfo(".", pipeline.ModuleInfo{
						Package: name,
						Entry:   pipeline.DefaultEntry,
					})
					if err != nil {
						return cli.Exit(fmt.Sprintf("error creating %s: %s", pipeline.ModuleFile, err), 1)
					}
					return nil
				},
			},
			{
				Name:      "run",
				Usage:     "check and run a program",
				ArgsUsage: "[file...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "entry",
						Usage: "function to start from",
					},
					&cli.IntFlag{
						Name:  "max-depth",
						Usage: "maximum call depth",
					},
				},
				Action: func(c *cli.Context) error {
					info, err := pipeline.ReadModuleInfo(".")
					if err != nil {
						return err
					}
					opts := info.Options()
					if c.IsSet("entry") {
						opts.Entry = c.String("entry")
					}
					if c.IsSet("max-depth") {
						opts.MaxCallDepth = c.Int("max-depth")
					}
					opts.Out = os.Stdout

					srcs, err := sources(c)
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
					defer stop()

					res := pipeline.RunAll(ctx, srcs, opts)
					if res.Err != nil {
						return res.Err
					}
					if res.Fault != nil {
						return res.Faults
					}
					if res.Value != nil {
						plog.Debugf("entry returned %s", res.Value)
					}
					return nil
				},
			},
			{
				Name:      "check",
				Usage:     "check a program without running it",
				ArgsUsage: "[file...]",
				Action: func(c *cli.Context) error {
					srcs, err := sources(c)
					if err != nil {
						return err
					}
					_, err = pipeline.Check(srcs...)
					return err
				},
			},
			{
				Name:      "tokens",
				Usage:     "dump the tokens of each file",
				ArgsUsage: "[file...]",
				Action: func(c *cli.Context) error {
					srcs, err := sources(c)
					if err != nil {
						return err
					}
					for _, src := range srcs {
						toks, err := pipeline.Tokens(src)
						if err != nil {
							return err
						}
						repr.Println(toks)
					}
					return nil
				},
			},
			{
				Name:      "ast",
				Usage:     "dump the syntax tree",
				ArgsUsage: "[file...]",
				Action: func(c *cli.Context) error {
					srcs, err := sources(c)
					if err != nil {
						return err
					}
					prog, err := pipeline.Load(srcs...)
					if err != nil {
						return err
					}
					repr.Println(prog)
					return nil
				},
			},
			{
				Name:      "typeinfo",
				Usage:     "dump function and struct signatures",
				ArgsUsage: "[file...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yaml",
						Value: false,
					},
				},
				Action: func(c *cli.Context) error {
					srcs, err := sources(c)
					if err != nil {
						return err
					}
					prog, err := pipeline.Check(srcs...)
					if err != nil {
						return err
					}
					data := pipeline.GetTypeInfo(prog)
					if c.Bool("yaml") {
						out, err := yaml.Marshal(data)
						if err != nil {
							return tracerr.Wrap(err)
						}
						fmt.Print(string(out))
						return nil
					}
					repr.Println(data)
					return nil
				},
			},
		},
	}
	report(nil, app.Run(os.Args))
}
