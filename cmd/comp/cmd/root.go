// Copyright 2024 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue/errors"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

type runFunction func(cmd *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

// newRootCmd creates the base command when called without any subcommands
func newRootCmd() *Command {
	cmd := &cobra.Command{
		Use:   "comp",
		Short: "comp expands comprehensions written in CUE files.",
		Long: `comp expands comprehensions of the form

	mapping for pattern in iterable if condition

into CUE list comprehensions. Within CUE files, a comprehension is written
as an invocation

	evens: comp![x for x in numbers if mod(x, 2) == 0]

which comp rewrites to

	evens: [for x in numbers if mod(x, 2) == 0 {x}]

Patterns may destructure elements:

	(a, b)          [a, b]          a list of two elements
	{name, size: s}                 a struct with fields name and size
	k, v                            the key and value of each element

The COMPFLAGS environment variable holds global flags, split like a shell
command line, that are applied before the command-line arguments.

The COMP_DEBUG environment variable holds a comma-separated list of debug
settings, like COMP_DEBUG=log,loglevel=info. The settings are:

	log       log each expansion to stderr
	loglevel  the minimum level of logged records (default debug)
	json      log records as JSON objects
`,
		SilenceUsage: true,
	}

	c := &Command{Command: cmd, root: cmd}

	subCommands := []*cobra.Command{
		newEvalCmd(c),
		newExpandCmd(c),
		newRewriteCmd(c),
		newVersionCmd(c),
	}

	addGlobalFlags(cmd.PersistentFlags())

	for _, sub := range subCommands {
		cmd.AddCommand(sub)
	}

	return c
}

// MainTest is like Main, runs the comp tool and returns the code for passing to os.Exit.
func MainTest() int {
	inTest = true
	return Main()
}

// Main runs the comp tool and returns the code for passing to os.Exit.
func Main() int {
	err := mainErr(context.Background(), os.Args[1:])
	if err != nil {
		if err != ErrPrintedError {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func mainErr(ctx context.Context, args []string) error {
	cmd, err := New(args)
	if err != nil {
		return err
	}
	return cmd.Run(ctx)
}

type Command struct {
	// The currently active command.
	*cobra.Command

	root *cobra.Command

	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = true
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns a writer that should be used for error messages.
// Writing to it causes the command to exit with a non-zero code.
func (c *Command) Stderr() io.Writer {
	return (*errWriter)(c)
}

func (c *Command) SetOutput(w io.Writer) {
	c.root.SetOut(w)
	c.root.SetErr(w)
}

func (c *Command) SetInput(r io.Reader) {
	c.root.SetIn(r)
}

// ErrPrintedError indicates error messages have been printed to stderr.
var ErrPrintedError = errors.New("terminating because of errors")

func (c *Command) Run(ctx context.Context) (err error) {
	defer recoverError(&err)

	if err := c.root.ExecuteContext(ctx); err != nil {
		return err
	}
	if c.hasErr {
		return ErrPrintedError
	}
	return nil
}

func recoverError(err *error) {
	switch e := recover().(type) {
	case nil:
	case panicError:
		*err = e.Err
	default:
		panic(e)
	}
	// We use panic to escape, instead of os.Exit
}

// New creates the comp command for the given arguments. Flags held by
// COMPFLAGS precede args.
func New(args []string) (cmd *Command, err error) {
	defer recoverError(&err)

	if env := os.Getenv("COMPFLAGS"); env != "" {
		flags, err := shlex.Split(env)
		if err != nil {
			return nil, fmt.Errorf("invalid COMPFLAGS: %v", err)
		}
		args = append(flags, args...)
	}

	cmd = newRootCmd()
	cmd.root.SetArgs(args)
	return cmd, nil
}

type panicError struct {
	Err error
}

func exit() {
	panic(panicError{ErrPrintedError})
}
