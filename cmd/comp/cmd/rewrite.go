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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/fatih/color"
	"github.com/rogpeppe/go-internal/diff"
	"github.com/spf13/cobra"

	"cuelabs.dev/go/comp/tools/rewrite"
)

func newRewriteCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite [-w | -d | --check] files...",
		Short: "expand the comprehensions in CUE files",
		Long: `Rewrite replaces each comprehension invocation in the given files with
the equivalent CUE list comprehension and prints the result.

An invocation is the invocation name, by default comp, immediately followed
by ![ and the comprehension, and closed by ]:

	ids: comp![u.id for u in users if u.active]

Invocations may be nested. The files are processed in parallel; errors
in one file do not prevent the others from being rewritten.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: mkRunE(c, runRewrite),
	}
	cmd.Flags().BoolP(string(flagWrite), "w", false,
		"write the result to the source files instead of stdout")
	cmd.Flags().BoolP(string(flagDiff), "d", false,
		"print diffs instead of the rewritten files")
	cmd.Flags().Bool(string(flagCheck), false,
		"list the files that would change and exit with non-zero status if there are any")
	addRewriteFlags(cmd.Flags())
	return cmd
}

func runRewrite(cmd *Command, args []string) error {
	write := flagWrite.Bool(cmd)
	showDiff := flagDiff.Bool(cmd)
	check := flagCheck.Bool(cmd)
	if n := countTrue(write, showDiff, check); n > 1 {
		exitOnErr(cmd, errors.Newf(token.NoPos, "only one of --write, --diff and --check may be given"), true)
	}

	results, err := rewrite.Files(cmd.Context(), args, rewriteConfig(cmd))
	exitOnErr(cmd, err, true)

	stdout := cmd.OutOrStdout()
	var changed []string
	for _, r := range results {
		if r.Err != nil {
			exitOnErr(cmd, r.Err, false)
			continue
		}
		if r.Changed {
			changed = append(changed, r.Filename)
		}
		switch {
		case check:

		case showDiff:
			if r.Changed {
				printDiff(stdout, r)
			}

		case write:
			if !r.Changed {
				continue
			}
			err := writeFile(r.Filename, r.Output)
			exitOnErr(cmd, err, false)
			if err == nil {
				verbosef(cmd, "rewrote %s", r.Filename)
			}

		default:
			_, _ = stdout.Write(r.Output)
		}
	}

	if check && len(changed) > 0 {
		cwd, _ := os.Getwd()
		for _, f := range changed {
			relPath, err := filepath.Rel(cwd, f)
			if err != nil {
				relPath = f
			}
			fmt.Fprintln(stdout, relPath)
		}
		os.Exit(1)
	}
	return nil
}

func countTrue(bs ...bool) (n int) {
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// writeFile replaces the contents of filename, keeping its permissions.
func writeFile(filename string, data []byte) error {
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, info.Mode().Perm())
}

var (
	diffHeader  = color.New(color.Bold)
	diffHunk    = color.New(color.FgCyan)
	diffRemoved = color.New(color.FgRed)
	diffAdded   = color.New(color.FgGreen)
)

// printDiff writes a unified diff of the rewrite in r. Lines are colored
// when writing to a terminal.
func printDiff(w io.Writer, r rewrite.Result) {
	d := diff.Diff(r.Filename+".orig", r.Input, r.Filename, r.Output)
	for _, line := range bytes.SplitAfter(d, []byte("\n")) {
		var c *color.Color
		switch {
		case bytes.HasPrefix(line, []byte("diff ")),
			bytes.HasPrefix(line, []byte("---")),
			bytes.HasPrefix(line, []byte("+++")):
			c = diffHeader
		case bytes.HasPrefix(line, []byte("@@")):
			c = diffHunk
		case bytes.HasPrefix(line, []byte("-")):
			c = diffRemoved
		case bytes.HasPrefix(line, []byte("+")):
			c = diffAdded
		}
		if c == nil {
			_, _ = w.Write(line)
			continue
		}
		text := bytes.TrimSuffix(line, []byte("\n"))
		c.Fprint(w, string(text))
		if len(text) < len(line) {
			io.WriteString(w, "\n")
		}
	}
}
