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
	"encoding/json"
	"fmt"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/format"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"cuelabs.dev/go/comp/internal/encoding/yaml"
	"cuelabs.dev/go/comp/tools/rewrite"
)

// newEvalCmd creates a new eval command
func newEvalCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [-e expr] [--out cue|json|yaml] files...",
		Short: "rewrite, evaluate and print CUE files",
		Long: `Eval rewrites the comprehension invocations in the given files in memory,
then evaluates and prints the resulting configuration. The files on disk
are not modified.

The --expression flag is used to evaluate an expression within the
configuration, instead of the entire configuration itself.

Examples:

  $ cat <<EOF > foo.cue
  a: comp![x * 10 for x in [1, 2, 3] if x != 2]
  EOF

  $ comp eval foo.cue -e a[1]
  30
`,
		Args: cobra.MinimumNArgs(1),
		RunE: mkRunE(c, runEval),
	}

	cmd.Flags().StringArrayP(string(flagExpression), "e", nil, "evaluate this expression only")
	cmd.Flags().String(string(flagOut), "cue", "output format: cue, json or yaml")
	addRewriteFlags(cmd.Flags())
	return cmd
}

func runEval(cmd *Command, args []string) error {
	out := flagOut.String(cmd)
	switch out {
	case "cue", "json", "yaml":
	default:
		exitOnErr(cmd, errors.Newf(token.NoPos, "unknown output format %q", out), true)
	}

	var exprs []ast.Expr
	for _, s := range flagExpression.StringArray(cmd) {
		e, err := parser.ParseExpr("--expression", s)
		exitOnErr(cmd, err, true)
		exprs = append(exprs, e)
	}

	results, err := rewrite.Files(cmd.Context(), args, rewriteConfig(cmd))
	exitOnErr(cmd, err, true)

	overlay := map[string]load.Source{}
	for _, r := range results {
		if r.Err != nil {
			exitOnErr(cmd, r.Err, false)
			continue
		}
		abs, err := filepath.Abs(r.Filename)
		exitOnErr(cmd, err, true)
		overlay[abs] = load.FromBytes(r.Output)
	}
	if cmd.hasErr {
		exit()
	}
	verbosef(cmd, "rewrote %d files", len(results))

	w := cmd.OutOrStdout()
	ctx := cuecontext.New()
	instances := load.Instances(args, &load.Config{Overlay: overlay})
	for _, inst := range instances {
		if inst.Err != nil {
			exitOnErr(cmd, inst.Err, false)
			continue
		}
		v := ctx.BuildInstance(inst)
		if err := v.Err(); err != nil {
			exitOnErr(cmd, err, false)
			continue
		}
		if len(instances) > 1 {
			fmt.Fprintf(w, "\n// %s\n", inst.Dir)
		}
		if exprs == nil {
			writeValue(cmd, out, v)
		}
		for _, e := range exprs {
			if len(exprs) > 1 {
				fmt.Fprint(w, "// ")
				b, err := format.Node(e)
				writeNode(cmd, b, err)
			}
			x := ctx.BuildExpr(e, cue.Scope(v), cue.InferBuiltins(true))
			if err := x.Err(); err != nil {
				exitOnErr(cmd, err, false)
				continue
			}
			writeValue(cmd, out, x)
		}
	}
	return nil
}

func writeValue(cmd *Command, out string, v cue.Value) {
	switch out {
	case "json":
		b, err := v.MarshalJSON()
		if err != nil {
			exitOnErr(cmd, err, false)
			return
		}
		var buf bytes.Buffer
		_ = json.Indent(&buf, b, "", "    ")
		writeNode(cmd, buf.Bytes(), nil)

	case "yaml":
		b, err := yaml.Value(v)
		if err != nil {
			exitOnErr(cmd, err, false)
			return
		}
		writeNode(cmd, b, nil)

	default:
		b, err := format.Node(getSyntax(v), format.UseSpaces(4), format.TabIndent(false))
		writeNode(cmd, b, err)
	}
}

// writeNode writes b followed by a newline if b does not end in one.
// format.Node may not write a trailing newline if the output is a
// single-line expression.
func writeNode(cmd *Command, b []byte, err error) {
	if err != nil {
		exitOnErr(cmd, err, false)
		return
	}
	w := cmd.OutOrStdout()
	_, _ = w.Write(b)
	if !bytes.HasSuffix(b, []byte("\n")) {
		_, _ = w.Write([]byte{'\n'})
	}
}

func getSyntax(v cue.Value) ast.Node {
	n := v.Syntax(cue.Final(), cue.Docs(true))
	switch x := n.(type) {
	case *ast.StructLit:
		n = &ast.File{Decls: x.Elts}
	}
	return n
}
