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
	"fmt"

	"github.com/spf13/cobra"

	"cuelabs.dev/go/comp"
)

func newExpandCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand [comprehension | -]",
		Short: "print the CUE expression for a comprehension",
		Long: `Expand prints the CUE list comprehension equivalent to the given
comprehension. The comprehension is read from standard input if the
argument is - or omitted.

Example:

	$ comp expand 'x * y for (x, y) in pairs if x > 0'
	[for elem in pairs let x = elem[0] let y = elem[1] if x > 0 {
		x * y
	}]

Patterns that are not a single identifier are bound to a temporary
identifier, named after the --prefix flag, from which each bound
identifier is selected.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, runExpand),
	}
	cmd.Flags().StringP(string(flagPrefix), "p", "",
		`prefix of temporary identifiers (default "elem")`)
	return cmd
}

func runExpand(cmd *Command, args []string) error {
	filename := "-"
	var src []byte
	if len(args) == 1 && args[0] != "-" {
		filename = "<arg>"
		src = []byte(args[0])
	} else {
		b, err := readStdin(cmd)
		exitOnErr(cmd, err, true)
		src = b
	}

	b, err := comp.ExpandSource(filename, src, expandConfig(cmd))
	exitOnErr(cmd, err, true)
	verbosef(cmd, "expanded %s", filename)

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
	return nil
}
