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
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cuelabs.dev/go/comp"
	"cuelabs.dev/go/comp/internal/compdebug"
	"cuelabs.dev/go/comp/tools/rewrite"
)

var inTest = false

func getLang() language.Tag {
	loc := os.Getenv("LC_ALL")
	if loc == "" {
		loc = os.Getenv("LANG")
	}
	loc = strings.Split(loc, ".")[0]
	return language.Make(loc)
}

func exitOnErr(cmd *Command, err error, fatal bool) {
	if err == nil {
		return
	}

	// Link x/text as our localizer.
	p := message.NewPrinter(getLang())
	format := func(w io.Writer, format string, args ...interface{}) {
		p.Fprintf(w, format, args...)
	}

	cwd, _ := os.Getwd()

	w := &bytes.Buffer{}
	errors.Print(w, err, &errors.Config{
		Format:  format,
		Cwd:     cwd,
		ToSlash: inTest,
	})

	b := w.Bytes()
	_, _ = cmd.Stderr().Write(b)
	if fatal {
		exit()
	}
}

// verbosef reports progress if the verbose flag is set. Progress is not
// an error and does not affect the exit code.
func verbosef(cmd *Command, format string, args ...interface{}) {
	if !flagVerbose.Bool(cmd) {
		return
	}
	fmt.Fprintf(cmd.OutOrStderr(), format+"\n", args...)
}

// expandConfig returns the configuration for expanding comprehensions,
// logging as configured by COMP_DEBUG.
func expandConfig(cmd *Command) *comp.Config {
	err := compdebug.Init()
	exitOnErr(cmd, err, true)
	cfg := &comp.Config{Logger: compdebug.Logger()}
	if f := cmd.Flags().Lookup(string(flagPrefix)); f != nil {
		cfg.TempPrefix = f.Value.String()
	}
	return cfg
}

func rewriteConfig(cmd *Command) *rewrite.Config {
	cfg := &rewrite.Config{
		Name:   flagInvocation.String(cmd),
		Expand: expandConfig(cmd),
	}
	if cmd.Flags().Lookup(string(flagJobs)) != nil {
		cfg.Jobs = flagJobs.Int(cmd)
	}
	return cfg
}

// readStdin reads all of the command's input. It fails if the input is
// an interactive terminal, as comp never prompts.
func readStdin(cmd *Command) ([]byte, error) {
	r := cmd.InOrStdin()
	if f, ok := r.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil, errors.Newf(token.NoPos, "no input given and stdin is a terminal")
	}
	return io.ReadAll(r)
}
