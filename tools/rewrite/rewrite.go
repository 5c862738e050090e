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

// Package rewrite expands the comprehensions written in CUE files.
//
// A comprehension is written as an invocation of the form
//
//	comp![x * 2 for x in numbers if x > 0]
//
// where the name, the exclamation mark and the opening bracket must not be
// separated by white space. Each invocation is replaced by the equivalent
// CUE list comprehension:
//
//	[for x in numbers if x > 0 {x * 2}]
package rewrite

import (
	"bytes"
	"context"
	"os"
	"runtime"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/format"
	"cuelang.org/go/cue/token"
	"golang.org/x/sync/errgroup"

	"cuelabs.dev/go/comp"
	"cuelabs.dev/go/comp/scanner"
	"cuelabs.dev/go/comp/stream"
)

// DefaultName is the default name of the invocation.
const DefaultName = "comp"

// Config configures a rewrite. A nil *Config selects the defaults.
type Config struct {
	// Name is the name used to invoke comprehension expansion.
	// It defaults to DefaultName.
	Name string

	// NoFormat disables formatting of rewritten files. Expansions are
	// then inserted on a single line where possible, and the
	// surrounding text is left untouched.
	NoFormat bool

	// Jobs limits the number of files rewritten concurrently by Files.
	// It defaults to GOMAXPROCS.
	Jobs int

	// Expand configures each expansion.
	Expand *comp.Config
}

func (c *Config) name() string {
	if c == nil || c.Name == "" {
		return DefaultName
	}
	return c.Name
}

// Source rewrites all invocations in src and returns the resulting
// source. Nested invocations are expanded before the invocation that
// contains them.
//
// Errors for all invocations in src are reported, each at its own
// position; src is not rewritten if there is any error. If src contains no
// invocations, it is returned as is.
func Source(filename string, src []byte, cfg *Config) ([]byte, error) {
	s, err := scanner.Scan(filename, src)
	if err != nil {
		return nil, err
	}
	r := &rewriter{name: cfg.name()}
	if cfg != nil {
		r.cfg = cfg.Expand
	}

	spans := r.invocations(s)
	if len(spans) == 0 && r.errs == nil {
		return src, nil
	}

	var b bytes.Buffer
	last := 0
	for _, sp := range spans {
		out, ok := r.expand(s, sp)
		if !ok {
			continue
		}
		start := s[sp.name].Pos.Offset()
		end := s[sp.rbrack].End().Offset()
		b.Write(src[last:start])
		b.WriteString(stream.Render(out))
		last = end
	}
	if r.errs != nil {
		return nil, r.errs
	}
	b.Write(src[last:])

	if cfg != nil && cfg.NoFormat {
		return b.Bytes(), nil
	}
	res, err := format.Source(b.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, token.NoPos, "invalid rewrite of %s", filename)
	}
	return res, nil
}

// A span holds the indices of the first and last token of an invocation.
type span struct {
	name   int
	rbrack int
}

type rewriter struct {
	name string
	cfg  *comp.Config
	errs errors.Error
}

func (r *rewriter) errf(pos token.Pos, format string, args ...interface{}) {
	r.errs = errors.Append(r.errs, errors.Newf(pos, format, args...))
}

func (r *rewriter) isInvocation(s stream.Stream, i int) bool {
	if i+2 >= len(s) {
		return false
	}
	name, not, lbrack := s[i], s[i+1], s[i+2]
	return name.Tok == token.IDENT && name.Lit == r.name &&
		not.Tok == token.NOT && not.Pos.RelPos() == token.NoSpace &&
		lbrack.Tok == token.LBRACK && lbrack.Pos.RelPos() == token.NoSpace
}

// invocations reports the outermost invocations in s.
func (r *rewriter) invocations(s stream.Stream) []span {
	var spans []span
	for i := 0; i < len(s); i++ {
		if !r.isInvocation(s, i) {
			continue
		}
		depth := 0
		j := i + 2
		for ; j < len(s); j++ {
			if depth += s[j].Nesting(); depth == 0 {
				break
			}
		}
		switch {
		case j == len(s):
			r.errf(s[i].Pos, "unterminated %s![ invocation", r.name)
			return spans
		case s[j].Tok != token.RBRACK:
			r.errf(s[j].Pos, "unexpected %s in %s![ invocation", s[j].Describe(), r.name)
			return spans
		}
		spans = append(spans, span{name: i, rbrack: j})
		i = j
	}
	return spans
}

// expand returns the expansion of the invocation at sp in s.
func (r *rewriter) expand(s stream.Stream, sp span) (stream.Stream, bool) {
	body := s[sp.name+3 : sp.rbrack]

	var tokens stream.Stream
	last := 0
	ok := true
	for _, nested := range r.invocations(body) {
		out, nok := r.expand(body, nested)
		ok = ok && nok
		tokens = append(tokens, body[last:nested.name]...)
		tokens = append(tokens, out...)
		last = nested.rbrack + 1
	}
	if !ok {
		return nil, false
	}
	tokens = append(tokens, body[last:]...)

	out, err := comp.Expand(stream.ElideCommas(tokens), r.cfg)
	if err != nil {
		r.errs = errors.Append(r.errs, errors.Promote(err, "expansion failed"))
		return nil, false
	}
	if len(out) > 0 {
		out[0].Pos = out[0].Pos.WithRel(s[sp.name].Pos.RelPos())
	}
	return out, true
}

// A Result holds the outcome of rewriting a single file.
type Result struct {
	Filename string

	// Input holds the original contents of the file.
	Input []byte

	// Output holds the rewritten file. It is nil if Err is non-nil.
	Output []byte

	// Changed reports whether Output differs from the original file.
	Changed bool

	Err error
}

// Files rewrites the named files concurrently. Results are returned in the
// order of filenames. Errors reading or rewriting a file are reported in
// its Result; the returned error is only non-nil if ctx was canceled
// before all files were processed.
//
// Files does not write any files.
func Files(ctx context.Context, filenames []string, cfg *Config) ([]Result, error) {
	jobs := runtime.GOMAXPROCS(0)
	if cfg != nil && cfg.Jobs > 0 {
		jobs = cfg.Jobs
	}

	results := make([]Result, len(filenames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, filename := range filenames {
		i, filename := i, filename
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = file(filename, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func file(filename string, cfg *Config) Result {
	res := Result{Filename: filename}
	src, err := os.ReadFile(filename)
	if err != nil {
		res.Err = err
		return res
	}
	res.Input = src
	res.Output, res.Err = Source(filename, src, cfg)
	res.Changed = res.Err == nil && !bytes.Equal(src, res.Output)
	return res
}
