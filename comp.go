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

// Package comp expands comprehensions of the form
//
//	x * y for (x, y) in pairs if x > 0
//
// into CUE list comprehensions. Expansion happens entirely at the source
// level: the expressions of a comprehension are never evaluated.
//
// Expand is the entry point for a build step that has already isolated the
// tokens of a comprehension. The package cuelabs.dev/go/comp/tools/rewrite
// finds and expands comprehensions in CUE files.
package comp

import (
	"log/slog"

	cueast "cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/format"
	"cuelang.org/go/cue/token"

	"cuelabs.dev/go/comp/emit"
	"cuelabs.dev/go/comp/internal/compdebug"
	"cuelabs.dev/go/comp/parser"
	"cuelabs.dev/go/comp/scanner"
	"cuelabs.dev/go/comp/stream"
)

// Config configures an expansion. The zero value and a nil *Config both
// select the defaults.
type Config struct {
	// SubParser parses expressions and patterns. It defaults to a parser
	// for CUE.
	SubParser parser.SubParser

	// TempPrefix is the prefix of the names given to elements matched by
	// destructuring patterns. It defaults to "elem".
	TempPrefix string

	// Logger receives a debug record for each expansion. By default
	// records are discarded.
	Logger *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return compdebug.Discard
	}
	return c.Logger
}

// Expand expands the comprehension in s and returns the tokens of the
// resulting CUE expression. All tokens of s must be part of the
// comprehension.
//
// Expand does not modify s.
func Expand(s stream.Stream, cfg *Config) (stream.Stream, error) {
	x, err := ExpandExpr(s, cfg)
	if err != nil {
		return nil, err
	}
	b, err := format.Node(x)
	if err != nil {
		return nil, errors.Wrapf(err, startPos(s), "cannot format expansion")
	}
	out, err := scanner.Scan(startPos(s).Filename(), b)
	if err != nil {
		return nil, errors.Wrapf(err, startPos(s), "cannot scan expansion")
	}
	return trimEnd(out), nil
}

// ExpandExpr is like Expand, but returns the syntax tree of the CUE
// expression. The tree shares nodes with the expressions parsed from s.
func ExpandExpr(s stream.Stream, cfg *Config) (cueast.Expr, error) {
	var opts []parser.Option
	var emitOpts []emit.Option
	if cfg != nil {
		opts = append(opts, parser.WithSubParser(cfg.SubParser))
		emitOpts = append(emitOpts, emit.TempPrefix(cfg.TempPrefix))
	}

	c, err := parser.Parse(s, opts...)
	if err != nil {
		return nil, err
	}
	cfg.logger().Debug("expanding comprehension",
		"pos", startPos(s),
		"clauses", len(c.Clauses),
		"conditions", c.NumConditions(),
	)
	return emit.Expr(c, emitOpts...), nil
}

// ExpandSource expands the comprehension written in src and returns the
// source of the resulting CUE expression. Unlike Expand, line breaks
// that are not nested in brackets are permitted between the parts of the
// comprehension.
func ExpandSource(filename string, src []byte, cfg *Config) ([]byte, error) {
	s, err := scanner.Scan(filename, src)
	if err != nil {
		return nil, err
	}
	x, err := ExpandExpr(stream.ElideCommas(s), cfg)
	if err != nil {
		return nil, err
	}
	b, err := format.Node(x)
	if err != nil {
		return nil, errors.Wrapf(err, startPos(s), "cannot format expansion")
	}
	return b, nil
}

func startPos(s stream.Stream) token.Pos {
	if len(s) == 0 {
		return token.NoPos
	}
	return s[0].Pos
}

// trimEnd removes the EOF token and trailing line breaks from s.
func trimEnd(s stream.Stream) stream.Stream {
	for n := len(s); n > 0; n = len(s) {
		if t := s[n-1]; t.Tok != token.EOF && !t.IsImplicitComma() {
			break
		}
		s = s[:n-1]
	}
	return s
}
