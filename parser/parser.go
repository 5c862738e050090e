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

// Package parser implements a parser for comprehensions of the form
//
//	comprehension := mapping for_if_clause+
//	mapping       := expression
//	for_if_clause := 'for' pattern 'in' expression condition*
//	condition     := 'if' expression
//
// Expressions and patterns are parsed by a SubParser for the host
// language. The parser itself only recognizes the keywords that separate
// them.
package parser

import (
	cueast "cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"cuelabs.dev/go/comp/ast"
	"cuelabs.dev/go/comp/host"
	"cuelabs.dev/go/comp/scanner"
	"cuelabs.dev/go/comp/stream"
)

// A SubParser parses the host-language parts of a comprehension.
//
// On success, the cursor must be positioned immediately after the consumed
// tokens. On failure, the position of the cursor is unspecified.
type SubParser interface {
	// ParseExpr parses a single expression. It must stop before any
	// 'for', 'if' or 'in' keyword that is not nested within brackets.
	ParseExpr(c *stream.Cursor) (cueast.Expr, error)

	// ParsePattern parses exactly one pattern.
	ParsePattern(c *stream.Cursor) (ast.PatternNode, error)
}

// An Option configures the parser.
type Option func(p *parser)

// WithSubParser sets the parser used for expressions and patterns.
// The default parses CUE.
func WithSubParser(sp SubParser) Option {
	return func(p *parser) {
		if sp != nil {
			p.sub = sp
		}
	}
}

// Parse parses the comprehension in s. All tokens of s must be consumed.
// Implicit commas are not removed; use stream.ElideCommas to allow a
// comprehension to span multiple lines.
func Parse(s stream.Stream, opts ...Option) (*ast.Comprehension, error) {
	p := &parser{
		c:   stream.NewCursor(s),
		sub: host.Parser{},
	}
	for _, o := range opts {
		o(p)
	}
	return p.parseComprehension()
}

// ParseSource is like Parse, but scans the comprehension from src first.
func ParseSource(filename string, src []byte, opts ...Option) (*ast.Comprehension, error) {
	s, err := scanner.Scan(filename, src)
	if err != nil {
		return nil, err
	}
	return Parse(stream.ElideCommas(s), opts...)
}

type parser struct {
	c   *stream.Cursor
	sub SubParser
}

func (p *parser) parseComprehension() (*ast.Comprehension, error) {
	x, err := p.parseExpr("mapping")
	if err != nil {
		return nil, err
	}
	c := &ast.Comprehension{Mapping: &ast.Mapping{Expr: x}}

	for {
		clause, err := p.parseForIfClause()
		if err != nil {
			return nil, err
		}
		c.Clauses = append(c.Clauses, clause)

		if p.c.Peek().Tok != token.FOR {
			break
		}
	}

	if t := p.c.Peek(); !p.c.AtEOF() {
		return nil, newError(MissingKeyword, t.Pos, nil,
			"expected 'for', 'if' or end of comprehension, found %s", t.Describe())
	}
	return c, nil
}

func (p *parser) parseForIfClause() (*ast.ForIfClause, error) {
	forPos, err := p.expect(token.FOR)
	if err != nil {
		return nil, err
	}
	pattern, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	inPos, err := p.expect(token.IN)
	if err != nil {
		return nil, err
	}
	src, err := p.parseExpr("iterable")
	if err != nil {
		return nil, err
	}
	clause := &ast.ForIfClause{
		For:     forPos,
		Pattern: pattern,
		In:      inPos,
		Source:  src,
	}

	// Conditions are optional. An attempt that fails on the leading 'if'
	// leaves the cursor where it started and ends the list. Any other
	// failure is reported.
	for {
		m := p.c.Mark()
		cond, err := p.parseCondition()
		if err != nil {
			if KindOf(err) != MissingKeyword {
				return nil, err
			}
			p.c.Reset(m)
			break
		}
		clause.Conditions = append(clause.Conditions, cond)
	}
	return clause, nil
}

func (p *parser) parseCondition() (*ast.Condition, error) {
	ifPos, err := p.expect(token.IF)
	if err != nil {
		return nil, err
	}
	x, err := p.parseExpr("condition")
	if err != nil {
		return nil, err
	}
	return &ast.Condition{If: ifPos, Expr: x}, nil
}

func (p *parser) parsePattern() (*ast.Pattern, error) {
	start := p.c.Pos()
	n, err := p.sub.ParsePattern(p.c)
	if err != nil {
		return nil, newError(MalformedPattern, errPos(err, start), err, "invalid pattern")
	}
	return &ast.Pattern{Node: n}, nil
}

func (p *parser) parseExpr(what string) (cueast.Expr, error) {
	start := p.c.Pos()
	x, err := p.sub.ParseExpr(p.c)
	if err != nil {
		return nil, newError(MalformedSubExpression, errPos(err, start), err, "invalid %s expression", what)
	}
	return x, nil
}

// expect consumes the keyword tok.
func (p *parser) expect(tok token.Token) (token.Pos, error) {
	t := p.c.Next()
	if t.Tok != tok {
		return token.NoPos, newError(MissingKeyword, t.Pos, nil, "expected '%s', found %s", tok, t.Describe())
	}
	return t.Pos, nil
}

// errPos returns the position reported by err, or pos if err has none.
func errPos(err error, pos token.Pos) token.Pos {
	if positions := errors.Positions(err); len(positions) > 0 && positions[0].IsValid() {
		return positions[0]
	}
	return pos
}
