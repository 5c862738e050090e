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

// Package host parses the CUE expressions and patterns embedded in a
// comprehension.
//
// Expressions are handed to the CUE parser. Patterns have no counterpart
// in CUE and are parsed here, using the shapes of CUE list and struct
// literals.
package host

import (
	"sort"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"

	"cuelabs.dev/go/comp/stream"
)

// Parser parses CUE expressions and patterns from a token stream.
// The zero value is ready to use.
type Parser struct {
	// ParserOptions are passed to the CUE parser for each expression.
	ParserOptions []parser.Option
}

// ParseExpr parses the longest run of tokens that is not interrupted by a
// 'for', 'if', 'in' or 'let' keyword, or a comma, outside of any brackets.
// The run also ends at a closing bracket without a matching opening one.
func (p Parser) ParseExpr(c *stream.Cursor) (ast.Expr, error) {
	m := c.Mark()
	depth := 0
loop:
	for !c.AtEOF() {
		t := c.Peek()
		if depth == 0 {
			switch t.Tok {
			case token.FOR, token.IF, token.IN, token.LET, token.COMMA:
				break loop
			}
		}
		n := t.Nesting()
		if depth+n < 0 {
			break
		}
		depth += n
		c.Next()
	}

	toks := c.Since(m)
	end := c.Peek()
	if len(toks) == 0 {
		return nil, errors.Newf(end.Pos, "expected expression, found %s", end.Describe())
	}

	src, offsets := renderLine(toks)
	filename := toks[0].Pos.Filename()
	x, err := parser.ParseExpr(filename, src, p.ParserOptions...)
	if err != nil {
		return nil, relocate(err, toks, offsets, end.Pos)
	}
	return x, nil
}

// renderLine renders toks on a single line and reports the offset of each
// token in the result. Tokens that were adjacent in the source remain
// adjacent.
func renderLine(toks stream.Stream) (string, []int) {
	var b strings.Builder
	offsets := make([]int, len(toks))
	for i, t := range toks {
		if i > 0 && t.Pos.RelPos() != token.NoSpace {
			b.WriteByte(' ')
		}
		offsets[i] = b.Len()
		b.WriteString(lineText(t))
	}
	return b.String(), offsets
}

// lineText returns the text of t on a single line. Line breaks that
// separate elements within brackets become explicit commas.
func lineText(t stream.Token) string {
	if t.IsImplicitComma() {
		return ","
	}
	return t.Text()
}

// relocate converts the first error reported for a rendered expression
// into an error positioned at the original tokens. Positions past the end
// of the expression are reported at end.
func relocate(err error, toks stream.Stream, offsets []int, end token.Pos) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return errors.Newf(end, "invalid expression")
	}
	e := errs[0]
	pos := end
	if p := e.Position(); p.IsValid() {
		pos = mapOffset(p.Offset(), toks, offsets, end)
	}
	format, args := e.Msg()
	return errors.Newf(pos, format, args...)
}

func mapOffset(off int, toks stream.Stream, offsets []int, end token.Pos) token.Pos {
	i := sort.Search(len(offsets), func(i int) bool { return offsets[i] > off }) - 1
	if i < 0 {
		return toks[0].Pos
	}
	t := toks[i]
	delta := off - offsets[i]
	if delta >= len(lineText(t)) {
		if i == len(toks)-1 {
			return end
		}
		return toks[i+1].Pos
	}
	if delta == 0 || !t.Pos.IsValid() {
		return t.Pos
	}
	return t.Pos.Add(delta)
}
