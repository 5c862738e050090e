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

package stream_test

import (
	"testing"

	"cuelang.org/go/cue/token"
	"github.com/go-quicktest/qt"

	"cuelabs.dev/go/comp/scanner"
	"cuelabs.dev/go/comp/stream"
)

func scan(t *testing.T, src string) stream.Stream {
	t.Helper()
	s, err := scanner.ScanString("test.cue", src)
	qt.Assert(t, qt.IsNil(err))
	return s
}

func toks(s stream.Stream) []token.Token {
	var a []token.Token
	for _, t := range s {
		a = append(a, t.Tok)
	}
	return a
}

func TestRender(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"x", "x"},
		{"x*x   for x in [1,2,3]", "x*x for x in [1,2,3]"},
		{`"a\(x+1)b" for x in y`, `"a\(x+1)b" for x in y`},
		{"a.b[0]  if   c", "a.b[0] if c"},
		{"[1,\n2]", "[1,\n2]"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			qt.Assert(t, qt.Equals(stream.Render(scan(t, tc.in)), tc.want))
		})
	}
}

func TestElideCommas(t *testing.T) {
	s := scan(t, "x\nfor x in [\n1,\n2,\n]\nif x > 0\n")
	got := stream.ElideCommas(s)
	qt.Assert(t, qt.DeepEquals(toks(got), []token.Token{
		token.IDENT, token.FOR, token.IDENT, token.IN,
		token.LBRACK, token.INT, token.COMMA, token.INT, token.COMMA, token.RBRACK,
		token.IF, token.IDENT, token.GTR, token.INT,
		token.EOF,
	}))

	// The input is left untouched.
	qt.Assert(t, qt.IsTrue(s[1].IsImplicitComma()))
}

func TestNesting(t *testing.T) {
	s := scan(t, `("a\(x)b\(y)c")`)
	depth := 0
	var depths []int
	for _, tok := range s {
		depth += tok.Nesting()
		depths = append(depths, depth)
	}
	// ( "a\( x )b\( y )c" ) , EOF
	qt.Assert(t, qt.DeepEquals(depths, []int{1, 2, 2, 2, 2, 1, 0, 0, 0}))
}

func TestCursor(t *testing.T) {
	s := stream.ElideCommas(scan(t, "a b c"))
	c := stream.NewCursor(s)

	qt.Assert(t, qt.Equals(c.Peek().Lit, "a"))
	m := c.Mark()
	qt.Assert(t, qt.Equals(c.Next().Lit, "a"))
	qt.Assert(t, qt.Equals(c.Next().Lit, "b"))
	qt.Assert(t, qt.Equals(stream.Render(c.Since(m)), "a b"))

	c.Reset(m)
	qt.Assert(t, qt.Equals(c.Peek().Lit, "a"))

	c.Next()
	c.Next()
	c.Next()
	qt.Assert(t, qt.IsTrue(c.AtEOF()))
	qt.Assert(t, qt.Equals(c.Next().Tok, token.EOF))
	qt.Assert(t, qt.Equals(c.Peek().Tok, token.EOF))
	qt.Assert(t, qt.IsTrue(c.AtEOF()))
}

func TestCursorWithoutEOF(t *testing.T) {
	s := scan(t, "abc def")
	c := stream.NewCursor(s[:1])
	c.Next()
	qt.Assert(t, qt.IsTrue(c.AtEOF()))
	eof := c.Peek()
	qt.Assert(t, qt.Equals(eof.Tok, token.EOF))
	qt.Assert(t, qt.Equals(eof.Pos.Offset(), 3))

	empty := stream.NewCursor(nil)
	qt.Assert(t, qt.IsTrue(empty.AtEOF()))
	qt.Assert(t, qt.Equals(empty.Peek().Tok, token.EOF))
}

func TestDescribe(t *testing.T) {
	s := scan(t, "foo [ 3\n")
	qt.Assert(t, qt.Equals(s[0].Describe(), "ident foo"))
	qt.Assert(t, qt.Equals(s[1].Describe(), "'['"))
	qt.Assert(t, qt.Equals(s[2].Describe(), "int 3"))
	qt.Assert(t, qt.Equals(s[len(s)-1].Describe(), "end of input"))
}
