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

package host_test

import (
	"fmt"
	"strings"
	"testing"

	cueast "cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/format"
	"cuelang.org/go/cue/token"
	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/kr/pretty"

	"cuelabs.dev/go/comp/ast"
	"cuelabs.dev/go/comp/host"
	"cuelabs.dev/go/comp/scanner"
	"cuelabs.dev/go/comp/stream"
)

func cursor(t *testing.T, src string) *stream.Cursor {
	t.Helper()
	s, err := scanner.ScanString("test.cue", src)
	qt.Assert(t, qt.IsNil(err))
	return stream.NewCursor(stream.ElideCommas(s))
}

func TestParseExpr(t *testing.T) {
	testCases := []struct {
		in   string
		want string
		rest string // remaining tokens
	}{
		{in: "x", want: "x"},
		{in: "x * x for x in y", want: "x * x", rest: "for x in y"},
		{in: "mod(x, 2) == 0 if y", want: "mod(x, 2) == 0", rest: "if y"},
		{in: "[for y in x {y}] in z", want: "[for y in x {y}]", rest: "in z"},
		{in: `"a\(x)b" for`, want: `"a\(x)b"`, rest: "for"},
		{in: "{a: 1, b: 2}.a let", want: "{a: 1, b: 2}.a", rest: "let"},
		{in: "a.b[0], c", want: "a.b[0]", rest: ", c"},
		{in: "x) y", want: "x", rest: ") y"},
		{in: "[1, 2]", want: "[1, 2]"},
		{in: "-x", want: "-x"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			c := cursor(t, tc.in)
			x, err := host.Parser{}.ParseExpr(c)
			qt.Assert(t, qt.IsNil(err))

			b, err := format.Node(x)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(strings.Join(strings.Fields(string(b)), " "), strings.Join(strings.Fields(tc.want), " ")))

			var rest stream.Stream
			for !c.AtEOF() {
				rest = append(rest, c.Next())
			}
			qt.Assert(t, qt.Equals(stream.Render(rest), tc.rest))
		})
	}
}

// Line breaks between the elements of a literal are kept as commas.
func TestParseExprMultiline(t *testing.T) {
	c := cursor(t, "{\n\ta: 1\n\tb: [\n\t\t2\n\t\t3\n\t]\n} for")
	x, err := host.Parser{}.ParseExpr(c)
	qt.Assert(t, qt.IsNil(err))
	s, ok := x.(*cueast.StructLit)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(s.Elts, 2))
	l := s.Elts[1].(*cueast.Field).Value.(*cueast.ListLit)
	qt.Assert(t, qt.HasLen(l.Elts, 2))
	qt.Assert(t, qt.Equals(c.Peek().Tok, token.FOR))
}

func TestParseExprErrors(t *testing.T) {
	testCases := []struct {
		in  string
		pos string
		err string
	}{
		{in: "for x in y", pos: "test.cue:1:1", err: "expected expression, found 'for'"},
		{in: "", pos: "test.cue:1:1", err: "expected expression, found end of input"},
		{in: "1 + for x", pos: "test.cue:1:5", err: "expected operand.*"},
		{in: "a b", pos: "test.cue:1:3", err: "expected 'EOF', found.*"},
		{in: "f(x,", pos: "test.cue:1:5", err: "expected.*"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			_, err := host.Parser{}.ParseExpr(cursor(t, tc.in))
			qt.Assert(t, qt.IsNotNil(err))
			errs := errors.Errors(err)
			qt.Assert(t, qt.Not(qt.HasLen(errs, 0)))
			qt.Assert(t, qt.Equals(fmt.Sprint(errs[0].Position()), tc.pos))
			qt.Assert(t, qt.ErrorMatches(errs[0], tc.err))
		})
	}
}

func TestParsePattern(t *testing.T) {
	id := func(name string) *ast.Ident { return &ast.Ident{Name: name} }

	testCases := []struct {
		in   string
		want ast.PatternNode
		rest string
	}{{
		in:   "x in y",
		want: id("x"),
		rest: "in y",
	}, {
		in:   "_",
		want: id("_"),
	}, {
		in:   "(x)",
		want: id("x"),
	}, {
		in:   "(x, y) in z",
		want: &ast.ListPattern{Elts: []ast.PatternNode{id("x"), id("y")}, Parens: true},
		rest: "in z",
	}, {
		in:   "(x,)",
		want: &ast.ListPattern{Elts: []ast.PatternNode{id("x")}, Parens: true},
	}, {
		in:   "[]",
		want: &ast.ListPattern{},
	}, {
		in: "[x, [_, z],]",
		want: &ast.ListPattern{Elts: []ast.PatternNode{
			id("x"),
			&ast.ListPattern{Elts: []ast.PatternNode{id("_"), id("z")}},
		}},
	}, {
		in: "[\n\tx,\n\ty\n]",
		want: &ast.ListPattern{Elts: []ast.PatternNode{id("x"), id("y")}},
	}, {
		in: `{a, b: c, "d-e": [f, _]}`,
		want: &ast.StructPattern{Fields: []*ast.FieldPattern{
			{Label: "a", Pattern: id("a")},
			{Label: "b", Pattern: id("c")},
			{Label: "d-e", Quoted: true, Pattern: &ast.ListPattern{
				Elts: []ast.PatternNode{id("f"), id("_")},
			}},
		}},
	}, {
		in:   "k, v in m",
		want: &ast.KeyValuePattern{Key: id("k"), Value: id("v")},
		rest: "in m",
	}, {
		in: "i, {name}",
		want: &ast.KeyValuePattern{Key: id("i"), Value: &ast.StructPattern{
			Fields: []*ast.FieldPattern{{Label: "name", Pattern: id("name")}},
		}},
	}}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			c := cursor(t, tc.in)
			got, err := host.Parser{}.ParsePattern(c)
			qt.Assert(t, qt.IsNil(err))
			if diff := cmp.Diff(tc.want, got, cmpopts.IgnoreTypes(token.NoPos)); diff != "" {
				t.Errorf("patterns differ (-want +got):\n%s\ngot: %# v", diff, pretty.Formatter(got))
			}

			var rest stream.Stream
			for !c.AtEOF() {
				rest = append(rest, c.Next())
			}
			qt.Assert(t, qt.Equals(stream.Render(rest), tc.rest))
		})
	}
}

func TestParsePatternErrors(t *testing.T) {
	testCases := []struct {
		in  string
		pos string
		err string
	}{
		{"x | y", "1:3", "alternative patterns are not supported"},
		{"#x", "1:1", "cannot bind definition #x in pattern"},
		{"__x", "1:1", "identifiers starting with '__' are reserved"},
		{"(x, x)", "1:5", "x bound more than once in pattern"},
		{"k, {k}", "1:5", "k bound more than once in pattern"},
		{"()", "1:2", "expected pattern, found ')'"},
		{"[x, y", "1:6", "expected pattern, found end of input"},
		{"[x y]", "1:4", "expected ',' or ']', found ident y"},
		{"[1]", "1:2", "expected pattern, found int 1"},
		{"in", "1:1", "expected pattern, found 'in'"},
		{`{"a-b"}`, "1:2", `quoted field "a-b" must be followed by ':' and a pattern`},
		{"{a, a: b}", "1:5", "field a matched more than once"},
		{"[a], b", "1:1", "key of a key/value pattern must be an identifier"},
		{"(x y)", "1:4", "expected ',' or '\\)', found ident y"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			_, err := host.Parser{}.ParsePattern(cursor(t, tc.in))
			qt.Assert(t, qt.IsNotNil(err))
			qt.Assert(t, qt.Equals(fmt.Sprint(errors.Positions(err)[0]), "test.cue:"+tc.pos))
			qt.Assert(t, qt.ErrorMatches(err, tc.err))
		})
	}
}
