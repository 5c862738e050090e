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

package scanner

import (
	"fmt"
	"testing"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
)

func TestScan(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		out  []string
	}{{
		name: "Simple",
		in:   "x*x for x in a if x > 0",
		out: []string{
			`IDENT "x"`, `*`, `IDENT "x"`, `for`, `IDENT "x"`, `in`, `IDENT "a"`,
			`if`, `IDENT "x"`, `>`, `INT "0"`, `, "\n"`, `EOF`,
		},
	}, {
		name: "Interpolation",
		in:   `"a\(x)b" for x in y`,
		out: []string{
			`INTERPOLATION "\"a\\("`, `IDENT "x"`, `INTERPOLATION ")b\""`,
			`for`, `IDENT "x"`, `in`, `IDENT "y"`, `, "\n"`, `EOF`,
		},
	}, {
		name: "TwoInterpolations",
		in:   `"\(a)-\(b)"`,
		out: []string{
			`INTERPOLATION "\"\\("`, `IDENT "a"`, `INTERPOLATION ")-\\("`,
			`IDENT "b"`, `INTERPOLATION ")\""`, `, "\n"`, `EOF`,
		},
	}, {
		name: "NestedInterpolation",
		in:   `"a\("b\(x)c")d"`,
		out: []string{
			`INTERPOLATION "\"a\\("`, `INTERPOLATION "\"b\\("`, `IDENT "x"`,
			`INTERPOLATION ")c\""`, `INTERPOLATION ")d\""`, `, "\n"`, `EOF`,
		},
	}, {
		name: "ParensInInterpolation",
		in:   `"\((x+1)*2)"`,
		out: []string{
			`INTERPOLATION "\"\\("`, `(`, `IDENT "x"`, `+`, `INT "1"`, `)`,
			`*`, `INT "2"`, `INTERPOLATION ")\""`, `, "\n"`, `EOF`,
		},
	}, {
		name: "Newlines",
		in:   "x\nfor x in [\n1,\n]",
		out: []string{
			`IDENT "x"`, `, "\n"`, `for`, `IDENT "x"`, `in`,
			`[`, `INT "1"`, `,`, `]`, `, "\n"`, `EOF`,
		},
	}, {
		name: "Comments",
		in:   "x // the mapping\nfor x in y",
		out: []string{
			`IDENT "x"`, `, "\n"`, `for`, `IDENT "x"`, `in`, `IDENT "y"`, `, "\n"`, `EOF`,
		},
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ScanString("test.cue", tc.in)
			qt.Assert(t, qt.IsNil(err))
			var got []string
			for _, tok := range s {
				got = append(got, tok.String())
			}
			if diff := cmp.Diff(tc.out, got); diff != "" {
				t.Errorf("tokens differ (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanPositions(t *testing.T) {
	s, err := ScanString("test.cue", "a  b\nc")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(s[0].Pos.String(), "test.cue:1:1"))
	qt.Assert(t, qt.Equals(s[1].Pos.String(), "test.cue:1:4"))
	qt.Assert(t, qt.Equals(s[1].Pos.RelPos(), token.Blank))
	qt.Assert(t, qt.Equals(s[3].Pos.String(), "test.cue:2:1"))
	qt.Assert(t, qt.Equals(s[3].Pos.RelPos(), token.Newline))
}

func TestScanError(t *testing.T) {
	s, err := ScanString("test.cue", "x for x in \"abc")
	qt.Assert(t, qt.IsNotNil(err))
	errs := errors.Errors(err)
	qt.Assert(t, qt.HasLen(errs, 1))
	qt.Assert(t, qt.Equals(fmt.Sprint(errs[0].Position()), "test.cue:1:12"))
	qt.Assert(t, qt.ErrorMatches(err, "string literal not terminated"))
	qt.Assert(t, qt.Equals(s[len(s)-1].Tok, token.EOF))
}
