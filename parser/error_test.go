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

// This file implements a test harness for parse errors. Expected errors are
// indicated in the test sources by putting a comment of the form
// /* ERROR "rx" */ immediately following the offending token. The harness
// verifies that an error matching the regular expression rx is reported at
// the position of that token.

package parser

import (
	"regexp"
	"testing"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/scanner"
	"cuelang.org/go/cue/token"
)

var errRx = regexp.MustCompile(`^/\* *ERROR *"([^"]*)" *\*/$`)

// expectedErrors returns the regular expressions of the ERROR comments in
// src by the offset of the token preceding them.
func expectedErrors(src []byte) map[int]string {
	errs := make(map[int]string)

	var s scanner.Scanner
	s.Init(token.NewFile("", -1, len(src)), src, nil, scanner.ScanComments)
	prev := -1
	for {
		pos, tok, lit := s.Scan()
		switch tok {
		case token.EOF:
			return errs
		case token.COMMENT:
			if m := errRx.FindStringSubmatch(lit); len(m) == 2 {
				errs[prev] = m[1]
			}
		case token.COMMA:
			if lit == "," {
				prev = pos.Offset()
			}
		default:
			prev = pos.Offset()
		}
	}
}

var errorTests = []struct {
	name string
	kind ErrorKind
	src  string
}{{
	name: "MissingIn",
	kind: MissingKeyword,
	src:  `x for x [ /* ERROR "expected 'in', found '\['" */ 1, 2, 3]`,
}, {
	name: "MissingFor",
	kind: MissingKeyword,
	src:  `x, /* ERROR "expected 'for', found ','" */ y`,
}, {
	name: "TrailingTokens",
	kind: MissingKeyword,
	src:  `x for x in y in /* ERROR "expected 'for', 'if' or end of comprehension, found 'in'" */ z`,
}, {
	name: "MissingMapping",
	kind: MalformedSubExpression,
	src:  `for /* ERROR "invalid mapping expression: expected expression, found 'for'" */ x in y`,
}, {
	name: "MalformedIterable",
	kind: MalformedSubExpression,
	src:  `x for x in (1 + ) /* ERROR "invalid iterable expression: expected operand" */ if y`,
}, {
	name: "EmptyCondition",
	kind: MalformedSubExpression,
	src:  `x for x in y if a if for /* ERROR "invalid condition expression: expected expression, found 'for'" */ z in w`,
}, {
	name: "MissingPattern",
	kind: MalformedPattern,
	src:  `x for in /* ERROR "invalid pattern: expected pattern, found 'in'" */ y`,
}, {
	name: "AlternativePattern",
	kind: MalformedPattern,
	src:  `x for x | /* ERROR "invalid pattern: alternative patterns are not supported" */ y in z`,
}, {
	name: "SecondClause",
	kind: MissingKeyword,
	src:  `x for x in a for y if /* ERROR "expected 'in', found 'if'" */ b`,
}}

func TestErrors(t *testing.T) {
	for _, tc := range errorTests {
		t.Run(tc.name, func(t *testing.T) {
			src := []byte(tc.src)
			_, err := ParseSource(tc.name+".cue", src)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := KindOf(err); got != tc.kind {
				t.Errorf("got kind %v; want %v", got, tc.kind)
			}

			expected := expectedErrors(src)
			for _, e := range errors.Errors(err) {
				off := e.Position().Offset()
				rx, ok := expected[off]
				if !ok {
					t.Errorf("%s: unexpected error: %q", e.Position(), e.Error())
					continue
				}
				if !regexp.MustCompile(rx).MatchString(e.Error()) {
					t.Errorf("%s: %q does not match %q", e.Position(), e.Error(), rx)
				}
				delete(expected, off)
			}
			for off, rx := range expected {
				t.Errorf("offset %d: error %q not reported", off, rx)
			}
		})
	}
}
