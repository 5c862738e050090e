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

// Package scanner converts CUE source into token streams.
package scanner

import (
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/scanner"
	"cuelang.org/go/cue/token"

	"cuelabs.dev/go/comp/stream"
)

// Scan tokenizes src. The returned stream ends with an EOF token and
// includes the commas inserted at line breaks. Comments are dropped.
//
// Each string interpolation is returned as alternating INTERPOLATION
// pieces and the tokens of the interpolated expressions, so that
// "a\(x)b" yields the pieces `"a\(` and `)b"` around the token x.
//
// Lexical errors are returned as a list of errors; the stream is returned
// as well, covering as much of src as could be scanned.
func Scan(filename string, src []byte) (stream.Stream, error) {
	var errs errors.Error
	eh := func(pos token.Pos, msg string, args []interface{}) {
		errs = errors.Append(errs, errors.Newf(pos, msg, args...))
	}

	var sc scanner.Scanner
	sc.Init(token.NewFile(filename, -1, len(src)), src, eh, 0)

	var (
		s     stream.Stream
		depth int
		// interp holds, for each open interpolation, the parenthesis depth
		// at which its closing parenthesis is expected.
		interp    []int
		skipParen bool
	)
	for {
		pos, tok, lit := sc.Scan()
		if skipParen {
			skipParen = false
			// The scanner includes the opening parenthesis in the
			// interpolation literal and then returns it again.
			if tok == token.LPAREN {
				continue
			}
		}

		switch tok {
		case token.EOF:
			s = append(s, stream.Token{Pos: pos, Tok: tok})
			if errs != nil {
				return s, errs
			}
			return s, nil

		case token.INTERPOLATION:
			interp = append(interp, depth)
			skipParen = true

		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++

		case token.RPAREN:
			if n := len(interp); n > 0 && interp[n-1] == depth {
				interp = interp[:n-1]
				tok, lit = token.INTERPOLATION, sc.ResumeInterpolation()
				if strings.HasSuffix(lit, "(") {
					interp = append(interp, depth)
					skipParen = true
				}
				break
			}
			depth--

		case token.RBRACK, token.RBRACE:
			depth--
		}
		s = append(s, stream.Token{Pos: pos, Tok: tok, Lit: lit})
	}
}

// ScanString is like Scan, but takes its source as a string.
func ScanString(filename, src string) (stream.Stream, error) {
	return Scan(filename, []byte(src))
}
