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

// Package stream defines the token streams that comprehension expansion
// consumes and produces, and the cursor used to parse them.
//
// A stream is a plain slice of CUE tokens. String interpolations are folded
// into INTERPOLATION pieces so that every token can be rendered back to
// source text without access to the original file.
package stream

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"
)

// A Token is a single lexical unit of CUE source.
type Token struct {
	Pos token.Pos
	Tok token.Token

	// Lit holds the literal text for identifiers, literals, keywords and
	// interpolation pieces. It is "," or "\n" for commas, the latter
	// indicating a comma inserted at a newline.
	Lit string
}

// IsImplicitComma reports whether t is a comma inserted by the scanner at a
// line break.
func (t Token) IsImplicitComma() bool {
	return t.Tok == token.COMMA && t.Lit == "\n"
}

// Text returns the source text of t. Implicit commas have no text.
func (t Token) Text() string {
	switch {
	case t.IsImplicitComma(), t.Tok == token.EOF:
		return ""
	case t.Lit != "":
		return t.Lit
	}
	return t.Tok.String()
}

// End returns the position immediately after t.
func (t Token) End() token.Pos {
	if !t.Pos.IsValid() {
		return token.NoPos
	}
	return t.Pos.Add(len(t.Text()))
}

// Nesting reports how t changes the bracket depth: 1 for an opening
// parenthesis, bracket, brace or interpolation, -1 for the corresponding
// closing tokens, and 0 otherwise.
func (t Token) Nesting() int {
	switch t.Tok {
	case token.LPAREN, token.LBRACK, token.LBRACE:
		return 1
	case token.RPAREN, token.RBRACK, token.RBRACE:
		return -1
	case token.INTERPOLATION:
		opens := strings.HasSuffix(t.Lit, "(")
		closes := strings.HasPrefix(t.Lit, ")")
		switch {
		case opens && !closes:
			return 1
		case closes && !opens:
			return -1
		}
	}
	return 0
}

func (t Token) String() string {
	if t.Lit != "" && t.Lit != t.Tok.String() {
		return fmt.Sprintf("%s %q", t.Tok, t.Lit)
	}
	return t.Tok.String()
}

// Describe returns a short description of t for use in error messages.
func (t Token) Describe() string {
	switch {
	case t.Tok == token.EOF:
		return "end of input"
	case t.IsImplicitComma():
		return "newline"
	case t.Tok.IsLiteral():
		return fmt.Sprintf("%s %s", strings.ToLower(t.Tok.String()), t.Lit)
	}
	return fmt.Sprintf("'%s'", t.Text())
}

// A Stream is an ordered sequence of tokens.
type Stream []Token

func (s Stream) String() string { return Render(s) }

// ElideCommas returns s without the implicit commas that appear outside of
// any parentheses, brackets or braces. This allows a comprehension to be
// spread over several lines. The result shares no memory with s.
func ElideCommas(s Stream) Stream {
	out := make(Stream, 0, len(s))
	depth := 0
	for _, t := range s {
		if depth == 0 && t.IsImplicitComma() {
			continue
		}
		depth += t.Nesting()
		out = append(out, t)
	}
	return out
}

// Render returns the source text for s. Whitespace between tokens is
// reconstructed from the relative positions recorded by the scanner;
// indentation is not preserved.
func Render(s Stream) string {
	var b strings.Builder
	for _, t := range s {
		text := t.Text()
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(space(t.Pos.RelPos()))
		}
		b.WriteString(text)
	}
	return b.String()
}

func space(rel token.RelPos) string {
	switch rel {
	case token.NoSpace:
		return ""
	case token.Newline:
		return "\n"
	case token.NewSection:
		return "\n\n"
	}
	return " "
}
