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

package stream

import "cuelang.org/go/cue/token"

// A Cursor reads tokens from a Stream. It supports lookahead of one token
// and saving and restoring its position.
//
// A Cursor is owned by a single parser and is not safe for concurrent use.
type Cursor struct {
	s   Stream
	i   int
	eof Token
}

// A Mark is a saved cursor position.
type Mark int

// NewCursor returns a cursor positioned at the first token of s.
// A trailing EOF token in s, if any, marks the end of input; otherwise
// the end of input is positioned immediately after the last token.
func NewCursor(s Stream) *Cursor {
	c := &Cursor{s: s}
	switch n := len(s); {
	case n > 0 && s[n-1].Tok == token.EOF:
		c.eof = s[n-1]
		c.s = s[:n-1]
	case n > 0:
		c.eof = Token{Pos: s[n-1].End().WithRel(token.NoSpace), Tok: token.EOF}
	default:
		c.eof = Token{Tok: token.EOF}
	}
	return c
}

// Peek returns the next token without consuming it. At the end of input it
// returns an EOF token.
func (c *Cursor) Peek() Token {
	if c.i < len(c.s) {
		return c.s[c.i]
	}
	return c.eof
}

// Next consumes and returns the next token. At the end of input it returns
// an EOF token and does not advance.
func (c *Cursor) Next() Token {
	t := c.Peek()
	if c.i < len(c.s) {
		c.i++
	}
	return t
}

// AtEOF reports whether all tokens have been consumed.
func (c *Cursor) AtEOF() bool {
	return c.i >= len(c.s)
}

// Pos returns the position of the next token.
func (c *Cursor) Pos() token.Pos {
	return c.Peek().Pos
}

// Mark returns a checkpoint of the current position.
func (c *Cursor) Mark() Mark {
	return Mark(c.i)
}

// Reset restores the position saved by m. Tokens consumed since m will be
// read again.
func (c *Cursor) Reset(m Mark) {
	c.i = int(m)
}

// Since returns the tokens consumed since m.
func (c *Cursor) Since(m Mark) Stream {
	return c.s[int(m):c.i]
}
