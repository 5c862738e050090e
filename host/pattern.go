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

package host

import (
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/token"

	"cuelabs.dev/go/comp/ast"
	"cuelabs.dev/go/comp/stream"
)

// ParsePattern parses a single pattern:
//
//	pattern := element [ ',' element ]
//	element := '_' | identifier
//	         | '(' element ')'
//	         | '(' element ',' [ elements ] ')'
//	         | '[' [ elements ] ']'
//	         | '{' [ fields ] '}'
//	field   := identifier | ( identifier | string ) ':' element
//
// The two-element form binds the key and value of a CUE for clause; its
// key must be an identifier.
func (p Parser) ParsePattern(c *stream.Cursor) (ast.PatternNode, error) {
	pp := &patternParser{c: c, bound: map[string]bool{}}
	n, err := pp.parseElement()
	if err != nil {
		return nil, err
	}

	if t := c.Peek(); t.Tok == token.COMMA && !t.IsImplicitComma() {
		key, ok := n.(*ast.Ident)
		if !ok {
			return nil, errors.Newf(n.Pos(), "key of a key/value pattern must be an identifier")
		}
		c.Next()
		value, err := pp.parseElement()
		if err != nil {
			return nil, err
		}
		n = &ast.KeyValuePattern{Key: key, Value: value}
	}

	if t := c.Peek(); t.Tok == token.OR {
		return nil, errors.Newf(t.Pos, "alternative patterns are not supported")
	}
	return n, nil
}

type patternParser struct {
	c     *stream.Cursor
	bound map[string]bool
}

func (p *patternParser) parseElement() (ast.PatternNode, error) {
	t := p.c.Peek()
	switch t.Tok {
	case token.IDENT:
		p.c.Next()
		return p.bind(t)

	case token.LPAREN:
		return p.parseParens()

	case token.LBRACK:
		p.c.Next()
		elts, end, err := p.parseElements(token.RBRACK)
		if err != nil {
			return nil, err
		}
		return &ast.ListPattern{Lbrack: t.Pos, Elts: elts, Rbrack: end}, nil

	case token.LBRACE:
		return p.parseStruct()
	}
	return nil, errors.Newf(t.Pos, "expected pattern, found %s", t.Describe())
}

func (p *patternParser) bind(t stream.Token) (*ast.Ident, error) {
	name := t.Lit
	switch {
	case name == "_":
		return &ast.Ident{NamePos: t.Pos, Name: name}, nil
	case strings.HasPrefix(name, "__"):
		return nil, errors.Newf(t.Pos, "identifiers starting with '__' are reserved")
	case strings.Contains(name, "#"):
		return nil, errors.Newf(t.Pos, "cannot bind definition %s in pattern", name)
	case p.bound[name]:
		return nil, errors.Newf(t.Pos, "%s bound more than once in pattern", name)
	}
	p.bound[name] = true
	return &ast.Ident{NamePos: t.Pos, Name: name}, nil
}

// parseParens parses a grouped pattern or a tuple pattern.
func (p *patternParser) parseParens() (ast.PatternNode, error) {
	lparen := p.c.Next()
	p.skipNewlines()
	if t := p.c.Peek(); t.Tok == token.RPAREN {
		return nil, errors.Newf(t.Pos, "expected pattern, found %s", t.Describe())
	}
	first, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if t := p.c.Peek(); t.Tok == token.RPAREN {
		p.c.Next()
		return first, nil
	}
	if t := p.c.Next(); t.Tok != token.COMMA {
		return nil, errors.Newf(t.Pos, "expected ',' or ')', found %s", t.Describe())
	}
	rest, end, err := p.parseElements(token.RPAREN)
	if err != nil {
		return nil, err
	}
	return &ast.ListPattern{
		Lbrack: lparen.Pos,
		Elts:   append([]ast.PatternNode{first}, rest...),
		Rbrack: end,
		Parens: true,
	}, nil
}

// parseElements parses a comma-separated list of patterns, with an
// optional trailing comma, and the closing token.
func (p *patternParser) parseElements(closing token.Token) ([]ast.PatternNode, token.Pos, error) {
	var elts []ast.PatternNode
	for {
		p.skipNewlines()
		if t := p.c.Peek(); t.Tok == closing {
			p.c.Next()
			return elts, t.Pos, nil
		}
		n, err := p.parseElement()
		if err != nil {
			return nil, token.NoPos, err
		}
		elts = append(elts, n)
		if err := p.separator(closing); err != nil {
			return nil, token.NoPos, err
		}
	}
}

func (p *patternParser) parseStruct() (ast.PatternNode, error) {
	lbrace := p.c.Next()
	s := &ast.StructPattern{Lbrace: lbrace.Pos}
	labels := map[string]bool{}
	for {
		p.skipNewlines()
		t := p.c.Next()
		if t.Tok == token.RBRACE {
			s.Rbrace = t.Pos
			return s, nil
		}

		f := &ast.FieldPattern{LabelPos: t.Pos}
		switch t.Tok {
		case token.IDENT:
			f.Label = t.Lit
		case token.STRING:
			label, err := literal.Unquote(t.Lit)
			if err != nil {
				return nil, errors.Newf(t.Pos, "invalid field label %s: %v", t.Lit, err)
			}
			f.Label, f.Quoted = label, true
		default:
			return nil, errors.Newf(t.Pos, "expected field label, found %s", t.Describe())
		}
		if labels[f.Label] {
			return nil, errors.Newf(t.Pos, "field %s matched more than once", f.Label)
		}
		labels[f.Label] = true

		if p.c.Peek().Tok == token.COLON {
			p.c.Next()
			n, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			f.Pattern = n
		} else {
			if f.Quoted {
				return nil, errors.Newf(t.Pos, "quoted field %s must be followed by ':' and a pattern", t.Lit)
			}
			id, err := p.bind(t)
			if err != nil {
				return nil, err
			}
			f.Pattern = id
		}
		s.Fields = append(s.Fields, f)

		if err := p.separator(token.RBRACE); err != nil {
			return nil, err
		}
	}
}

// separator consumes the comma after an element, if any. A missing comma
// is only allowed before the closing token.
func (p *patternParser) separator(closing token.Token) error {
	switch t := p.c.Peek(); t.Tok {
	case token.COMMA:
		p.c.Next()
	case closing:
	default:
		return errors.Newf(t.Pos, "expected ',' or '%s', found %s", closing, t.Describe())
	}
	return nil
}

func (p *patternParser) skipNewlines() {
	for p.c.Peek().IsImplicitComma() {
		p.c.Next()
	}
}
