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

package ast

import "cuelang.org/go/cue/token"

// A PatternNode is a node of a host pattern.
type PatternNode interface {
	Node
	patternNode()
}

// An Ident binds a single name. The blank identifier _ binds nothing.
type Ident struct {
	NamePos token.Pos
	Name    string
}

// IsBlank reports whether id is the blank identifier.
func (id *Ident) IsBlank() bool { return id.Name == "_" }

// A ListPattern matches a list element by element:
//
//	'[' elements ']'  or  '(' element ',' elements ')'
type ListPattern struct {
	Lbrack token.Pos
	Elts   []PatternNode
	Rbrack token.Pos
	Parens bool // written with parentheses, as a tuple
}

// A StructPattern matches selected fields of a struct:
//
//	'{' fields '}'
type StructPattern struct {
	Lbrace token.Pos
	Fields []*FieldPattern
	Rbrace token.Pos
}

// A FieldPattern matches the value of a single field. The shorthand {a}
// is represented with Pattern set to an Ident with the same name.
type FieldPattern struct {
	Label    string
	LabelPos token.Pos
	Quoted   bool // the label is not a valid identifier and must be indexed
	Pattern  PatternNode
}

// A KeyValuePattern binds the label and value of struct fields, or the
// index and value of list elements, as in a CUE for clause.
type KeyValuePattern struct {
	Key   *Ident
	Value PatternNode
}

func (id *Ident) Pos() token.Pos          { return id.NamePos }
func (p *ListPattern) Pos() token.Pos     { return p.Lbrack }
func (p *StructPattern) Pos() token.Pos   { return p.Lbrace }
func (f *FieldPattern) Pos() token.Pos    { return f.LabelPos }
func (p *KeyValuePattern) Pos() token.Pos { return p.Key.Pos() }

func (*Ident) patternNode()           {}
func (*ListPattern) patternNode()     {}
func (*StructPattern) patternNode()   {}
func (*FieldPattern) patternNode()    {}
func (*KeyValuePattern) patternNode() {}

// WalkPattern calls f for n and each of its descendants in depth-first
// order.
func WalkPattern(n PatternNode, f func(PatternNode)) {
	if n == nil {
		return
	}
	f(n)
	switch n := n.(type) {
	case *ListPattern:
		for _, e := range n.Elts {
			WalkPattern(e, f)
		}
	case *StructPattern:
		for _, fp := range n.Fields {
			WalkPattern(fp, f)
		}
	case *FieldPattern:
		WalkPattern(n.Pattern, f)
	case *KeyValuePattern:
		WalkPattern(n.Key, f)
		WalkPattern(n.Value, f)
	}
}
