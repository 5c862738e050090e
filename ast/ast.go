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

// Package ast declares the types used to represent a parsed comprehension.
//
// The leaves of the tree, expressions and patterns, are owned by the host
// language: expressions are CUE expressions and are never interpreted by
// this package. Nodes are not modified after parsing.
package ast

import (
	cueast "cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/token"
)

// A Node is any node in a comprehension tree.
type Node interface {
	Pos() token.Pos
}

// A Comprehension is a full comprehension:
//
//	mapping for_if_clause+
type Comprehension struct {
	Mapping *Mapping
	Clauses []*ForIfClause // at least one
}

func (c *Comprehension) Pos() token.Pos { return c.Mapping.Pos() }

// NumConditions reports the total number of conditions over all clauses.
func (c *Comprehension) NumConditions() int {
	n := 0
	for _, cl := range c.Clauses {
		n += len(cl.Conditions)
	}
	return n
}

// A Mapping is the expression that computes each output element.
type Mapping struct {
	Expr cueast.Expr
}

func (m *Mapping) Pos() token.Pos { return m.Expr.Pos() }

// A Condition is a filter:
//
//	'if' expression
type Condition struct {
	If   token.Pos
	Expr cueast.Expr
}

func (c *Condition) Pos() token.Pos { return c.If }

// A ForIfClause iterates over a source and filters its elements:
//
//	'for' pattern 'in' expression condition*
type ForIfClause struct {
	For        token.Pos
	Pattern    *Pattern
	In         token.Pos
	Source     cueast.Expr
	Conditions []*Condition
}

func (f *ForIfClause) Pos() token.Pos { return f.For }

// A Pattern binds names to parts of each iterated element.
type Pattern struct {
	Node PatternNode
}

func (p *Pattern) Pos() token.Pos { return p.Node.Pos() }

// Names returns the names bound by p in the order they appear.
func (p *Pattern) Names() []string {
	var names []string
	WalkPattern(p.Node, func(n PatternNode) {
		if id, ok := n.(*Ident); ok && !id.IsBlank() {
			names = append(names, id.Name)
		}
	})
	return names
}
