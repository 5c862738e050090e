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

// Package emit lowers a comprehension to a CUE list comprehension.
//
// The comprehension
//
//	f(x) for (x, y) in src if p(x) if q(y)
//
// becomes
//
//	[for elem in src let x = elem[0] let y = elem[1] if p(x) if q(y) {f(x)}]
//
// CUE evaluates the clauses of a comprehension in order, so conditions are
// checked left to right and later conditions, as well as the mapping, are
// not evaluated for elements rejected by an earlier one. Each element of
// the source yields at most one element of the result, in source order.
package emit

import (
	"strconv"

	cueast "cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/token"

	"cuelabs.dev/go/comp/ast"
)

// An Option configures the emitter.
type Option func(e *emitter)

// TempPrefix sets the prefix used for the temporaries that hold elements
// matched by destructuring patterns. The default is "elem".
func TempPrefix(prefix string) Option {
	return func(e *emitter) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

// Expr returns the CUE expression for c. The expressions of c are reused,
// not copied, and must not be modified afterwards.
func Expr(c *ast.Comprehension, opts ...Option) cueast.Expr {
	e := &emitter{
		prefix: "elem",
		used:   usedNames(c),
	}
	for _, o := range opts {
		o(e)
	}

	var clauses []cueast.Clause
	for _, fc := range c.Clauses {
		clauses = append(clauses, e.forClause(fc)...)
	}

	value := &cueast.StructLit{
		Elts: []cueast.Decl{&cueast.EmbedDecl{Expr: c.Mapping.Expr}},
	}
	return cueast.NewList(&cueast.Comprehension{
		Clauses: clauses,
		Value:   value,
	})
}

type emitter struct {
	prefix string
	used   map[string]bool
	n      int
}

func (e *emitter) forClause(fc *ast.ForIfClause) []cueast.Clause {
	f := &cueast.ForClause{Source: fc.Source}
	var lets []cueast.Clause

	switch n := fc.Pattern.Node.(type) {
	case *ast.KeyValuePattern:
		f.Key = cueast.NewIdent(n.Key.Name)
		f.Value, lets = e.bindValue(n.Value)
	default:
		f.Value, lets = e.bindValue(n)
	}

	clauses := append([]cueast.Clause{f}, lets...)
	for _, c := range fc.Conditions {
		clauses = append(clauses, &cueast.IfClause{Condition: c.Expr})
	}
	return clauses
}

// bindValue returns the identifier to bind to the value of a for clause
// matched by n, and the let clauses that bind the names within n.
func (e *emitter) bindValue(n ast.PatternNode) (*cueast.Ident, []cueast.Clause) {
	if id, ok := n.(*ast.Ident); ok {
		return cueast.NewIdent(id.Name), nil
	}
	tmp := e.fresh()
	return cueast.NewIdent(tmp), e.lets(cueast.NewIdent(tmp), n)
}

// lets returns the let clauses that bind the names of n to the parts of
// the value x.
func (e *emitter) lets(x cueast.Expr, n ast.PatternNode) []cueast.Clause {
	switch n := n.(type) {
	case *ast.Ident:
		if n.IsBlank() {
			return nil
		}
		return []cueast.Clause{&cueast.LetClause{
			Ident: cueast.NewIdent(n.Name),
			Expr:  x,
		}}

	case *ast.ListPattern:
		var clauses []cueast.Clause
		for i, elt := range n.Elts {
			index := &cueast.IndexExpr{
				X:     x,
				Index: cueast.NewLit(token.INT, strconv.Itoa(i)),
			}
			clauses = append(clauses, e.part(index, elt)...)
		}
		return clauses

	case *ast.StructPattern:
		var clauses []cueast.Clause
		for _, f := range n.Fields {
			var sel cueast.Expr
			if f.Quoted {
				sel = &cueast.IndexExpr{X: x, Index: cueast.NewString(f.Label)}
			} else {
				sel = cueast.NewSel(x, f.Label)
			}
			clauses = append(clauses, e.part(sel, f.Pattern)...)
		}
		return clauses

	case *ast.KeyValuePattern:
		// Only valid at the top of a for clause.
		panic("emit: nested key/value pattern")
	}
	panic("emit: unknown pattern type")
}

// part binds the names of n to x. Nested destructuring patterns first bind
// x to a temporary, so that it is computed only once.
func (e *emitter) part(x cueast.Expr, n ast.PatternNode) []cueast.Clause {
	switch n.(type) {
	case *ast.Ident:
		return e.lets(x, n)
	}
	tmp := e.fresh()
	clauses := []cueast.Clause{&cueast.LetClause{
		Ident: cueast.NewIdent(tmp),
		Expr:  x,
	}}
	return append(clauses, e.lets(cueast.NewIdent(tmp), n)...)
}

// fresh returns a name that is not used anywhere in the comprehension.
func (e *emitter) fresh() string {
	for {
		name := e.prefix
		if e.n > 0 {
			name += strconv.Itoa(e.n)
		}
		e.n++
		if !e.used[name] {
			e.used[name] = true
			return name
		}
	}
}

// usedNames collects all identifiers that appear in c, including field
// labels, so that temporaries never shadow or capture them.
func usedNames(c *ast.Comprehension) map[string]bool {
	used := map[string]bool{}
	collect := func(x cueast.Node) {
		cueast.Walk(x, func(n cueast.Node) bool {
			if id, ok := n.(*cueast.Ident); ok {
				used[id.Name] = true
			}
			return true
		}, nil)
	}
	collect(c.Mapping.Expr)
	for _, fc := range c.Clauses {
		collect(fc.Source)
		for _, cond := range fc.Conditions {
			collect(cond.Expr)
		}
		ast.WalkPattern(fc.Pattern.Node, func(n ast.PatternNode) {
			switch n := n.(type) {
			case *ast.Ident:
				used[n.Name] = true
			case *ast.FieldPattern:
				used[n.Label] = true
			}
		})
	}
	return used
}
