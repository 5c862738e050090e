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

// Package yaml converts evaluated CUE values to YAML.
package yaml

import (
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/format"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Value encodes the concrete value v as a YAML document.
func Value(v cue.Value) ([]byte, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}
	return Encode(v.Syntax(cue.Final(), cue.Concrete(true), cue.Docs(true)))
}

// Encode converts a CUE syntax tree holding only data to YAML.
//
// Supported nodes are basic literals, negated numbers, lists, and structs
// or files whose declarations are regular fields with literal labels.
// Doc comments are carried over as head comments.
func Encode(n ast.Node) ([]byte, error) {
	y, err := encode(n)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(y)
}

func unsupported(n ast.Node) error {
	b, _ := format.Node(n)
	return errors.Newf(n.Pos(), "yaml: unsupported node %s (%T)", b, n)
}

func encode(n ast.Node) (y *yaml.Node, err error) {
	switch x := n.(type) {
	case *ast.BasicLit:
		y, err = scalar(x)

	case *ast.UnaryExpr:
		b, ok := x.X.(*ast.BasicLit)
		if !ok || x.Op != token.SUB || (b.Kind != token.INT && b.Kind != token.FLOAT) {
			return nil, unsupported(x)
		}
		if y, err = scalar(b); err == nil {
			y.Value = "-" + y.Value
		}

	case *ast.ListLit:
		y = &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range x.Elts {
			elem, err := encode(e)
			if err != nil {
				return nil, err
			}
			y.Content = append(y.Content, elem)
		}
		if len(x.Elts) == 0 {
			y.Style = yaml.FlowStyle
		}

	case *ast.StructLit:
		y, err = mapping(x.Elts)
		if err == nil && len(y.Content) == 0 {
			y.Style = yaml.FlowStyle
		}

	case *ast.File:
		y, err = mapping(x.Decls)

	default:
		return nil, unsupported(n)
	}
	if err != nil {
		return nil, err
	}
	if doc := headComment(n); doc != "" {
		y.HeadComment = doc
	}
	return y, nil
}

func scalar(b *ast.BasicLit) (*yaml.Node, error) {
	y := &yaml.Node{Kind: yaml.ScalarNode}
	switch b.Kind {
	case token.INT, token.FLOAT:
		var ni literal.NumInfo
		if err := literal.ParseNum(b.Value, &ni); err != nil {
			return nil, err
		}
		y.Value = ni.String()
		y.Tag = "!!int"
		if !ni.IsInt() {
			y.Tag = "!!float"
		}

	case token.TRUE, token.FALSE, token.NULL:
		y.Value = b.Value

	case token.STRING:
		s, err := literal.Unquote(b.Value)
		if err != nil {
			return nil, errors.Newf(b.Pos(), "yaml: %v", err)
		}
		y.SetString(s)

	default:
		return nil, errors.Newf(b.Pos(), "yaml: unknown literal type %v", b.Kind)
	}
	return y, nil
}

// mapping converts the fields in decls to a YAML mapping. A single
// embedded value is returned as is.
func mapping(decls []ast.Decl) (*yaml.Node, error) {
	y := &yaml.Node{Kind: yaml.MappingNode}
	var embed *yaml.Node
	for _, d := range decls {
		switch x := d.(type) {
		case *ast.Package, *ast.CommentGroup:

		case *ast.Field:
			if x.Constraint != token.ILLEGAL {
				return nil, errors.Newf(x.Pos(), "yaml: optional or required fields not allowed")
			}
			name, _, err := ast.LabelName(x.Label)
			if err != nil {
				return nil, errors.Newf(x.Label.Pos(), "yaml: only literal labels allowed")
			}
			label := &yaml.Node{}
			label.SetString(name)
			label.HeadComment = headComment(x)

			value, err := encode(x.Value)
			if err != nil {
				return nil, err
			}
			y.Content = append(y.Content, label, value)

		case *ast.EmbedDecl:
			if embed != nil {
				return nil, errors.Newf(x.Pos(), "yaml: multiple embedded values")
			}
			e, err := encode(x.Expr)
			if err != nil {
				return nil, err
			}
			embed = e

		default:
			return nil, unsupported(x)
		}
	}
	if embed != nil {
		if len(y.Content) > 0 {
			return nil, errors.Newf(decls[0].Pos(), "yaml: embedding mixed with fields")
		}
		return embed, nil
	}
	return y, nil
}

// headComment converts the doc comments of n to a YAML comment.
func headComment(n ast.Node) string {
	var lines []string
	for _, c := range ast.Comments(n) {
		if !c.Doc {
			continue
		}
		for _, l := range strings.Split(strings.TrimSuffix(c.Text(), "\n"), "\n") {
			if l == "" {
				lines = append(lines, "#")
			} else {
				lines = append(lines, "# "+l)
			}
		}
	}
	return strings.Join(lines, "\n")
}
