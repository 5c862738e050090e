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

// Package comptest is a helper package for tests in this module.
// As such it should only be imported in _test.go files.
package comptest

import (
	"os"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/go-quicktest/qt"
)

// UpdateGoldenFiles determines whether tests should update txtar archives
// in the event of cmp failures. It corresponds to
// testscript.Params.UpdateGoldenFiles.
var UpdateGoldenFiles = os.Getenv("COMP_UPDATE") != ""

// Eval evaluates the CUE source src and returns its concrete value.
func Eval(t testing.TB, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	qt.Assert(t, qt.IsNil(v.Err()), qt.Commentf("source:\n%s", src))
	qt.Assert(t, qt.IsNil(v.Validate(cue.Concrete(true))), qt.Commentf("source:\n%s", src))
	return v
}

// EvalJSON evaluates src and returns its value as JSON.
func EvalJSON(t testing.TB, src string) string {
	t.Helper()
	b, err := Eval(t, src).MarshalJSON()
	qt.Assert(t, qt.IsNil(err))
	return string(b)
}

// EvalErr evaluates src and returns the resulting error, which may be nil.
func EvalErr(t testing.TB, src string) error {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	if err := v.Err(); err != nil {
		return err
	}
	return v.Validate(cue.Concrete(true))
}

// Source formats x as CUE source.
func Source(t testing.TB, x ast.Expr) string {
	t.Helper()
	b, err := format.Node(x)
	qt.Assert(t, qt.IsNil(err))
	return string(b)
}
