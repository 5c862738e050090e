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

package parser

import (
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// ErrorKind classifies parse errors.
type ErrorKind int

const (
	// MissingKeyword indicates that a required 'for', 'in' or 'if' was not
	// found, or that input remained after the last clause.
	MissingKeyword ErrorKind = iota + 1

	// MalformedSubExpression indicates that the mapping, an iterable or a
	// condition could not be parsed as a host expression.
	MalformedSubExpression

	// MalformedPattern indicates that a for clause has an invalid pattern.
	MalformedPattern
)

func (k ErrorKind) String() string {
	switch k {
	case MissingKeyword:
		return "missing keyword"
	case MalformedSubExpression:
		return "malformed expression"
	case MalformedPattern:
		return "malformed pattern"
	}
	return "unknown error"
}

// An Error is a comprehension parse error. It implements
// cuelang.org/go/cue/errors.Error, so that it can be printed with its
// position using errors.Print.
type Error struct {
	Kind ErrorKind

	pos    token.Pos
	format string
	args   []interface{}

	// Err holds the error reported by the sub-parser, if any.
	Err error
}

var _ errors.Error = (*Error)(nil)

func newError(kind ErrorKind, pos token.Pos, err error, format string, args ...interface{}) *Error {
	// Only the first of several sub-parser errors is kept, so that the
	// result reads as a single error.
	if errs := errors.Errors(err); len(errs) > 1 {
		err = errs[0]
	}
	return &Error{
		Kind:   kind,
		pos:    pos,
		format: format,
		args:   args,
		Err:    err,
	}
}

func (e *Error) Position() token.Pos { return e.pos }

func (e *Error) InputPositions() []token.Pos { return nil }
func (e *Error) Path() []string              { return nil }

func (e *Error) Msg() (format string, args []interface{}) {
	return e.format, e.args
}

func (e *Error) Error() string { return errors.String(e) }

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of the first parse error in err's chain, or 0 if
// there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
