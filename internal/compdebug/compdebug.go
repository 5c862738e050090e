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

// Package compdebug holds the settings of the COMP_DEBUG environment
// variable and the debug logger they configure.
package compdebug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"cuelabs.dev/go/comp/internal/envflag"
)

// Flags holds the set of COMP_DEBUG flags. It is initialized by Init.
var Flags Config

// Config holds the known COMP_DEBUG flags.
//
// When adding, deleting, or modifying entries below,
// update the help text of cmd/comp as well.
type Config struct {
	// Log enables logging of each expansion to stderr.
	Log bool

	// LogLevel is the minimum level of logged records.
	LogLevel slog.Level `envflag:"default:debug"`

	// JSON logs records as JSON objects instead of key=value pairs.
	JSON bool
}

// Init initializes Flags from COMP_DEBUG. It is not an init function so
// that a malformed variable is reported as an error.
func Init() error {
	return initOnce()
}

var initOnce = sync.OnceValue(func() error {
	return envflag.Init(&Flags, "COMP_DEBUG")
})

// Logger returns the logger configured by Flags. Records are discarded
// unless logging is enabled. Init must be called first.
func Logger() *slog.Logger {
	return NewLogger(os.Stderr, Flags)
}

// NewLogger returns a logger writing to w as configured by cfg.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	if !cfg.Log {
		return Discard
	}
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard is a logger that discards all records.
var Discard = slog.New(discard{})

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
