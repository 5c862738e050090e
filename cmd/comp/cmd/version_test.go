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

package cmd

import (
	"runtime/debug"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestVCSVersion(t *testing.T) {
	qt.Assert(t, qt.Equals(vcsVersion(nil, defaultVersion), defaultVersion))

	got := vcsVersion([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
	}, defaultVersion)
	qt.Assert(t, qt.Equals(got, "v0.0.0-20240501100000-0123456789ab"))
}

func TestCUEVersion(t *testing.T) {
	bi := &debug.BuildInfo{Deps: []*debug.Module{
		{Path: "golang.org/x/text", Version: "v0.15.0"},
		{Path: "cuelang.org/go", Version: "v0.9.2"},
	}}
	qt.Assert(t, qt.Equals(cueVersion(bi), "v0.9.2"))

	bi.Deps[1].Replace = &debug.Module{Path: "../cue", Version: ""}
	qt.Assert(t, qt.Equals(cueVersion(bi), ""))

	qt.Assert(t, qt.Equals(cueVersion(&debug.BuildInfo{}), ""))
}
