// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// ProgramName is the name of the binary as reported by the version command
const ProgramName = "pvanalytics"

// Set at link time by `mage build`. When empty the values recorded by the go toolchain in the
// binary's build info are used instead.
var (
	commitHash string
	buildDate  string
)

// CurrentVersion is the release of pvanalytics; bump it when cutting a release
var CurrentVersion = Version{Major: 0, Minor: 1, Patch: 0, Suffix: "dev"}

// Version is a SemVer 2.0.0 release number
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

// String renders the version; pre-release versions carry the commit as build metadata
func (v Version) String() string {
	res := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix == "" {
		return res
	}
	res += "-" + v.Suffix
	if commit := Commit(); commit != "" {
		res += "+" + strings.ToLower(commit)
	}
	return res
}

// Commit returns the git revision the binary was built from, or "" when unknown
func Commit() string {
	if commitHash != "" {
		return commitHash
	}
	return buildSetting("vcs.revision")
}

// BuildDate returns when the binary was built, or "unknown"
func BuildDate() string {
	if buildDate != "" {
		return buildDate
	}
	if dt := buildSetting("vcs.time"); dt != "" {
		return dt
	}
	return "unknown"
}

func buildSetting(key string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range bi.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// BuildVersionString is the text printed by `pvanalytics version`
func BuildVersionString() string {
	return fmt.Sprintf("%s v%s %s/%s\n\nBuild Date: %s\nCommit: %s\nBuilt with: %s",
		ProgramName, CurrentVersion, runtime.GOOS, runtime.GOARCH, BuildDate(), Commit(), runtime.Version())
}
