/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version carries the build version of the application.
package version

import "strings"

// Version is the semantic version, overridable at build time with
// -ldflags "-X screenwright/internal/version.Version=x.y.z".
var Version = "0.1.0"

// Commit is the VCS revision the binary was built from, if known.
var Commit = ""

// String returns the version, including the short commit when set.
func String() string {
	v := strings.TrimSpace(Version)
	c := strings.TrimSpace(Commit)
	if c == "" {
		return v
	}
	if len(c) > 12 {
		c = c[:12]
	}
	return v + "+" + c
}
