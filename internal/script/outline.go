/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"sort"
	"strings"

	"screenwright/internal/domain"
)

// Scene is one entry of the screenplay outline: a scene heading and the
// 0-based line it starts at.
type Scene struct {
	Heading string
	Line    int
}

// Scenes extracts the outline from a classified document.
func Scenes(parsed []domain.ParsedLine) []Scene {
	var scenes []Scene
	for i, p := range parsed {
		if p.Kind == domain.SceneHeading {
			scenes = append(scenes, Scene{
				Heading: strings.ToUpper(strings.TrimSpace(p.Raw)),
				Line:    i,
			})
		}
	}
	return scenes
}

// Characters returns the distinct character names appearing as cues,
// uppercased and sorted. Cue extensions in parentheses, such as (V.O.) or
// (CONT'D), are stripped before deduplication.
func Characters(parsed []domain.ParsedLine) []string {
	seen := make(map[string]struct{})
	for _, p := range parsed {
		if p.Kind != domain.Character {
			continue
		}
		name := strings.TrimSpace(p.Raw)
		if i := strings.IndexByte(name, '('); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
		name = strings.ToUpper(name)
		if name != "" {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
