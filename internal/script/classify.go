/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script classifies plain screenplay text into typed elements.
//
// There are no markup tags: each line's role is inferred from its trimmed
// content plus the kind assigned to the line immediately before it. The
// classifier is a single forward pass carrying that one kind as its whole
// state; it never backtracks and keeps no state between calls.
package script

import (
	"strings"

	"screenwright/internal/domain"
)

// sceneMarkers are the recognized scene heading prefixes, matched
// case-insensitively after trimming.
var sceneMarkers = []string{"INT.", "EXT.", "EST.", "INT/EXT.", "I/E."}

// maxCueLen is the character budget of a character cue line.
const maxCueLen = 32

// cuePunct is the punctuation allowed inside a character cue besides
// uppercase ASCII letters and digits.
const cuePunct = " .()'-"

// Classify assigns a LineKind to every line, in order. The result has the
// same length as the input. Classifying the same lines twice yields the
// same kinds.
func Classify(lines []string) []domain.ParsedLine {
	parsed := make([]domain.ParsedLine, 0, len(lines))
	previous := domain.Empty

	for _, raw := range lines {
		kind := classifyLine(raw, previous)
		previous = kind
		parsed = append(parsed, domain.ParsedLine{Kind: kind, Raw: raw})
	}
	return parsed
}

// ClassifyText splits text on "\n" and classifies the resulting lines.
func ClassifyText(text string) []domain.ParsedLine {
	return Classify(strings.Split(text, "\n"))
}

// classifyLine applies the priority rules. Order matters: a parenthetical-
// shaped line outside a dialogue block falls through to Action, and any
// non-matching line after a cue, dialogue or parenthetical continues the
// dialogue block.
func classifyLine(raw string, previous domain.LineKind) domain.LineKind {
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		return domain.Empty
	case isSceneHeading(trimmed):
		return domain.SceneHeading
	case isTransition(trimmed):
		return domain.Transition
	case isCharacterCue(trimmed):
		return domain.Character
	case isParenthetical(trimmed) && previous.InDialogueBlock():
		return domain.Parenthetical
	case previous.InDialogueBlock():
		return domain.Dialogue
	default:
		return domain.Action
	}
}

func isSceneHeading(line string) bool {
	upper := strings.ToUpper(strings.TrimLeft(line, " \t"))
	for _, marker := range sceneMarkers {
		if strings.HasPrefix(upper, marker) {
			return true
		}
	}
	return false
}

func isTransition(line string) bool {
	upper := strings.ToUpper(line)
	return strings.HasSuffix(upper, " TO:") ||
		upper == "CUT TO:" ||
		upper == "FADE OUT." ||
		upper == "FADE TO BLACK."
}

func isCharacterCue(line string) bool {
	n := 0
	for _, ch := range line {
		n++
		if n > maxCueLen {
			return false
		}
		if ch >= 'A' && ch <= 'Z' {
			continue
		}
		if ch >= '0' && ch <= '9' {
			continue
		}
		if strings.ContainsRune(cuePunct, ch) {
			continue
		}
		return false
	}

	words := len(strings.Fields(line))
	if words == 0 || words > 4 {
		return false
	}
	return !strings.HasSuffix(line, ":")
}

func isParenthetical(line string) bool {
	return strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")")
}
