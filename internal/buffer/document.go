/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package buffer implements the line-oriented document store of the editor.
//
// The document is an ordered sequence of lines addressed by character
// positions (Unicode code points), while the underlying storage is plain Go
// strings (UTF-8 bytes). The character-to-byte conversion is confined to
// this package; byte offsets never leak through the API.
//
// Every operation clamps its input position into the current document, so
// navigation and mutation are total: an out-of-range position is silently
// corrected, never an error. Only Load and Save can fail, and only with I/O
// errors.
package buffer

import (
	"os"
	"strings"

	"screenwright/internal/domain"
)

// Document is a mutable sequence of text lines. The sequence is never
// empty: a fresh or cleared document holds exactly one empty line. Lines
// contain no line-break characters; "\n" is the sole separator and any
// "\r\n" in loaded text is normalized on the way in.
//
// Document is not safe for concurrent use; the caller serializes access.
type Document struct {
	lines []string
}

// New returns a document with a single empty line.
func New() *Document {
	return &Document{lines: []string{""}}
}

// FromText splits text on "\n", stripping one trailing "\r" from each
// segment. The result always has at least one line; empty input yields a
// single empty line.
func FromText(text string) *Document {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return &Document{lines: lines}
}

// Load reads the whole file at path and builds a document from its text.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromText(string(data)), nil
}

// Save writes ToText to path in a single whole-file write. No trailing
// newline is appended: ["a","b"] saves as "a\nb".
func (d *Document) Save(path string) error {
	return os.WriteFile(path, []byte(d.ToText()), 0o644)
}

// ToText joins the lines with "\n".
func (d *Document) ToText() string {
	return strings.Join(d.lines, "\n")
}

// LineCount returns the number of lines; always at least 1.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// IsEmpty reports whether the document is a single empty line.
func (d *Document) IsEmpty() bool {
	return len(d.lines) == 1 && d.lines[0] == ""
}

// Line returns the text of line i, or ("", false) when i is out of range.
func (d *Document) Line(i int) (string, bool) {
	if i < 0 || i >= len(d.lines) {
		return "", false
	}
	return d.lines[i], true
}

// LineLenChars returns the character count of line i, or 0 when i is out
// of range.
func (d *Document) LineLenChars(i int) int {
	if i < 0 || i >= len(d.lines) {
		return 0
	}
	return charCount(d.lines[i])
}

// Lines returns the line slice for read-only iteration. Callers must not
// mutate it.
func (d *Document) Lines() []string {
	return d.lines
}

// ClampPosition corrects pos into a valid address: line into
// [0, LineCount-1] and column into [0, LineLenChars(line)]. It is
// idempotent.
func (d *Document) ClampPosition(pos domain.Position) domain.Position {
	line := pos.Line
	if line < 0 {
		line = 0
	}
	if last := len(d.lines) - 1; line > last {
		line = last
	}
	column := pos.Column
	if column < 0 {
		column = 0
	}
	if maxCol := d.LineLenChars(line); column > maxCol {
		column = maxCol
	}
	return domain.Position{Line: line, Column: column}
}
