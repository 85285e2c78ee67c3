/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain holds the shared value types of the screenplay editor:
// character-addressed positions, cursors, classified lines and their
// formatting, and the load/save path pair of an open document.
package domain

import "strings"

// Position addresses a character within the document. Line and Column are
// 0-based; Column counts Unicode code points, never bytes.
type Position struct {
	Line   int
	Column int
}

// Cursor pairs a Position with the column the user last deliberately chose.
// Vertical movement snaps to min(PreferredColumn, line length) so the caret
// returns to its horizontal intent after crossing shorter lines.
type Cursor struct {
	Position        Position
	PreferredColumn int
}

// SetPosition moves the cursor and records the new column as preferred.
// Use this for horizontal moves and edits; plain vertical moves should
// assign Position directly and leave PreferredColumn alone.
func (c *Cursor) SetPosition(p Position) {
	c.Position = p
	c.PreferredColumn = p.Column
}

// LineKind is the semantic role of a screenplay line.
type LineKind int

const (
	Empty LineKind = iota
	SceneHeading
	Action
	Character
	Dialogue
	Parenthetical
	Transition
)

var lineKindNames = [...]string{
	Empty:         "empty",
	SceneHeading:  "scene_heading",
	Action:        "action",
	Character:     "character",
	Dialogue:      "dialogue",
	Parenthetical: "parenthetical",
	Transition:    "transition",
}

func (k LineKind) String() string {
	if k < 0 || int(k) >= len(lineKindNames) {
		return "unknown"
	}
	return lineKindNames[k]
}

// InDialogueBlock reports whether a line of this kind keeps a dialogue block
// open, i.e. whether the following line may be Dialogue or Parenthetical.
func (k LineKind) InDialogueBlock() bool {
	return k == Character || k == Dialogue || k == Parenthetical
}

// ParsedLine is one raw document line paired with its derived classification.
type ParsedLine struct {
	Kind LineKind
	Raw  string
}

// IndentWidth returns the indentation, in character columns, used to render
// this line in the processed view.
func (p ParsedLine) IndentWidth() int {
	switch p.Kind {
	case SceneHeading:
		return 2
	case Character:
		return 24
	case Dialogue:
		return 12
	case Parenthetical:
		return 18
	case Transition:
		return 40
	default: // Action, Empty
		return 0
	}
}

// ProcessedText renders the line for the formatted view: indentation spaces
// followed by the raw text, uppercased for scene headings, transitions and
// character cues. Recasing never changes the character count, so columns in
// the processed text stay aligned with raw columns plus the indent.
func (p ParsedLine) ProcessedText() string {
	indent := strings.Repeat(" ", p.IndentWidth())
	switch p.Kind {
	case SceneHeading, Transition, Character:
		return indent + strings.ToUpper(p.Raw)
	default:
		return indent + p.Raw
	}
}

// ProcessedColumn maps a raw character column to the equivalent column in
// the processed rendering of this line.
func (p ParsedLine) ProcessedColumn(rawColumn int) int {
	if rawColumn < 0 {
		rawColumn = 0
	}
	return p.IndentWidth() + rawColumn
}

// DocumentPath tracks where the document came from and where it will be
// saved. The two are independent so "load A, save as B" leaves the load
// path pointing at A.
type DocumentPath struct {
	LoadPath string
	SavePath string
}

func NewDocumentPath(loadPath, savePath string) DocumentPath {
	return DocumentPath{LoadPath: loadPath, SavePath: savePath}
}
