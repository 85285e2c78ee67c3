/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"strings"
	"unicode/utf8"

	"screenwright/internal/domain"
)

// VisualLine is one row of the processed pane. A source line normally maps
// to one visual line; a Dialogue line can fan out into several when the
// double-space setting is on. RawStartColumn/RawEndColumn bound the slice
// of the raw line this row shows, keeping caret and click mapping exact.
type VisualLine struct {
	SourceLine     int
	Text           string
	RawStartColumn int
	RawEndColumn   int
}

// ProcessedView is the formatted rendering of a viewport-sized slice of
// the document.
type ProcessedView struct {
	Lines []VisualLine
}

// CaretVisual locates the caret in processed-view coordinates.
type CaretVisual struct {
	VisualIndex int
	Column      int
	Text        string
}

// AllVisualLines renders the whole classified document into visual lines.
func (s *Session) AllVisualLines() []VisualLine {
	var lines []VisualLine

	for sourceLine, p := range s.parsed {
		if s.settings.DialogueDoubleSpaceNewline && p.Kind == domain.Dialogue {
			indent := strings.Repeat(" ", p.IndentWidth())
			for _, seg := range DialogueSegments(p.Raw) {
				lines = append(lines, VisualLine{
					SourceLine:     sourceLine,
					Text:           indent + seg.Text,
					RawStartColumn: seg.StartColumn,
					RawEndColumn:   seg.StartColumn + utf8.RuneCountInString(seg.Text),
				})
			}
			continue
		}

		lines = append(lines, VisualLine{
			SourceLine:   sourceLine,
			Text:         p.ProcessedText(),
			RawEndColumn: utf8.RuneCountInString(p.Raw),
		})
	}
	return lines
}

// BuildProcessedView renders the processed pane for the current viewport.
// When the cursor is inside the plain viewport, the processed slice is
// anchored so the caret lands on the same visible row in both panes.
func (s *Session) BuildProcessedView(visibleLines int) ProcessedView {
	if visibleLines < 1 {
		visibleLines = 1
	}
	all := s.AllVisualLines()
	if len(all) == 0 {
		return ProcessedView{}
	}

	start := firstVisualIndexForSourceLine(all, s.topLine)

	cursorLine := s.cursor.Position.Line
	if cursorLine >= s.topLine && cursorLine < s.topLine+visibleLines {
		if caret, ok := s.caretVisualIn(all); ok {
			offset := cursorLine - s.topLine
			start = caret.VisualIndex - offset
			if start < 0 {
				start = 0
			}
		}
	}

	if max := len(all) - visibleLines; start > max {
		start = max
	}
	if start < 0 {
		start = 0
	}
	end := start + visibleLines
	if end > len(all) {
		end = len(all)
	}

	return ProcessedView{Lines: all[start:end]}
}

// ProcessedCaret locates the caret within a previously built view. The
// second return is false when the caret's source line is outside the view.
func (s *Session) ProcessedCaret(view ProcessedView) (CaretVisual, bool) {
	return s.caretVisualIn(view.Lines)
}

func (s *Session) caretVisualIn(lines []VisualLine) (CaretVisual, bool) {
	sourceLine := s.cursor.Position.Line
	rawColumn := s.cursor.Position.Column

	indent := 0
	if sourceLine >= 0 && sourceLine < len(s.parsed) {
		indent = s.parsed[sourceLine].IndentWidth()
	}

	// Collect this source line's rows, then pick the row whose raw span
	// contains the caret column; past the last span the caret sits at the
	// end of the final row.
	type entry struct {
		index int
		line  VisualLine
	}
	var relevant []entry
	for i, line := range lines {
		if line.SourceLine == sourceLine {
			relevant = append(relevant, entry{index: i, line: line})
		}
	}
	if len(relevant) == 0 {
		return CaretVisual{}, false
	}

	for i, e := range relevant {
		segLen := e.line.RawEndColumn - e.line.RawStartColumn
		local := rawColumn - e.line.RawStartColumn
		if local < 0 {
			local = 0
		}
		if local > segLen {
			local = segLen
		}

		nextStartsAfter := i+1 < len(relevant) && rawColumn < relevant[i+1].line.RawStartColumn
		if rawColumn <= e.line.RawEndColumn || nextStartsAfter || i+1 == len(relevant) {
			return CaretVisual{
				VisualIndex: e.index,
				Column:      indent + local,
				Text:        e.line.Text,
			}, true
		}
	}

	last := relevant[len(relevant)-1]
	return CaretVisual{
		VisualIndex: last.index,
		Column:      indent + (last.line.RawEndColumn - last.line.RawStartColumn),
		Text:        last.line.Text,
	}, true
}

// RawColumnFromDisplay maps a column in a visual line's displayed text back
// to a column in the raw source line, inverting indentation and dialogue
// segmentation.
func (s *Session) RawColumnFromDisplay(line VisualLine, displayColumn int) int {
	indent := 0
	if line.SourceLine >= 0 && line.SourceLine < len(s.parsed) {
		indent = s.parsed[line.SourceLine].IndentWidth()
	}

	segLen := line.RawEndColumn - line.RawStartColumn
	local := displayColumn - indent
	if local < 0 {
		local = 0
	}
	if local > segLen {
		local = segLen
	}
	return line.RawStartColumn + local
}

func firstVisualIndexForSourceLine(lines []VisualLine, sourceLine int) int {
	for i, line := range lines {
		if line.SourceLine >= sourceLine {
			return i
		}
	}
	return 0
}

// DialogueSegment is one run of a dialogue line between double-space
// breaks. StartColumn is the character column of the run in the raw line.
type DialogueSegment struct {
	StartColumn int
	Text        string
}

// DialogueSegments splits a dialogue line on each pair of consecutive
// spaces. The two spaces are consumed by the break. An empty input yields
// a single empty segment so the line still occupies a visual row.
func DialogueSegments(input string) []DialogueSegment {
	chars := []rune(input)
	if len(chars) == 0 {
		return []DialogueSegment{{}}
	}

	var segments []DialogueSegment
	start := 0
	i := 0
	for i+1 < len(chars) {
		if chars[i] == ' ' && chars[i+1] == ' ' {
			segments = append(segments, DialogueSegment{
				StartColumn: start,
				Text:        string(chars[start:i]),
			})
			i += 2
			start = i
			continue
		}
		i++
	}
	segments = append(segments, DialogueSegment{
		StartColumn: start,
		Text:        string(chars[start:]),
	})
	return segments
}
