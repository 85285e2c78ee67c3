/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package buffer

import "screenwright/internal/domain"

// InsertText inserts input at pos character by character, treating each
// "\n" as a newline insertion. It returns the position after the last
// inserted character.
func (d *Document) InsertText(pos domain.Position, input string) domain.Position {
	pos = d.ClampPosition(pos)

	for _, ch := range input {
		if ch == '\n' {
			pos = d.InsertNewline(pos)
		} else {
			pos = d.InsertChar(pos, ch)
		}
	}
	return pos
}

// InsertChar inserts a single character at pos and returns the position
// just after it.
func (d *Document) InsertChar(pos domain.Position, ch rune) domain.Position {
	pos = d.ClampPosition(pos)

	line := d.lines[pos.Line]
	at := charToByteIndex(line, pos.Column)
	d.lines[pos.Line] = line[:at] + string(ch) + line[at:]

	return domain.Position{Line: pos.Line, Column: pos.Column + 1}
}

// InsertNewline splits the line at pos into two lines and returns the start
// of the new line.
func (d *Document) InsertNewline(pos domain.Position) domain.Position {
	pos = d.ClampPosition(pos)

	line := d.lines[pos.Line]
	at := charToByteIndex(line, pos.Column)
	head, tail := line[:at], line[at:]

	d.lines[pos.Line] = head
	d.lines = append(d.lines, "")
	copy(d.lines[pos.Line+2:], d.lines[pos.Line+1:])
	d.lines[pos.Line+1] = tail

	return domain.Position{Line: pos.Line + 1, Column: 0}
}

// Backspace deletes the character before pos. At column 0 of a non-first
// line it merges the current line into the end of the previous one. At the
// absolute start of the document it is a no-op.
func (d *Document) Backspace(pos domain.Position) domain.Position {
	pos = d.ClampPosition(pos)

	if pos.Column > 0 {
		line := d.lines[pos.Line]
		start := charToByteIndex(line, pos.Column-1)
		end := charToByteIndex(line, pos.Column)
		d.lines[pos.Line] = line[:start] + line[end:]
		return domain.Position{Line: pos.Line, Column: pos.Column - 1}
	}

	if pos.Line == 0 {
		return pos
	}

	current := d.lines[pos.Line]
	prev := pos.Line - 1
	prevLen := d.LineLenChars(prev)
	d.lines[prev] += current
	d.lines = append(d.lines[:pos.Line], d.lines[pos.Line+1:]...)

	return domain.Position{Line: prev, Column: prevLen}
}

// Delete removes the character at pos. At end-of-line of a non-last line it
// merges the next line into the current one. At the absolute end of the
// document it is a no-op. The returned position equals the clamped input.
func (d *Document) Delete(pos domain.Position) domain.Position {
	pos = d.ClampPosition(pos)

	if pos.Column < d.LineLenChars(pos.Line) {
		line := d.lines[pos.Line]
		start := charToByteIndex(line, pos.Column)
		end := charToByteIndex(line, pos.Column+1)
		d.lines[pos.Line] = line[:start] + line[end:]
		return pos
	}

	if pos.Line+1 >= len(d.lines) {
		return pos
	}

	d.lines[pos.Line] += d.lines[pos.Line+1]
	d.lines = append(d.lines[:pos.Line+1], d.lines[pos.Line+2:]...)
	return pos
}
