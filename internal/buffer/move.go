/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package buffer

import "screenwright/internal/domain"

// MoveLeft moves one character left. At column 0 it joins to the end of the
// previous line; at the absolute start of the document it is a no-op.
func (d *Document) MoveLeft(pos domain.Position) domain.Position {
	pos = d.ClampPosition(pos)

	if pos.Column > 0 {
		return domain.Position{Line: pos.Line, Column: pos.Column - 1}
	}
	if pos.Line == 0 {
		return pos
	}

	prev := pos.Line - 1
	return domain.Position{Line: prev, Column: d.LineLenChars(prev)}
}

// MoveRight moves one character right. At end-of-line it moves to the start
// of the next line; at the absolute end of the document it is a no-op.
func (d *Document) MoveRight(pos domain.Position) domain.Position {
	pos = d.ClampPosition(pos)

	if pos.Column < d.LineLenChars(pos.Line) {
		return domain.Position{Line: pos.Line, Column: pos.Column + 1}
	}
	if pos.Line+1 < len(d.lines) {
		return domain.Position{Line: pos.Line + 1, Column: 0}
	}
	return pos
}

// MoveUp moves one line up, placing the column at
// min(preferredColumn, target line length). On the first line it is a no-op.
func (d *Document) MoveUp(pos domain.Position, preferredColumn int) domain.Position {
	pos = d.ClampPosition(pos)

	if pos.Line == 0 {
		return pos
	}
	line := pos.Line - 1
	return domain.Position{Line: line, Column: clampColumn(preferredColumn, d.LineLenChars(line))}
}

// MoveDown moves one line down, placing the column at
// min(preferredColumn, target line length). On the last line it is a no-op.
func (d *Document) MoveDown(pos domain.Position, preferredColumn int) domain.Position {
	pos = d.ClampPosition(pos)

	line := pos.Line + 1
	if line >= len(d.lines) {
		return pos
	}
	return domain.Position{Line: line, Column: clampColumn(preferredColumn, d.LineLenChars(line))}
}

func clampColumn(col, max int) int {
	if col < 0 {
		return 0
	}
	if col > max {
		return max
	}
	return col
}
