/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"golang.org/x/image/font"
)

// Grid measures a text pane rendered with a single face: line height for
// row mapping, and per-prefix advances for column mapping. Advances are
// measured through the face so the mapping stays correct for proportional
// fallback fonts, not just monospace.
type Grid struct {
	face    font.Face
	metrics Metrics
}

// NewGrid resolves spec through provider and wraps the face for
// measurement. A nil provider uses BasicProvider.
func NewGrid(provider Provider, spec FontSpec) *Grid {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, met := provider.Resolve(spec)
	return &Grid{face: face, metrics: met}
}

// LineHeight returns the vertical distance between consecutive baselines.
func (g *Grid) LineHeight() float32 {
	return g.metrics.Ascent + g.metrics.Descent + g.metrics.LineGap
}

// Metrics returns the resolved face metrics.
func (g *Grid) Metrics() Metrics { return g.metrics }

// Advance returns the rendered width of text in pixels.
func (g *Grid) Advance(text string) float32 {
	d := &font.Drawer{Face: g.face}
	return float32(d.MeasureString(text).Round())
}

// RowAtY maps a y offset inside the pane to a 0-based visible row.
func (g *Grid) RowAtY(y float32) int {
	lh := g.LineHeight()
	if lh <= 0 || y <= 0 {
		return 0
	}
	return int(y / lh)
}

// ColumnAtX maps an x offset to the nearest character boundary in text,
// returning a 0-based column in [0, len(runes)]. A click past the line end
// lands after the last character.
func (g *Grid) ColumnAtX(text string, x float32) int {
	if x <= 0 {
		return 0
	}
	runes := []rune(text)
	prev := float32(0)
	for i := 1; i <= len(runes); i++ {
		w := g.Advance(string(runes[:i]))
		// Snap to whichever boundary is closer.
		if x < w {
			if x-prev <= w-x {
				return i - 1
			}
			return i
		}
		prev = w
	}
	return len(runes)
}

// XAtColumn returns the x offset of the given character column, clamped
// into the line.
func (g *Grid) XAtColumn(text string, column int) float32 {
	runes := []rune(text)
	if column <= 0 {
		return 0
	}
	if column > len(runes) {
		column = len(runes)
	}
	return g.Advance(string(runes[:column]))
}
