/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "testing"

// Face7x13 advances every glyph 7px, so grid positions are exact.

func TestGridAdvanceMonospace(t *testing.T) {
	g := NewGrid(BasicProvider{}, FontSpec{})
	if w := g.Advance("hello"); w != 35 {
		t.Fatalf("advance = %v, want 35", w)
	}
	if w := g.Advance(""); w != 0 {
		t.Fatalf("empty advance = %v", w)
	}
}

func TestGridColumnAtX(t *testing.T) {
	g := NewGrid(BasicProvider{}, FontSpec{})
	cases := []struct {
		x    float32
		want int
	}{
		{-5, 0},
		{0, 0},
		{3, 0},  // left half of first cell
		{4, 1},  // right half snaps forward
		{7, 1},
		{17, 2}, // 17 is closer to 14 than 21
		{18, 3},
		{100, 10}, // past the end clamps to line length
	}
	for _, c := range cases {
		if got := g.ColumnAtX("abcdefghij", c.x); got != c.want {
			t.Fatalf("ColumnAtX(%v) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestGridXAtColumn(t *testing.T) {
	g := NewGrid(BasicProvider{}, FontSpec{})
	if x := g.XAtColumn("abc", 0); x != 0 {
		t.Fatalf("x at 0 = %v", x)
	}
	if x := g.XAtColumn("abc", 2); x != 14 {
		t.Fatalf("x at 2 = %v", x)
	}
	if x := g.XAtColumn("abc", 99); x != 21 {
		t.Fatalf("x past end = %v", x)
	}
}

func TestGridRoundTrip(t *testing.T) {
	g := NewGrid(BasicProvider{}, FontSpec{})
	text := "INT. LAB - NIGHT"
	for col := 0; col <= len(text); col++ {
		x := g.XAtColumn(text, col)
		if got := g.ColumnAtX(text, x); got != col {
			t.Fatalf("round trip col %d: x=%v -> %d", col, x, got)
		}
	}
}

func TestGridRowAtY(t *testing.T) {
	g := NewGrid(BasicProvider{}, FontSpec{})
	lh := g.LineHeight()
	if lh <= 0 {
		t.Fatalf("line height %v", lh)
	}
	if r := g.RowAtY(-1); r != 0 {
		t.Fatalf("negative y row %d", r)
	}
	if r := g.RowAtY(lh*2 + 1); r != 2 {
		t.Fatalf("row = %d, want 2", r)
	}
}

func TestOTProviderFallsBack(t *testing.T) {
	p := OTProvider{Lib: NewFontLibrary()}
	face, met := p.Resolve(FontSpec{Family: "Missing", SizePt: 12})
	if face == nil {
		t.Fatalf("nil face from fallback")
	}
	if met.Ascent <= 0 {
		t.Fatalf("metrics %+v", met)
	}
}

func TestFontLibraryLoadMissingFile(t *testing.T) {
	fl := NewFontLibrary()
	if err := fl.LoadTTF("Nope", 400, false, "/does/not/exist.ttf"); err == nil {
		t.Fatalf("expected error for missing font file")
	}
}
