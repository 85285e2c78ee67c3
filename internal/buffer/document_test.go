/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package buffer

import (
	"os"
	"path/filepath"
	"testing"

	"screenwright/internal/domain"
)

func TestNewHasSingleEmptyLine(t *testing.T) {
	d := New()
	if d.LineCount() != 1 {
		t.Fatalf("expected 1 line, got %d", d.LineCount())
	}
	if !d.IsEmpty() {
		t.Fatalf("new document should be empty")
	}
}

func TestFromTextSplitsAndNormalizesCRLF(t *testing.T) {
	d := FromText("one\r\ntwo\nthree")
	if d.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", d.LineCount())
	}
	for i, want := range []string{"one", "two", "three"} {
		got, ok := d.Line(i)
		if !ok || got != want {
			t.Fatalf("line %d: got %q ok=%v, want %q", i, got, ok, want)
		}
	}
}

func TestFromTextEmptyInput(t *testing.T) {
	d := FromText("")
	if d.LineCount() != 1 || !d.IsEmpty() {
		t.Fatalf("empty input should give a single empty line")
	}
}

func TestToTextRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"single",
		"a\nb",
		"trailing newline\n",
		"\n\n",
		"café\n日本語",
	}
	for _, text := range cases {
		if got := FromText(text).ToText(); got != text {
			t.Fatalf("round trip of %q: got %q", text, got)
		}
	}
}

func TestIsEmptyOnlyForSingleEmptyLine(t *testing.T) {
	if FromText("\n").IsEmpty() {
		t.Fatalf("two empty lines should not count as empty")
	}
	if FromText("x").IsEmpty() {
		t.Fatalf("non-empty line should not count as empty")
	}
}

func TestLineOutOfRange(t *testing.T) {
	d := FromText("a\nb")
	if _, ok := d.Line(-1); ok {
		t.Fatalf("negative index should not resolve")
	}
	if _, ok := d.Line(2); ok {
		t.Fatalf("index past end should not resolve")
	}
	if n := d.LineLenChars(5); n != 0 {
		t.Fatalf("out-of-range LineLenChars: got %d", n)
	}
}

func TestLineLenCharsCountsRunes(t *testing.T) {
	d := FromText("café")
	if n := d.LineLenChars(0); n != 4 {
		t.Fatalf("expected 4 chars, got %d", n)
	}
}

func TestClampPosition(t *testing.T) {
	d := FromText("short\nlonger line")
	cases := []struct {
		in, want domain.Position
	}{
		{domain.Position{Line: 0, Column: 0}, domain.Position{Line: 0, Column: 0}},
		{domain.Position{Line: 0, Column: 99}, domain.Position{Line: 0, Column: 5}},
		{domain.Position{Line: 9, Column: 99}, domain.Position{Line: 1, Column: 11}},
		{domain.Position{Line: -3, Column: -1}, domain.Position{Line: 0, Column: 0}},
	}
	for _, c := range cases {
		got := d.ClampPosition(c.in)
		if got != c.want {
			t.Fatalf("clamp %+v: got %+v, want %+v", c.in, got, c.want)
		}
		if again := d.ClampPosition(got); again != got {
			t.Fatalf("clamp not idempotent: %+v -> %+v", got, again)
		}
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.fountain")
	if err := os.WriteFile(path, []byte("INT. LAB - NIGHT\r\n\r\nAction."), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", d.LineCount())
	}

	out := filepath.Join(dir, "out.fountain")
	if err := d.Save(out); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	// CR normalization is lossy on purpose: saving joins with bare "\n".
	if string(data) != "INT. LAB - NIGHT\n\nAction." {
		t.Fatalf("unexpected saved text: %q", string(data))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.fountain")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveNoTrailingNewline(t *testing.T) {
	d := FromText("a\nb")
	path := filepath.Join(t.TempDir(), "ab.txt")
	if err := d.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a\nb" {
		t.Fatalf("got %q, want %q", string(data), "a\nb")
	}
}
