/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package buffer

import (
	"testing"

	"screenwright/internal/domain"
)

func TestMoveLeftWithinLine(t *testing.T) {
	d := FromText("abc")
	got := d.MoveLeft(domain.Position{Line: 0, Column: 2})
	if want := (domain.Position{Line: 0, Column: 1}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMoveLeftJoinsPreviousLine(t *testing.T) {
	d := FromText("hello\nworld")
	got := d.MoveLeft(domain.Position{Line: 1, Column: 0})
	if want := (domain.Position{Line: 0, Column: 5}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMoveLeftAtDocumentStartIsNoop(t *testing.T) {
	d := FromText("hello")
	got := d.MoveLeft(domain.Position{})
	if got != (domain.Position{}) {
		t.Fatalf("got %+v", got)
	}
}

func TestMoveRightWithinLine(t *testing.T) {
	d := FromText("abc")
	got := d.MoveRight(domain.Position{Line: 0, Column: 1})
	if want := (domain.Position{Line: 0, Column: 2}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMoveRightWrapsToNextLine(t *testing.T) {
	d := FromText("ab\ncd")
	got := d.MoveRight(domain.Position{Line: 0, Column: 2})
	if want := (domain.Position{Line: 1, Column: 0}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMoveRightAtDocumentEndIsNoop(t *testing.T) {
	d := FromText("ab")
	got := d.MoveRight(domain.Position{Line: 0, Column: 2})
	if want := (domain.Position{Line: 0, Column: 2}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMoveUpRemembersPreferredColumn(t *testing.T) {
	d := FromText("a long first line\nxy\nanother long line")

	// From the long third line through the short second line: the column
	// snaps to the short line's length but the preferred column survives
	// for the next vertical step.
	pos := domain.Position{Line: 2, Column: 10}
	preferred := 10

	pos = d.MoveUp(pos, preferred)
	if want := (domain.Position{Line: 1, Column: 2}); pos != want {
		t.Fatalf("after first up: %+v, want %+v", pos, want)
	}

	pos = d.MoveUp(pos, preferred)
	if want := (domain.Position{Line: 0, Column: 10}); pos != want {
		t.Fatalf("after second up: %+v, want %+v", pos, want)
	}
}

func TestMoveUpAtFirstLineIsNoop(t *testing.T) {
	d := FromText("ab\ncd")
	got := d.MoveUp(domain.Position{Line: 0, Column: 1}, 1)
	if want := (domain.Position{Line: 0, Column: 1}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMoveDownUsesPreferredColumn(t *testing.T) {
	d := FromText("long line here\nab")
	got := d.MoveDown(domain.Position{Line: 0, Column: 9}, 9)
	if want := (domain.Position{Line: 1, Column: 2}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMoveDownAtLastLineIsNoop(t *testing.T) {
	d := FromText("ab\ncd")
	got := d.MoveDown(domain.Position{Line: 1, Column: 1}, 1)
	if want := (domain.Position{Line: 1, Column: 1}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
