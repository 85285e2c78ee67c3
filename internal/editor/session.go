/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor owns the state of one open screenplay: the document, its
// classified view, the cursor, scroll position, document paths and status
// message. It translates caller intents (typing, movement, load, save)
// into buffer operations and re-derives the classified view after every
// edit. The session is single-owner and synchronous; callers serialize
// access.
package editor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"screenwright/internal/buffer"
	"screenwright/internal/domain"
	applog "screenwright/internal/log"
	"screenwright/internal/script"
)

// Settings are the user-facing editor options.
type Settings struct {
	// DialogueDoubleSpaceNewline renders two consecutive spaces inside a
	// dialogue line as a line break in the processed view.
	DialogueDoubleSpaceNewline bool
}

// Session is one open document plus everything derived from it.
type Session struct {
	doc      *buffer.Document
	parsed   []domain.ParsedLine
	cursor   domain.Cursor
	topLine  int
	paths    domain.DocumentPath
	status   string
	settings Settings
	log      *slog.Logger
}

// Open loads the document at paths.LoadPath. A failed load is not an
// error: the session starts with an empty document and a status message
// explaining why, matching how the editor greets a missing session file.
func Open(paths domain.DocumentPath, settings Settings) *Session {
	s := &Session{
		paths:    paths,
		settings: settings,
		log:      applog.WithComponent("editor"),
	}

	doc, err := buffer.Load(paths.LoadPath)
	if err != nil {
		s.doc = buffer.New()
		s.status = fmt.Sprintf("Could not load %s (%v). Started empty document.", paths.LoadPath, err)
		s.log.Warn("initial load failed", slog.String("path", paths.LoadPath), slog.Any("err", err))
	} else {
		s.doc = doc
		s.status = fmt.Sprintf("Loaded %s", paths.LoadPath)
	}
	s.reparse()
	return s
}

// NewEmpty returns a session over a fresh empty document.
func NewEmpty(settings Settings) *Session {
	s := &Session{
		doc:      buffer.New(),
		settings: settings,
		log:      applog.WithComponent("editor"),
	}
	s.reparse()
	return s
}

func (s *Session) Document() *buffer.Document  { return s.doc }
func (s *Session) Parsed() []domain.ParsedLine { return s.parsed }
func (s *Session) Cursor() domain.Cursor       { return s.cursor }
func (s *Session) TopLine() int                { return s.topLine }
func (s *Session) Paths() domain.DocumentPath  { return s.paths }
func (s *Session) Status() string              { return s.status }
func (s *Session) Settings() Settings          { return s.settings }
func (s *Session) SetSettings(set Settings)    { s.settings = set }

// StatusLine formats the status bar text: message, 1-based cursor
// location, and both document paths.
func (s *Session) StatusLine() string {
	return fmt.Sprintf("%s | line %d, col %d | load: %s | save: %s",
		s.status,
		s.cursor.Position.Line+1,
		s.cursor.Position.Column+1,
		s.paths.LoadPath,
		s.paths.SavePath,
	)
}

func (s *Session) reparse() {
	s.parsed = script.Classify(s.doc.Lines())
}

// SetCursor clamps pos into the document and moves the cursor there.
// updatePreferred records the column as the new horizontal intent; pure
// vertical moves pass false so the preferred column survives.
func (s *Session) SetCursor(pos domain.Position, updatePreferred bool) {
	clamped := s.doc.ClampPosition(pos)
	if updatePreferred {
		s.cursor.SetPosition(clamped)
	} else {
		s.cursor.Position = clamped
	}
}

// InsertText types text at the cursor; newlines split lines.
func (s *Session) InsertText(text string) {
	s.SetCursor(s.doc.InsertText(s.cursor.Position, text), true)
	s.reparse()
}

// InsertNewline splits the current line at the cursor.
func (s *Session) InsertNewline() {
	s.SetCursor(s.doc.InsertNewline(s.cursor.Position), true)
	s.reparse()
}

// Backspace deletes backwards, merging lines at column 0.
func (s *Session) Backspace() {
	s.SetCursor(s.doc.Backspace(s.cursor.Position), true)
	s.reparse()
}

// Delete deletes forwards, merging lines at end-of-line. The cursor does
// not move, so the preferred column is left alone.
func (s *Session) Delete() {
	s.SetCursor(s.doc.Delete(s.cursor.Position), false)
	s.reparse()
}

func (s *Session) MoveLeft() {
	s.SetCursor(s.doc.MoveLeft(s.cursor.Position), true)
}

func (s *Session) MoveRight() {
	s.SetCursor(s.doc.MoveRight(s.cursor.Position), true)
}

func (s *Session) MoveUp() {
	s.SetCursor(s.doc.MoveUp(s.cursor.Position, s.cursor.PreferredColumn), false)
}

func (s *Session) MoveDown() {
	s.SetCursor(s.doc.MoveDown(s.cursor.Position, s.cursor.PreferredColumn), false)
}

func (s *Session) MoveHome() {
	s.SetCursor(domain.Position{Line: s.cursor.Position.Line, Column: 0}, true)
}

func (s *Session) MoveEnd() {
	line := s.cursor.Position.Line
	s.SetCursor(domain.Position{Line: line, Column: s.doc.LineLenChars(line)}, true)
}

// PageUp moves the cursor up by one page. The page step is one less than
// the viewport height so a context line stays visible.
func (s *Session) PageUp(visibleLines int) {
	step := pageStep(visibleLines)
	line := s.cursor.Position.Line - step
	if line < 0 {
		line = 0
	}
	s.setCursorLinePreferred(line)
	s.EnsureCursorVisible(visibleLines)
}

// PageDown moves the cursor down by one page.
func (s *Session) PageDown(visibleLines int) {
	step := pageStep(visibleLines)
	line := s.cursor.Position.Line + step
	if last := s.doc.LineCount() - 1; line > last {
		line = last
	}
	s.setCursorLinePreferred(line)
	s.EnsureCursorVisible(visibleLines)
}

func (s *Session) setCursorLinePreferred(line int) {
	column := s.cursor.PreferredColumn
	if max := s.doc.LineLenChars(line); column > max {
		column = max
	}
	s.SetCursor(domain.Position{Line: line, Column: column}, false)
}

func pageStep(visibleLines int) int {
	step := visibleLines - 1
	if step < 1 {
		step = 1
	}
	return step
}

// maxTopLine is the largest scroll offset that still fills the viewport.
func (s *Session) maxTopLine(visibleLines int) int {
	if visibleLines < 1 {
		visibleLines = 1
	}
	max := s.doc.LineCount() - visibleLines
	if max < 0 {
		max = 0
	}
	return max
}

// ClampScroll pulls the scroll offset back into range after the document
// shrank or the viewport grew.
func (s *Session) ClampScroll(visibleLines int) {
	if max := s.maxTopLine(visibleLines); s.topLine > max {
		s.topLine = max
	}
}

// ScrollBy scrolls the viewport without moving the cursor.
func (s *Session) ScrollBy(lineDelta, visibleLines int) {
	next := s.topLine + lineDelta
	if next < 0 {
		next = 0
	}
	if max := s.maxTopLine(visibleLines); next > max {
		next = max
	}
	s.topLine = next
}

// EnsureCursorVisible scrolls the minimum amount needed to bring the
// cursor line into the viewport.
func (s *Session) EnsureCursorVisible(visibleLines int) {
	line := s.cursor.Position.Line
	if line < s.topLine {
		s.topLine = line
	} else if visibleLines > 0 && line >= s.topLine+visibleLines {
		s.topLine = line - (visibleLines - 1)
	}
	s.ClampScroll(visibleLines)
}

// ClampCursorToVisibleRange drags the cursor back into the viewport after
// a scroll, keeping the preferred column.
func (s *Session) ClampCursorToVisibleRange(visibleLines int) {
	if s.doc.IsEmpty() {
		s.SetCursor(domain.Position{}, true)
		return
	}

	minLine := s.topLine
	maxLine := s.topLine + visibleLines - 1
	if last := s.doc.LineCount() - 1; maxLine > last {
		maxLine = last
	}
	if maxLine < minLine {
		maxLine = minLine
	}

	line := s.cursor.Position.Line
	if line >= minLine && line <= maxLine {
		return
	}
	if line < minLine {
		line = minLine
	} else {
		line = maxLine
	}
	s.setCursorLinePreferred(line)
}

// VisiblePlainLines returns the raw lines in the current viewport.
func (s *Session) VisiblePlainLines(visibleLines int) []string {
	lines := s.doc.Lines()
	last := s.topLine + visibleLines
	if last > len(lines) {
		last = len(lines)
	}
	if s.topLine >= last {
		return nil
	}
	out := make([]string, last-s.topLine)
	copy(out, lines[s.topLine:last])
	return out
}

// ReplaceText swaps the whole document for text, keeping paths and status.
// The cursor is clamped into the new document. Used by UI surfaces that own
// their own editing widget and push the result back into the session.
func (s *Session) ReplaceText(text string) {
	s.doc = buffer.FromText(text)
	s.reparse()
	s.SetCursor(s.cursor.Position, false)
	s.ClampScroll(1)
}

// SaveTo writes the document to path, creating missing parent directories.
// On success only the save path follows the target, so "load A, save as B"
// keeps the load path at A.
func (s *Session) SaveTo(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}

	if err := s.doc.Save(path); err != nil {
		s.status = fmt.Sprintf("Save failed for %s: %v", path, err)
		s.log.Error("save failed", slog.String("path", path), slog.Any("err", err))
		return err
	}
	s.paths.SavePath = path
	s.status = fmt.Sprintf("Saved %s", path)
	s.log.Info("saved", slog.String("path", path))
	return nil
}

// Save writes to the current save path.
func (s *Session) Save() error {
	return s.SaveTo(s.paths.SavePath)
}

// LoadFrom replaces the document with the file at path. On success both
// paths point at the loaded file and cursor/scroll reset; on failure the
// current document is left untouched.
func (s *Session) LoadFrom(path string) error {
	doc, err := buffer.Load(path)
	if err != nil {
		s.status = fmt.Sprintf("Load failed for %s: %v", path, err)
		s.log.Error("load failed", slog.String("path", path), slog.Any("err", err))
		return err
	}

	s.doc = doc
	s.reparse()
	s.cursor = domain.Cursor{}
	s.topLine = 0
	s.paths.LoadPath = path
	s.paths.SavePath = path
	s.status = fmt.Sprintf("Loaded %s", path)
	s.log.Info("loaded", slog.String("path", path), slog.Int("lines", doc.LineCount()))
	return nil
}
