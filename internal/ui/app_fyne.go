//go:build fyne && cgo

/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"screenwright/internal/config"
	"screenwright/internal/crash"
	"screenwright/internal/domain"
	"screenwright/internal/editor"
	"screenwright/internal/export"
	applog "screenwright/internal/log"
	"screenwright/internal/storage"
	"screenwright/internal/telemetry"
	"screenwright/internal/textlayout"
)

// Run starts the Fyne-based desktop editor: raw text on the left, the
// formatted screenplay on the right, both kept in sync through the session.
// path may be a workspace directory, a script file, or empty.
func Run(path string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	var ws *storage.WorkspaceHandle
	scriptPath := strings.TrimSpace(path)
	if scriptPath != "" {
		if fi, err := os.Stat(scriptPath); err == nil && fi.IsDir() {
			opened, oerr := storage.Open(scriptPath)
			if oerr != nil {
				return fmt.Errorf("open workspace %s: %w", scriptPath, oerr)
			}
			ws = opened
			scriptPath = ws.ScriptPath()
		}
	}
	if scriptPath == "" {
		scriptPath = cfg.Editor.DefaultLoadPath
	}

	sess := editor.Open(
		domain.NewDocumentPath(scriptPath, scriptPath),
		editor.Settings{DialogueDoubleSpaceNewline: cfg.Editor.DialogueDoubleSpaceNewline},
	)
	defer crash.Recover(ws, func() string { return sess.Document().ToText() })
	telemetry.Event("editor_open", map[string]any{"lines": sess.Document().LineCount()})

	fyneApp := app.NewWithID("screenwright")
	w := fyneApp.NewWindow("Screenwright")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel(sess.StatusLine())

	raw := widget.NewMultiLineEntry()
	raw.TextStyle = fyne.TextStyle{Monospace: true}
	raw.Wrapping = fyne.TextWrapOff
	raw.SetText(sess.Document().ToText())

	grid := textlayout.NewGrid(nil, textlayout.FontSpec{})
	processed := newProcessedPane()

	// Visual lines of the current full render; kept alongside the pane so
	// clicks can be mapped back to raw coordinates.
	var visual []editor.VisualLine

	refreshProcessed := func() {
		visual = sess.AllVisualLines()
		var b strings.Builder
		for i, vl := range visual {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(vl.Text)
		}
		processed.SetText(b.String())
		processed.Refresh()
	}

	refreshStatus := func() {
		status.SetText(sess.StatusLine())
	}

	raw.OnChanged = func(text string) {
		sess.ReplaceText(text)
		sess.SetCursor(domain.Position{Line: raw.CursorRow, Column: raw.CursorColumn}, true)
		refreshProcessed()
		refreshStatus()
	}
	raw.OnCursorChanged = func() {
		sess.SetCursor(domain.Position{Line: raw.CursorRow, Column: raw.CursorColumn}, true)
		refreshStatus()
	}

	// Clicking the formatted pane places the caret at the matching raw
	// position: row via line height, column via measured advances.
	processed.onTapped = func(e *fyne.PointEvent) {
		if len(visual) == 0 {
			return
		}
		row := grid.RowAtY(e.Position.Y)
		if row >= len(visual) {
			row = len(visual) - 1
		}
		vl := visual[row]
		col := grid.ColumnAtX(vl.Text, e.Position.X)
		rawCol := sess.RawColumnFromDisplay(vl, col)
		sess.SetCursor(domain.Position{Line: vl.SourceLine, Column: rawCol}, true)
		raw.CursorRow = vl.SourceLine
		raw.CursorColumn = rawCol
		raw.Refresh()
		w.Canvas().Focus(raw)
		refreshStatus()
	}

	refreshProcessed()

	saveTo := func(target string) {
		if err := sess.SaveTo(target); err == nil {
			telemetry.Event("editor_save", map[string]any{"lines": sess.Document().LineCount()})
		}
		refreshStatus()
	}

	doSave := func() { saveTo(sess.Paths().SavePath) }

	doSaveAs := func() {
		dialog.ShowFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			target := uc.URI().Path()
			_ = uc.Close()
			saveTo(target)
		}, w)
	}

	doOpen := func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			target := rc.URI().Path()
			_ = rc.Close()
			if lerr := sess.LoadFrom(target); lerr != nil {
				dialog.ShowError(lerr, w)
			} else {
				telemetry.Event("editor_load", map[string]any{"lines": sess.Document().LineCount()})
				raw.SetText(sess.Document().ToText())
				refreshProcessed()
			}
			refreshStatus()
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".fountain", ".txt"}))
		fd.Show()
	}

	doExportPDF := func() {
		dialog.ShowFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			target := uc.URI().Path()
			_ = uc.Close()
			sp := domain.Screenplay{Title: exportTitle(ws, sess)}
			if ws != nil {
				sp = ws.Screenplay
			}
			if werr := export.WriteScriptPDF(sp, sess.Parsed(), target, export.PDFOptions{TitlePage: true, PageNumbers: true}); werr != nil {
				dialog.ShowError(werr, w)
				return
			}
			telemetry.Event("export_pdf", nil)
			status.SetText(fmt.Sprintf("Exported %s", target))
		}, w)
	}

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", doOpen),
		fyne.NewMenuItem("Save", doSave),
		fyne.NewMenuItem("Save As...", doSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF...", doExportPDF),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu))

	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		doSave()
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		doOpen()
	})

	split := container.NewHSplit(
		container.NewScroll(raw),
		container.NewScroll(processed),
	)
	split.SetOffset(0.5)

	w.SetContent(container.NewBorder(nil, status, nil, nil, split))
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	w.ShowAndRun()
	return nil
}

func exportTitle(ws *storage.WorkspaceHandle, sess *editor.Session) string {
	if ws != nil && ws.Screenplay.Title != "" {
		return ws.Screenplay.Title
	}
	base := filepath.Base(sess.Paths().SavePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// processedPane is a read-only text grid that reports taps so the caret can
// be placed from the formatted view.
type processedPane struct {
	widget.TextGrid
	onTapped func(*fyne.PointEvent)
}

func newProcessedPane() *processedPane {
	p := &processedPane{}
	p.ExtendBaseWidget(p)
	return p
}

func (p *processedPane) Tapped(e *fyne.PointEvent) {
	if p.onTapped != nil {
		p.onTapped(e)
	}
}
