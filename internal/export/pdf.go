/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a classified screenplay to distributable formats.
// The PDF exporter follows standard screenplay layout: US Letter, Courier
// 12pt, six lines per inch, with element indents matching the editor's
// formatted pane.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"screenwright/internal/domain"
)

// Page geometry in points. Courier 12pt is exactly 7.2pt per character and
// screenplay pages run six lines per inch.
const (
	pageWidthPt   = 612.0
	pageHeightPt  = 792.0
	topMarginPt   = 72.0
	bottomMargin  = 72.0
	leftMarginPt  = 108.0 // 1.5in binding margin
	charWidthPt   = 7.2
	lineHeightPt  = 12.0
	fontSizePt    = 12.0
	pageNumberY   = 36.0
	linesPerPage  = 54
	maxLineColumn = 61 // chars that fit between the margins
)

// PDFOptions controls PDF export behavior.
type PDFOptions struct {
	// TitlePage renders a title page from the manifest before the script.
	TitlePage bool
	// PageNumbers prints "N." top right from the second script page on.
	PageNumbers bool
}

// WriteScriptPDF renders parsed lines to a screenplay PDF at outPath,
// creating parent directories as needed. sp supplies title-page metadata
// and document properties.
func WriteScriptPDF(sp domain.Screenplay, parsed []domain.ParsedLine, outPath string, opt PDFOptions) error {
	if strings.TrimSpace(outPath) == "" {
		return fmt.Errorf("output path is required")
	}

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	title := strings.TrimSpace(sp.Title)
	if title == "" {
		title = "Untitled Screenplay"
	}
	pdf.SetTitle(title, true)
	if a := strings.TrimSpace(sp.Author); a != "" {
		pdf.SetAuthor(a, true)
	}
	pdf.SetFont("Courier", "", fontSizePt)

	if opt.TitlePage {
		writeTitlePage(pdf, sp, title)
	}

	scriptPage := 0
	lineOnPage := linesPerPage // force a page on first write
	newPage := func() {
		pdf.AddPage()
		scriptPage++
		lineOnPage = 0
		if opt.PageNumbers && scriptPage > 1 {
			num := fmt.Sprintf("%d.", scriptPage)
			x := pageWidthPt - 72.0 - float64(len(num))*charWidthPt
			pdf.Text(x, pageNumberY, num)
		}
	}
	writeLine := func(text string) {
		if lineOnPage >= linesPerPage {
			newPage()
		}
		if text != "" {
			y := topMarginPt + float64(lineOnPage)*lineHeightPt + lineHeightPt
			pdf.Text(leftMarginPt, y, text)
		}
		lineOnPage++
	}

	for i, p := range parsed {
		rows := wrapProcessed(p)
		// Keep a character cue attached to at least one dialogue line.
		if p.Kind == domain.Character && i+1 < len(parsed) {
			if linesPerPage-lineOnPage < len(rows)+1 {
				newPage()
			}
		}
		for _, row := range rows {
			writeLine(row)
		}
	}

	dir := filepath.Dir(outPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeTitlePage(pdf *gofpdf.Fpdf, sp domain.Screenplay, title string) {
	pdf.AddPage()
	center := func(y float64, text string) {
		x := (pageWidthPt - float64(len(text))*charWidthPt) / 2
		pdf.Text(x, y, text)
	}
	center(pageHeightPt*0.38, strings.ToUpper(title))
	y := pageHeightPt*0.38 + 3*lineHeightPt
	if a := strings.TrimSpace(sp.Author); a != "" {
		center(y, "written by")
		center(y+2*lineHeightPt, a)
		y += 5 * lineHeightPt
	}
	if d := strings.TrimSpace(sp.Draft); d != "" {
		center(y, d)
	}
	if c := strings.TrimSpace(sp.Contact); c != "" {
		// Contact block sits bottom left.
		cy := pageHeightPt - bottomMargin - lineHeightPt*float64(len(strings.Split(c, "\n"))-1)
		for _, line := range strings.Split(c, "\n") {
			pdf.Text(72.0, cy, line)
			cy += lineHeightPt
		}
	}
}

// wrapProcessed renders one parsed line as formatted rows, wrapping at the
// right margin and continuing at the same indent.
func wrapProcessed(p domain.ParsedLine) []string {
	if p.Kind == domain.Empty {
		return []string{""}
	}
	indent := p.IndentWidth()
	text := strings.TrimPrefix(p.ProcessedText(), strings.Repeat(" ", indent))
	width := maxLineColumn - indent
	if width < 10 {
		width = 10
	}

	pad := strings.Repeat(" ", indent)
	var rows []string
	for _, chunk := range wrapWords(text, width) {
		rows = append(rows, pad+chunk)
	}
	if len(rows) == 0 {
		rows = []string{""}
	}
	return rows
}

// wrapWords greedily wraps text to width characters, breaking on spaces.
// A word longer than the width is split hard.
func wrapWords(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		if strings.TrimSpace(text) == "" && text != "" {
			return []string{""}
		}
		return nil
	}

	var out []string
	cur := ""
	flush := func() {
		if cur != "" {
			out = append(out, cur)
			cur = ""
		}
	}
	for _, w := range words {
		for len([]rune(w)) > width {
			flush()
			r := []rune(w)
			out = append(out, string(r[:width]))
			w = string(r[width:])
		}
		switch {
		case cur == "":
			cur = w
		case len([]rune(cur))+1+len([]rune(w)) <= width:
			cur += " " + w
		default:
			flush()
			cur = w
		}
	}
	flush()
	return out
}
