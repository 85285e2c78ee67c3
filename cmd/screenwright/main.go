/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"screenwright/internal/archive"
	"screenwright/internal/backend"
	"screenwright/internal/crash"
	"screenwright/internal/domain"
	"screenwright/internal/export"
	applog "screenwright/internal/log"
	"screenwright/internal/script"
	"screenwright/internal/storage"
	"screenwright/internal/telemetry"
	"screenwright/internal/ui"
	"screenwright/internal/version"
)

func usage() {
	fmt.Println("Screenwright — screenplay editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  screenwright version|-v|--version           Show version")
	fmt.Println("  screenwright init <dir> <title>             Create a new workspace at <dir>")
	fmt.Println("  screenwright open <dir>                     Open workspace at <dir> and print summary")
	fmt.Println("  screenwright save <dir>                     Save workspace at <dir> (creates backup)")
	fmt.Println("  screenwright fmt <file>                     Print the formatted screenplay")
	fmt.Println("  screenwright outline <file>                 Print scene headings and characters")
	fmt.Println("  screenwright export <file> <out.pdf>        Export a screenplay PDF")
	fmt.Println("  screenwright index <dir>                    Update the workspace search index")
	fmt.Println("  screenwright search <dir> [flags] <query>   Search the workspace index")
	fmt.Println("  screenwright snapshot <dir> [list|prune N]  Snapshot the script, or manage snapshots")
	fmt.Println("  screenwright bundle <dir> <out.zip>         Bundle the workspace into a zip")
	fmt.Println("  screenwright unbundle <dir> <in.zip>        Extract a bundle into a workspace")
	fmt.Println("  screenwright serve                          Run the sync server")
	fmt.Println("  screenwright ui [<path>]                    Launch desktop UI (build with -tags fyne)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ws *storage.WorkspaceHandle
	defer func() { crash.Recover(ws, nil) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Screenwright — screenplay editor")
		fmt.Println(version.String())

	case "init":
		if len(args) < 4 {
			fmt.Println("init requires <dir> and <title>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		title := args[3]
		l.Info("init workspace", slog.String("root", abs), slog.String("title", title))
		h, err := storage.InitWorkspace(abs, domain.Screenplay{Title: title})
		if err != nil {
			fail(l, "init failed", err)
		}
		ws = h
		fmt.Println("Created workspace at", abs)

	case "open":
		h := mustOpen(l, args, "open")
		ws = h
		fmt.Printf("Opened screenplay: %s\n", h.Screenplay.Title)
		fmt.Println("Script:", h.ScriptPath())
		fmt.Println("Root:", h.Root)

	case "save":
		h := mustOpen(l, args, "save")
		ws = h
		h.Screenplay.Metadata.UpdatedAt = time.Now().Format(time.RFC3339)
		if err := storage.Save(h); err != nil {
			fail(l, "save failed", err)
		}
		fmt.Println("Saved workspace and created a backup of previous manifest (if any).")

	case "fmt":
		parsed := mustClassifyFile(l, args, "fmt")
		for _, p := range parsed {
			fmt.Println(p.ProcessedText())
		}

	case "outline":
		parsed := mustClassifyFile(l, args, "outline")
		fmt.Println("Scenes:")
		for _, sc := range script.Scenes(parsed) {
			fmt.Printf("  %4d  %s\n", sc.Line+1, sc.Heading)
		}
		fmt.Println("Characters:")
		for _, name := range script.Characters(parsed) {
			fmt.Printf("  %s\n", name)
		}

	case "export":
		if len(args) < 4 {
			fmt.Println("export requires <file> and <out.pdf>")
			usage()
			os.Exit(2)
		}
		parsed := mustClassifyFile(l, args, "export")
		title := strings.TrimSuffix(filepath.Base(args[2]), filepath.Ext(args[2]))
		sp := domain.Screenplay{Title: title}
		if err := export.WriteScriptPDF(sp, parsed, args[3], export.PDFOptions{TitlePage: true, PageNumbers: true}); err != nil {
			fail(l, "export failed", err)
		}
		telemetry.Event("export_pdf", map[string]any{"lines": len(parsed)})
		fmt.Println("Exported", args[3])

	case "index":
		h := mustOpen(l, args, "index")
		ws = h
		ctx := context.Background()
		if rebuilt, err := storage.DetectAndRebuildIndex(ctx, h); err != nil {
			fail(l, "index check failed", err)
		} else if rebuilt {
			fmt.Println("Index was corrupt and has been rebuilt.")
		}
		if err := storage.UpdateIndex(ctx, h); err != nil {
			fail(l, "index update failed", err)
		}
		telemetry.Event("index_rebuild", nil)
		fmt.Println("Index updated at", storage.IndexPath(h.Root))

	case "search":
		runSearch(l, args[2:])

	case "snapshot":
		runSnapshot(l, args[2:], &ws)

	case "bundle":
		if len(args) < 4 {
			fmt.Println("bundle requires <dir> and <out.zip>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		if err := archive.ExportWorkspace(abs, args[3]); err != nil {
			fail(l, "bundle failed", err)
		}
		fmt.Println("Bundled workspace into", args[3])

	case "unbundle":
		if len(args) < 4 {
			fmt.Println("unbundle requires <dir> and <in.zip>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		n, err := archive.ImportBundle(abs, args[3])
		if err != nil {
			fail(l, "unbundle failed", err)
		}
		fmt.Printf("Extracted %d files into %s\n", n, abs)

	case "serve":
		if err := backend.Start(); err != nil {
			fail(l, "server failed", err)
		}

	case "ui":
		var path string
		if len(args) >= 3 {
			path = args[2]
		}
		if err := ui.Run(path); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}

	default:
		usage()
	}
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func mustOpen(l *slog.Logger, args []string, cmd string) *storage.WorkspaceHandle {
	if len(args) < 3 {
		fmt.Printf("%s requires <dir>\n", cmd)
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open workspace", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	return h
}

func mustClassifyFile(l *slog.Logger, args []string, cmd string) []domain.ParsedLine {
	if len(args) < 3 {
		fmt.Printf("%s requires <file>\n", cmd)
		usage()
		os.Exit(2)
	}
	b, err := os.ReadFile(args[2])
	if err != nil {
		fail(l, "read failed", err)
	}
	return script.ClassifyText(string(b))
}

func runSearch(l *slog.Logger, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	kind := fs.String("kind", "", "restrict to a line kind (scene_heading, action, character, dialogue, parenthetical, transition)")
	from := fs.Int("from", 0, "first line, 1-based inclusive")
	to := fs.Int("to", 0, "last line, 1-based inclusive")
	limit := fs.Int("limit", 0, "maximum results")
	if len(args) < 1 {
		fmt.Println("search requires <dir> [flags] <query>")
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[0])
	_ = fs.Parse(args[1:])

	q := storage.SearchQuery{
		Text:     strings.Join(fs.Args(), " "),
		LineFrom: *from,
		LineTo:   *to,
		Limit:    *limit,
	}
	if *kind != "" {
		q.Kinds = []string{*kind}
	}
	results, err := storage.Search(context.Background(), abs, q)
	if err != nil {
		fail(l, "search failed", err)
	}
	telemetry.Event("search_run", map[string]any{"results": len(results)})
	for _, r := range results {
		loc := "meta"
		if r.LineNo >= 0 {
			loc = fmt.Sprintf("%d", r.LineNo+1)
		}
		text := r.Snippet
		if text == "" {
			text = r.Text
		}
		fmt.Printf("%s:%s  [%s]  %s\n", abs, loc, r.Kind, text)
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
	}
}

func runSnapshot(l *slog.Logger, args []string, wsOut **storage.WorkspaceHandle) {
	if len(args) < 1 {
		fmt.Println("snapshot requires <dir> [list|prune N]")
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[0])
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	*wsOut = h
	ctx := context.Background()

	if len(args) == 1 {
		b, err := os.ReadFile(h.ScriptPath())
		if err != nil {
			fail(l, "read script failed", err)
		}
		if err := storage.SaveScriptSnapshot(ctx, h, string(b), time.Now()); err != nil {
			fail(l, "snapshot failed", err)
		}
		fmt.Println("Snapshot saved.")
		return
	}

	switch args[1] {
	case "list":
		snaps, err := storage.ListScriptSnapshots(ctx, h, 0)
		if err != nil {
			fail(l, "list snapshots failed", err)
		}
		for _, s := range snaps {
			fmt.Printf("%s  (%d bytes)\n", s.TS.Format(time.RFC3339), len(s.Text))
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots.")
		}
	case "prune":
		keep := 10
		if len(args) >= 3 {
			fmt.Sscanf(args[2], "%d", &keep)
		}
		n, err := storage.PruneOldScriptSnapshots(ctx, h, keep)
		if err != nil {
			fail(l, "prune failed", err)
		}
		fmt.Printf("Pruned %d snapshots, kept newest %d.\n", n, keep)
	default:
		fmt.Println("snapshot action must be omitted, list, or prune")
		os.Exit(2)
	}
}
