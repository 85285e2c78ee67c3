/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"screenwright/internal/domain"
)

const indexTestScript = `INT. LAB - NIGHT

MIRA
We are close.  I can feel it.

She flips the switch.

CUT TO:
`

func newIndexedWorkspace(t *testing.T) *WorkspaceHandle {
	t.Helper()
	root := t.TempDir()
	ws, err := InitWorkspace(root, domain.Screenplay{
		Title:    "Index Test",
		Author:   "Q. Tern",
		SavePath: filepath.Join(ScriptsDirName, "test.fountain"),
	})
	if err != nil {
		t.Fatalf("InitWorkspace error: %v", err)
	}
	if err := os.WriteFile(ws.ScriptPath(), []byte(indexTestScript), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return ws
}

func TestInitOrOpenIndexCreatesFile(t *testing.T) {
	ws := newIndexedWorkspace(t)
	db, err := InitOrOpenIndex(ws.Root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(IndexPath(ws.Root)); err != nil {
		t.Fatalf("index file missing: %v", err)
	}

	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
}

func TestBuildIndexIfEmptyPopulatesLines(t *testing.T) {
	ws := newIndexedWorkspace(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := BuildIndexIfEmpty(ctx, ws); err != nil {
		t.Fatalf("BuildIndexIfEmpty error: %v", err)
	}

	db, err := InitOrOpenIndex(ws.Root)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer db.Close()

	counts := map[string]int{}
	rows, err := db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM lines GROUP BY kind`)
	if err != nil {
		t.Fatalf("count query: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			t.Fatalf("scan: %v", err)
		}
		counts[kind] = n
	}

	if counts["title"] != 1 || counts["author"] != 1 {
		t.Fatalf("manifest rows missing: %v", counts)
	}
	if counts["scene_heading"] != 1 || counts["character"] != 1 || counts["dialogue"] != 1 || counts["transition"] != 1 {
		t.Fatalf("script rows wrong: %v", counts)
	}
	if counts["action"] != 1 {
		t.Fatalf("action rows wrong: %v", counts)
	}

	// Empty lines are not indexed.
	if counts["empty"] != 0 {
		t.Fatalf("empty lines indexed: %v", counts)
	}
}

func TestBuildIndexIfEmptyIsIdempotent(t *testing.T) {
	ws := newIndexedWorkspace(t)
	ctx := context.Background()

	if err := BuildIndexIfEmpty(ctx, ws); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if err := BuildIndexIfEmpty(ctx, ws); err != nil {
		t.Fatalf("second build: %v", err)
	}

	db, err := InitOrOpenIndex(ws.Root)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM lines WHERE kind='title'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("title rows = %d after repeated build", n)
	}
}

func TestUpdateIndexReflectsScriptEdits(t *testing.T) {
	ws := newIndexedWorkspace(t)
	ctx := context.Background()

	if err := BuildIndexIfEmpty(ctx, ws); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := os.WriteFile(ws.ScriptPath(), []byte("EXT. ROOF - DAY\n\nWind howls."), 0o644); err != nil {
		t.Fatalf("rewrite script: %v", err)
	}
	if err := UpdateIndex(ctx, ws); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}

	res, err := Search(ctx, ws.Root, SearchQuery{Text: "howls"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 1 || res[0].Kind != "action" {
		t.Fatalf("results %+v", res)
	}
	if res, _ := Search(ctx, ws.Root, SearchQuery{Text: "MIRA"}); len(res) != 0 {
		t.Fatalf("stale rows survived update: %+v", res)
	}
}

func TestDetectAndRebuildIndexOnCorruption(t *testing.T) {
	ws := newIndexedWorkspace(t)
	ctx := context.Background()

	if err := BuildIndexIfEmpty(ctx, ws); err != nil {
		t.Fatalf("build: %v", err)
	}
	// Overwrite the database file with garbage.
	if err := os.WriteFile(IndexPath(ws.Root), []byte("not a database"), 0o644); err != nil {
		t.Fatalf("corrupt index: %v", err)
	}

	rebuilt, err := DetectAndRebuildIndex(ctx, ws)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex error: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected a rebuild")
	}

	res, err := Search(ctx, ws.Root, SearchQuery{Text: "close"})
	if err != nil {
		t.Fatalf("search after rebuild: %v", err)
	}
	if len(res) == 0 {
		t.Fatalf("rebuilt index has no content")
	}
}

func TestDetectAndRebuildIndexHealthyNoop(t *testing.T) {
	ws := newIndexedWorkspace(t)
	ctx := context.Background()
	if err := BuildIndexIfEmpty(ctx, ws); err != nil {
		t.Fatalf("build: %v", err)
	}
	rebuilt, err := DetectAndRebuildIndex(ctx, ws)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex error: %v", err)
	}
	if rebuilt {
		t.Fatalf("healthy index should not be rebuilt")
	}
}
