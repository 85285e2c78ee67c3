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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "screenwright/internal/log"
	"screenwright/internal/script"
	"screenwright/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-workspace ephemeral/index data under the
	// workspace root.
	IndexDirName  = ".swright"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this on breaking schema changes and add a migration step.
	schemaVersion = 2
)

// IndexPath returns the full path to the workspace's embedded index
// database file.
func IndexPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures the per-workspace SQLite index exists at
// .swright/index.sqlite, opens it, enables WAL mode, and makes sure the
// meta/version tables and line schema exist. The returned *sql.DB is ready
// for use; callers close it when done.
func InitOrOpenIndex(workspaceRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", workspaceRoot),
	)
	if strings.TrimSpace(workspaceRoot) == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(filepath.Join(workspaceRoot, IndexDirName), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	path := IndexPath(workspaceRoot)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; migrations own the schema column.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Never downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_lines_kind ON lines(kind);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
			// Best-effort FTS optimize outside the tx.
			_, _ = db.ExecContext(ctx, `INSERT INTO fts_lines(fts_lines) VALUES('optimize')`)
		default:
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates the line tables and FTS structures if missing.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per classified script line, plus manifest metadata rows
		// with a NULL line_no (title, author, notes).
		`CREATE TABLE IF NOT EXISTS lines (
			line_id INTEGER PRIMARY KEY,
			line_no INTEGER,
			kind    TEXT    NOT NULL,
			text    TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lines_no ON lines(line_no);`,

		// Contentless FTS5 index fed from lines via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_lines USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,

		// Script snapshots (history of full script text for change tracking).
		`CREATE TABLE IF NOT EXISTS script_snapshots (
			id    INTEGER PRIMARY KEY,
			ts    TEXT    NOT NULL,
			text  TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_script_snapshots_ts ON script_snapshots(ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS lines_ai AFTER INSERT ON lines BEGIN
			INSERT INTO fts_lines(rowid, text) VALUES (new.line_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS lines_ad AFTER DELETE ON lines BEGIN
			INSERT INTO fts_lines(fts_lines, rowid, text) VALUES ('delete', old.line_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS lines_au AFTER UPDATE OF text ON lines BEGIN
			INSERT INTO fts_lines(fts_lines, rowid, text) VALUES ('delete', old.line_id, old.text);
			INSERT INTO fts_lines(rowid, text) VALUES (new.line_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// DetectAndRebuildIndex checks for corruption or missing schema and
// rebuilds the index if needed. It returns true when a rebuild happened.
func DetectAndRebuildIndex(ctx context.Context, ws *WorkspaceHandle) (bool, error) {
	if ws == nil {
		return false, errors.New("nil WorkspaceHandle")
	}
	path := IndexPath(ws.Root)
	db, err := InitOrOpenIndex(ws.Root)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, ws); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM lines LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, ws); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped backup
// in .swright/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// BuildIndexIfEmpty ensures the index exists and, when it holds no line
// content yet, populates it from the manifest and script text.
func BuildIndexIfEmpty(ctx context.Context, ws *WorkspaceHandle) error {
	if ws == nil {
		return errors.New("nil WorkspaceHandle")
	}
	db, err := InitOrOpenIndex(ws.Root)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lines;").Scan(&cnt); err != nil {
		return fmt.Errorf("check lines count: %w", err)
	}
	if cnt > 0 {
		return nil
	}
	return rebuildLinesFromWorkspace(ctx, db, ws)
}

// UpdateIndex replaces the indexed line content from the manifest and the
// current script text.
func UpdateIndex(ctx context.Context, ws *WorkspaceHandle) error {
	if ws == nil {
		return errors.New("nil WorkspaceHandle")
	}
	db, err := InitOrOpenIndex(ws.Root)
	if err != nil {
		return err
	}
	defer db.Close()
	return rebuildLinesFromWorkspace(ctx, db, ws)
}

// RebuildIndex drops and recreates the line tables and rebuilds content
// from the manifest and script text. meta/version tables are preserved;
// snapshot history is derived state and is rebuilt empty.
func RebuildIndex(ctx context.Context, ws *WorkspaceHandle) error {
	if ws == nil {
		return errors.New("nil WorkspaceHandle")
	}
	db, err := InitOrOpenIndex(ws.Root)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TRIGGER IF EXISTS lines_ai;",
		"DROP TRIGGER IF EXISTS lines_ad;",
		"DROP TRIGGER IF EXISTS lines_au;",
		"DROP TABLE IF EXISTS lines;",
		"DROP TABLE IF EXISTS fts_lines;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	if err := runMigrations(ctx, db); err != nil {
		return err
	}
	return rebuildLinesFromWorkspace(ctx, db, ws)
}

// rebuildLinesFromWorkspace replaces the lines table content from the
// manifest and the classified script text.
func rebuildLinesFromWorkspace(ctx context.Context, db *sql.DB, ws *WorkspaceHandle) error {
	type row struct {
		lineNo sql.NullInt64
		kind   string
		text   string
	}
	rows := make([]row, 0, 256)

	sp := ws.Screenplay
	if s := strings.TrimSpace(sp.Title); s != "" {
		rows = append(rows, row{kind: "title", text: s})
	}
	if s := strings.TrimSpace(sp.Author); s != "" {
		rows = append(rows, row{kind: "author", text: s})
	}
	if s := strings.TrimSpace(sp.Draft); s != "" {
		rows = append(rows, row{kind: "draft", text: s})
	}
	if s := strings.TrimSpace(sp.Contact); s != "" {
		rows = append(rows, row{kind: "contact", text: s})
	}
	if s := strings.TrimSpace(sp.Metadata.Notes); s != "" {
		rows = append(rows, row{kind: "notes", text: s})
	}

	// Classified script lines, one row each, 0-based line numbers.
	if b, err := os.ReadFile(ws.ScriptPath()); err == nil {
		for i, p := range script.ClassifyText(string(b)) {
			if strings.TrimSpace(p.Raw) == "" {
				continue
			}
			rows = append(rows, row{
				lineNo: sql.NullInt64{Int64: int64(i), Valid: true},
				kind:   p.Kind.String(),
				text:   p.Raw,
			})
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM lines;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear lines: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO lines(line_no, kind, text) VALUES(?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range rows {
		if _, err := ins.ExecContext(ctx, r.lineNo, r.kind, r.text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert line: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
