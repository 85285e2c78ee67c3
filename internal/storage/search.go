/*
 * Copyright (c) 2025 the Screenwright authors.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SearchQuery describes the in-app search request.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Kinds restricts matches to element kinds like scene_heading, dialogue,
// character; manifest rows use title, author, draft, contact, notes.
// LineFrom/To are inclusive 1-based script line numbers; 0 means unset.
// Limit/Offset implement pagination with defaults applied when zero.
type SearchQuery struct {
	Text     string
	Kinds    []string
	LineFrom int
	LineTo   int
	Limit    int
	Offset   int
}

// SearchResult is a single match row. LineNo is -1 for manifest rows.
// Snippet carries a highlighted excerpt with [ ] markers when FTS is used.
type SearchResult struct {
	LineID  int64
	LineNo  int
	Kind    string
	Text    string
	Snippet string
}

// Search performs full-text search with optional filters over the embedded
// index. When q.Text is empty it falls back to a plain scan with filters.
func Search(ctx context.Context, workspaceRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(workspaceRoot) == "" {
		return nil, errors.New("workspace root is required")
	}
	db, err := InitOrOpenIndex(workspaceRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT l.line_id, COALESCE(l.line_no,-1), l.kind, COALESCE(l.text,''), snippet(fts_lines, 0, '[', ']', '...', 10)\n")
		sb.WriteString("FROM fts_lines JOIN lines l ON fts_lines.rowid = l.line_id\n")
		sb.WriteString("WHERE fts_lines MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT l.line_id, COALESCE(l.line_no,-1), l.kind, COALESCE(l.text,''), ''\n")
		sb.WriteString("FROM lines l\nWHERE 1=1\n")
	}
	if len(q.Kinds) > 0 {
		sb.WriteString(" AND l.kind IN (" + placeholders(len(q.Kinds)) + ")\n")
		for _, k := range q.Kinds {
			args = append(args, k)
		}
	}
	// line_no is stored 0-based; the query bounds are 1-based.
	if q.LineFrom > 0 && q.LineTo > 0 && q.LineTo >= q.LineFrom {
		sb.WriteString(" AND l.line_no BETWEEN ? AND ?\n")
		args = append(args, q.LineFrom-1, q.LineTo-1)
	} else if q.LineFrom > 0 {
		sb.WriteString(" AND l.line_no >= ?\n")
		args = append(args, q.LineFrom-1)
	} else if q.LineTo > 0 {
		sb.WriteString(" AND l.line_no <= ?\n")
		args = append(args, q.LineTo-1)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY l.line_no NULLS LAST, l.line_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var sn sql.NullString
		if err := rows.Scan(&r.LineID, &r.LineNo, &r.Kind, &r.Text, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SceneHeadings returns the indexed scene heading lines in script order,
// giving a persistent scene outline without reparsing the script.
func SceneHeadings(ctx context.Context, workspaceRoot string) ([]SearchResult, error) {
	return Search(ctx, workspaceRoot, SearchQuery{
		Kinds: []string{"scene_heading"},
		Limit: 1000,
	})
}

// DialogueByCharacter returns dialogue lines spoken after cues matching
// name. The match walks the indexed lines in order, tracking the active
// cue, mirroring how dialogue blocks attach to the preceding character.
func DialogueByCharacter(ctx context.Context, workspaceRoot, name string) ([]SearchResult, error) {
	all, err := Search(ctx, workspaceRoot, SearchQuery{
		Kinds: []string{"character", "dialogue", "parenthetical"},
		Limit: 100000,
	})
	if err != nil {
		return nil, err
	}
	want := strings.ToUpper(strings.TrimSpace(name))
	var out []SearchResult
	active := false
	for _, r := range all {
		switch r.Kind {
		case "character":
			cue := strings.ToUpper(strings.TrimSpace(r.Text))
			if i := strings.Index(cue, "("); i >= 0 {
				cue = strings.TrimSpace(cue[:i])
			}
			active = cue == want
		case "dialogue":
			if active {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
