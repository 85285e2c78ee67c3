/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"screenwright/internal/storage"
)

// SearchPG runs the same query shape as storage.Search against the server's
// script_lines projection, so a client can search without pulling the body.
// Results are ordered by line number; LineNo is 0-based like the local index.
func SearchPG(ctx context.Context, db *sql.DB, scriptID int64, q storage.SearchQuery) ([]storage.SearchResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "script_id = "+arg(scriptID))

	text := strings.TrimSpace(q.Text)
	selectSnippet := "''"
	if text != "" {
		p := arg(text)
		conds = append(conds, "search_vector @@ plainto_tsquery('simple', "+p+")")
		selectSnippet = "ts_headline('simple', raw_text, plainto_tsquery('simple', " + p + "), 'StartSel=[, StopSel=], MaxWords=10, MinWords=1')"
	}
	if len(q.Kinds) > 0 {
		ps := make([]string, len(q.Kinds))
		for i, k := range q.Kinds {
			ps[i] = arg(k)
		}
		conds = append(conds, "kind IN ("+strings.Join(ps, ", ")+")")
	}
	// LineFrom/LineTo are 1-based inclusive; stored line_no is 0-based.
	if q.LineFrom > 0 {
		conds = append(conds, "line_no >= "+arg(q.LineFrom-1))
	}
	if q.LineTo > 0 {
		conds = append(conds, "line_no <= "+arg(q.LineTo-1))
	}

	query := "SELECT id, line_no, kind, raw_text, " + selectSnippet + " AS snippet" +
		" FROM script_lines WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY line_no, id" +
		" LIMIT " + arg(limit) + " OFFSET " + arg(q.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var out []storage.SearchResult
	for rows.Next() {
		var res storage.SearchResult
		if err := rows.Scan(&res.LineID, &res.LineNo, &res.Kind, &res.Text, &res.Snippet); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
