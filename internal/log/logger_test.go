/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{level: slog.LevelInfo, w: &buf}
	logger := slog.New(h)

	logger.Info("saved", slog.String("path", "a.fountain"), slog.Int("lines", 12))

	out := buf.String()
	if !strings.Contains(out, "INF saved") {
		t.Fatalf("missing level/message: %q", out)
	}
	if !strings.Contains(out, "path=a.fountain") || !strings.Contains(out, "lines=12") {
		t.Fatalf("missing attrs: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("missing trailing newline: %q", out)
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{level: slog.LevelWarn, w: &buf}
	logger := slog.New(h)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should have been filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestConsoleHandlerGroupsPrefixKeys(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{level: slog.LevelInfo, w: &buf}
	logger := slog.New(h).WithGroup("doc")

	logger.Info("msg", slog.String("path", "x"))
	if !strings.Contains(buf.String(), "doc.path=x") {
		t.Fatalf("group prefix missing: %q", buf.String())
	}
}

func TestMultiFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := &multi{hs: []slog.Handler{
		&consoleHandler{level: slog.LevelInfo, w: &a},
		&consoleHandler{level: slog.LevelInfo, w: &b},
	}}
	logger := slog.New(m)
	logger.Info("both")

	if !strings.Contains(a.String(), "both") || !strings.Contains(b.String(), "both") {
		t.Fatalf("record not fanned out: %q / %q", a.String(), b.String())
	}
	if !m.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("multi should be enabled at info")
	}
}

func TestWithComponent(t *testing.T) {
	if WithComponent("editor") == nil {
		t.Fatalf("nil logger")
	}
}
