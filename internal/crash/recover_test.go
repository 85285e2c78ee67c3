/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"screenwright/internal/storage"
)

// TestRecover_Panicking ensures Recover handles a panic, writes a report,
// autosaves the document text, and does not terminate the test process due
// to the injected exitFn.
func TestRecover_Panicking(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(os.Stderr, r) // drain pipe
	}()

	// Override exitFn to avoid os.Exit during test and to assert it was called
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	ws := &storage.WorkspaceHandle{Root: root, ManifestPath: filepath.Join(root, storage.ManifestFileName)}

	// Trigger a panic that Recover will catch
	func() {
		defer Recover(ws, func() string { return "INT. LAB - NIGHT\n\nUnsaved action line." })
		panic("boom")
	}()

	// Allow time for filesystem writes
	time.Sleep(50 * time.Millisecond)

	bdir := filepath.Join(root, storage.BackupsDirName)
	files, _ := os.ReadDir(bdir)
	var report, autosave string
	for _, f := range files {
		name := f.Name()
		if strings.HasPrefix(name, "crash-") && strings.HasSuffix(name, ".log") {
			report = filepath.Join(bdir, name)
		}
		if strings.HasPrefix(name, "autosave-") && strings.HasSuffix(name, ".fountain") {
			autosave = filepath.Join(bdir, name)
		}
	}
	if report == "" {
		t.Fatalf("expected crash report file under backups dir")
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}

	if autosave == "" {
		t.Fatalf("expected autosaved script under backups dir")
	}
	text, err := os.ReadFile(autosave)
	if err != nil {
		t.Fatalf("read autosave: %v", err)
	}
	if !strings.Contains(string(text), "Unsaved action line.") {
		t.Fatalf("autosave missing document text: %s", text)
	}

	// Ensure exit was attempted with code 2 (but intercepted)
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}
