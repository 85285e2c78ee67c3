/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"screenwright/internal/domain"
)

const (
	ManifestFileName = "screenplay.json"
	BackupsDirName   = "backups"
	ScriptsDirName   = "scripts"
)

// Standard subfolders scaffolded in every workspace.
var standardSubDirs = []string{
	ScriptsDirName,
	"docs",
	"exports",
	BackupsDirName,
}

// WorkspaceHandle tracks the workspace state loaded/saved from disk.
// Root is the workspace directory containing screenplay.json and the
// subfolders; Screenplay holds the in-memory manifest.
type WorkspaceHandle struct {
	Root         string
	ManifestPath string
	Screenplay   domain.Screenplay
}

// ScriptPath resolves the script file the manifest points at. A relative
// save path is anchored at the workspace root.
func (ws *WorkspaceHandle) ScriptPath() string {
	p := strings.TrimSpace(ws.Screenplay.SavePath)
	if p == "" {
		p = filepath.Join(ScriptsDirName, "session.fountain")
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ws.Root, p)
}

// InitWorkspace creates a workspace directory at root (creating it if it
// does not exist), scaffolds the standard subfolders, and writes the given
// manifest transactionally.
func InitWorkspace(root string, sp domain.Screenplay) (*WorkspaceHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}

	ws := &WorkspaceHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Screenplay:   sp,
	}
	if err := Save(ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Open loads an existing workspace from the given root directory. If the
// current manifest cannot be read or parsed, the latest backup is tried.
func Open(root string) (*WorkspaceHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		sp, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &WorkspaceHandle{Root: root, ManifestPath: mpath, Screenplay: *sp}, nil
	}
	var sp domain.Screenplay
	if uerr := json.Unmarshal(b, &sp); uerr != nil {
		bsp, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", uerr, berr)
		}
		return &WorkspaceHandle{Root: root, ManifestPath: mpath, Screenplay: *bsp}, nil
	}
	return &WorkspaceHandle{Root: root, ManifestPath: mpath, Screenplay: sp}, nil
}

// Save writes the current manifest to disk with transactional semantics
// and a timestamped backup of the previous manifest (if present).
func Save(ws *WorkspaceHandle) error {
	if ws == nil {
		return errors.New("nil WorkspaceHandle")
	}
	if ws.Root == "" || ws.ManifestPath == "" {
		return errors.New("invalid WorkspaceHandle: missing paths")
	}
	data, err := json.MarshalIndent(ws.Screenplay, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(ws.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// Keep a timestamped copy of the manifest being replaced.
	if _, statErr := os.Stat(ws.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		if cerr := copyFile(ws.ManifestPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Transactional write: temp file in the same directory, rename over target.
	dir := filepath.Dir(ws.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows the destination must be removed before rename.
	if _, err := os.Stat(ws.ManifestPath); err == nil {
		_ = os.Remove(ws.ManifestPath)
	}
	if rerr := os.Rename(temp, ws.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest to a new root folder, scaffolding structure
// if needed, and updates the handle.
func SaveAs(ws *WorkspaceHandle, newRoot string) error {
	if ws == nil {
		return errors.New("nil WorkspaceHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(newRoot, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	ws.Root = newRoot
	ws.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(ws)
}

// AutosaveCrashSnapshot writes the manifest and the given script text to
// the backups folder so an aborted session can be recovered. Returns the
// path of the script snapshot (or the manifest copy if text is empty).
func AutosaveCrashSnapshot(ws *WorkspaceHandle, scriptText string) (string, error) {
	if ws == nil || ws.Root == "" {
		return "", errors.New("no workspace for autosave")
	}
	bdir := filepath.Join(ws.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")

	data, err := json.MarshalIndent(ws.Screenplay, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	mpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.autosave", ManifestFileName, stamp))
	if err := writeFileSync(mpath, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write manifest autosave: %w", err)
	}
	if scriptText == "" {
		return mpath, nil
	}
	spath := filepath.Join(bdir, fmt.Sprintf("autosave-%s.fountain", stamp))
	if err := writeFileSync(spath, []byte(scriptText)); err != nil {
		return "", fmt.Errorf("write script autosave: %w", err)
	}
	return spath, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst, overwriting dst if it exists.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*domain.Screenplay, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var sp domain.Screenplay
	if err := json.Unmarshal(b, &sp); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &sp, nil
}
