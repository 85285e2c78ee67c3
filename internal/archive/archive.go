/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package archive bundles a workspace into a portable .zip and restores
// one. Bundles carry the manifest, scripts and docs; derived state such as
// the search index and backups stays local.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "screenwright/internal/log"
	"screenwright/internal/storage"
)

// bundledDirs are the workspace subfolders included in a bundle.
var bundledDirs = []string{storage.ScriptsDirName, "docs"}

// ExportWorkspace zips the workspace manifest plus the scripts and docs
// folders into destZipPath. The archive preserves directory structure and
// adds a small manifest file at the root named bundle.manifest.txt for
// quick human inspection.
func ExportWorkspace(workspaceRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("archive"), "export").With(slog.String("workspace", workspaceRoot))
	if strings.TrimSpace(workspaceRoot) == "" {
		return errors.New("workspaceRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Screenwright Workspace Bundle\nCreated: %s\nWorkspace: %s\n\nContents mirror the workspace's manifest, scripts and docs.\n",
		time.Now().Format(time.RFC3339), workspaceRoot)
	w, err := zw.Create("bundle.manifest.txt")
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	addFile := func(path, zipName string) error {
		fw, err := zw.Create(zipName)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	}

	mpath := filepath.Join(workspaceRoot, storage.ManifestFileName)
	if _, err := os.Stat(mpath); err == nil {
		if err := addFile(mpath, storage.ManifestFileName); err != nil {
			return fmt.Errorf("add workspace manifest: %w", err)
		}
	}

	for _, dir := range bundledDirs {
		base := filepath.Join(workspaceRoot, dir)
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(workspaceRoot, path)
			if err != nil {
				return err
			}
			// Forward slashes inside the archive regardless of host OS.
			return addFile(path, filepath.ToSlash(rel))
		})
		if err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return fmt.Errorf("build zip: %w", err)
		}
	}

	l.Info("workspace bundle exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// ImportBundle extracts a bundle into the workspace root. Existing files
// are not overwritten; if a file already exists, it is skipped. Returns the
// count of files installed (skipped files are not counted).
func ImportBundle(workspaceRoot string, bundleZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("archive"), "import").With(slog.String("workspace", workspaceRoot))
	if strings.TrimSpace(workspaceRoot) == "" {
		return 0, errors.New("workspaceRoot is required")
	}
	if strings.TrimSpace(bundleZipPath) == "" {
		return 0, errors.New("bundleZipPath is required")
	}
	if err := os.MkdirAll(workspaceRoot, 0o755); err != nil {
		return 0, fmt.Errorf("ensure workspace root: %w", err)
	}

	r, err := zip.OpenReader(bundleZipPath)
	if err != nil {
		return 0, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	rootAbs, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return 0, err
	}

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == "bundle.manifest.txt" {
			continue
		}
		targetPath := filepath.Join(workspaceRoot, filepath.FromSlash(name))
		// Reject entries that escape the workspace root.
		abs, err := filepath.Abs(targetPath)
		if err != nil || !strings.HasPrefix(abs, rootAbs+string(filepath.Separator)) {
			l.Warn("skip entry outside workspace", slog.String("name", name))
			continue
		}
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("workspace bundle imported", slog.Int("files", installed))
	return installed, nil
}
