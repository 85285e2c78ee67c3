/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"testing"
)

// fakeStore keeps tokens in memory so tests never touch the OS keychain.
type fakeStore struct {
	values map[string]string
}

func (f *fakeStore) Get(service, key string) (string, error) {
	v, ok := f.values[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (f *fakeStore) Set(service, key, value string) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[service+"/"+key] = value
	return nil
}

func (f *fakeStore) Delete(service, key string) error {
	delete(f.values, service+"/"+key)
	return nil
}

func useFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	old := tokenStore
	fake := &fakeStore{}
	tokenStore = fake
	t.Cleanup(func() { tokenStore = old })
	return fake
}

func TestEnvOverridesBackendURL(t *testing.T) {
	useFakeStore(t)
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	useFakeStore(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesDocumentPaths(t *testing.T) {
	useFakeStore(t)
	t.Setenv(EnvLoadPath, "notes/outline.md")
	t.Setenv(EnvSavePath, "drafts/v2.fountain")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.DefaultLoadPath != "notes/outline.md" {
		t.Fatalf("DefaultLoadPath = %q", cfg.Editor.DefaultLoadPath)
	}
	if cfg.Editor.DefaultSavePath != "drafts/v2.fountain" {
		t.Fatalf("DefaultSavePath = %q", cfg.Editor.DefaultSavePath)
	}
}

func TestMergeIncludesEditorOptions(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Editor.DialogueDoubleSpaceNewline = false
	src.Editor.DefaultLoadPath = "a.md"
	mergeInto(&dst, &src)
	if dst.Editor.DialogueDoubleSpaceNewline {
		t.Fatalf("DialogueDoubleSpaceNewline was not merged from file config")
	}
	if dst.Editor.DefaultLoadPath != "a.md" {
		t.Fatalf("DefaultLoadPath = %q", dst.Editor.DefaultLoadPath)
	}
}

func TestMergeIncludesEnableServer(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.General.EnableServer = true
	mergeInto(&dst, &src)
	if !dst.General.EnableServer {
		t.Fatalf("EnableServer was not merged from file config")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/swr.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/swr.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	useFakeStore(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/tmp/swr-env.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/swr-env.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestTokenRoundTripThroughStore(t *testing.T) {
	fake := useFakeStore(t)
	if err := fake.Set(keyringService, keyringToken, "secret"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	_, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "secret" {
		t.Fatalf("token = %q", tok)
	}

	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if _, tok, _ := Load(); tok != "" {
		t.Fatalf("token survived clear: %q", tok)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	useFakeStore(t)
	t.Setenv(EnvLogLevel, "debug")
	name, ok := EnvOverrideFor("logging.level")
	if !ok || name != EnvLogLevel {
		t.Fatalf("EnvOverrideFor = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("logging.format"); ok && os.Getenv(EnvLogFormat) == "" {
		t.Fatalf("logging.format reported overridden without env")
	}
}
