/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads and saves the user-editable application
// configuration: a YAML file in the per-user config directory, with
// environment variables as read-only runtime overrides. The sync backend
// token never touches the YAML file; it lives in the OS keychain.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// EditorConfig holds the editor behavior options.
type EditorConfig struct {
	// DialogueDoubleSpaceNewline renders two consecutive spaces in a
	// dialogue line as a break in the formatted pane.
	DialogueDoubleSpaceNewline bool `yaml:"dialogue_double_space_newline"`
	// DefaultLoadPath is opened at startup when no path is given.
	DefaultLoadPath string `yaml:"default_load_path"`
	// DefaultSavePath receives saves when no path is given.
	DefaultSavePath string `yaml:"default_save_path"`
}

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
	EnableServer   bool   `yaml:"enable_server"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the persisted configuration. config_version is bumped when
// the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Editor        EditorConfig  `yaml:"editor"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system", EnableServer: false},
		Editor: EditorConfig{
			DialogueDoubleSpaceNewline: true,
			DefaultLoadPath:            filepath.Join("docs", "humanDOC.md"),
			DefaultSavePath:            filepath.Join("scripts", "session.fountain"),
		},
		Backend: BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "SWR_BACKEND_URL"
	EnvBackendTimeoutMs = "SWR_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "SWR_TLS_INSECURE"
	EnvTelemetryOptIn   = "SWR_TELEMETRY_OPT_IN"
	EnvEnableServer     = "SWR_ENABLE_SERVER"
	EnvLoadPath         = "SWR_LOAD_PATH"
	EnvSavePath         = "SWR_SAVE_PATH"
	EnvLogLevel         = "SWR_LOG_LEVEL"
	EnvLogFormat        = "SWR_LOG_FORMAT"
	EnvLogSource        = "SWR_LOG_SOURCE"
	EnvLogFile          = "SWR_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "Screenwright"
	keyringToken   = "backend_token"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Screenwright")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Screenwright")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "screenwright")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and
// merges environment overrides. The backend token comes from the keyring
// and is returned separately so it never lands in the struct.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS
// keyring when non-empty.
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ClearToken removes the backend token from the keyring.
func ClearToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from the file so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.General.EnableServer = src.General.EnableServer
	dst.Editor.DialogueDoubleSpaceNewline = src.Editor.DialogueDoubleSpaceNewline
	if strings.TrimSpace(src.Editor.DefaultLoadPath) != "" {
		dst.Editor.DefaultLoadPath = strings.TrimSpace(src.Editor.DefaultLoadPath)
	}
	if strings.TrimSpace(src.Editor.DefaultSavePath) != "" {
		dst.Editor.DefaultSavePath = strings.TrimSpace(src.Editor.DefaultSavePath)
	}
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTLSInsec)); v != "" {
		cfg.Backend.TLSInsecure = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnableServer)); v != "" {
		cfg.General.EnableServer = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLoadPath)); v != "" {
		cfg.Editor.DefaultLoadPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSavePath)); v != "" {
		cfg.Editor.DefaultSavePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// EnvOverrideFor returns the env var name if the field is currently
// overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "backend.base_url":
		name = EnvBackendURL
	case "backend.timeout_ms":
		name = EnvBackendTimeoutMs
	case "backend.tls_insecure":
		name = EnvBackendTLSInsec
	case "general.telemetry_opt_in":
		name = EnvTelemetryOptIn
	case "general.enable_server":
		name = EnvEnableServer
	case "editor.default_load_path":
		name = EnvLoadPath
	case "editor.default_save_path":
		name = EnvSavePath
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
