package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for punchclock, stored in
// ~/.punchclock/config.json. The JSON file supports single-line // comments;
// a .yaml or .yml file is read as YAML instead.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Preview  PreviewConfig  `json:"preview" yaml:"preview"`
	Log      LogConfig      `json:"log" yaml:"log"`
	OneDrive OneDriveConfig `json:"onedrive" yaml:"onedrive"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string `json:"addr" yaml:"addr"`
}

// StorageConfig locates the timesheet file.
type StorageConfig struct {
	// Path is the JSON store. Empty = <base dir>/timesheet.json.
	Path string `json:"path" yaml:"path"`
}

// PreviewConfig shapes the /api/preview payload.
type PreviewConfig struct {
	RecentDays int `json:"recent_days" yaml:"recent_days"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
	// File switches to JSON lines appended to this file. Empty = text on stderr.
	File string `json:"file" yaml:"file"`
}

// OneDriveConfig holds Microsoft Graph settings for timesheet uploads.
type OneDriveConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id" yaml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id" yaml:"client_id"`
	// Folder is the OneDrive folder receiving uploaded timesheets.
	Folder string `json:"folder" yaml:"folder"`
}

const (
	// DefaultDirName is the folder under the user's home directory.
	DefaultDirName = ".punchclock"
	// DefaultStoreFile is the store file name inside the base directory.
	DefaultStoreFile = "timesheet.json"
	// DefaultAddr matches the port the web UI has always used.
	DefaultAddr = ":3000"
	// DefaultRecentDays is the number of entries shown in the preview.
	DefaultRecentDays = 7
	// DefaultLogLevel is used when log.level is empty.
	DefaultLogLevel = "info"
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultFolder is the OneDrive folder for uploads.
	DefaultFolder = "Timesheets"
)

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing.
const configTemplate = `// punchclock configuration – ~/.punchclock/config.json
//
// All settings are optional; the defaults shown below work out of the box.
{
  // ── Web server ───────────────────────────────────────────────────────────
  "server": {
    // Listen address. The PORT environment variable overrides the port.
    "addr": ":3000"
  },

  // ── Timesheet store ──────────────────────────────────────────────────────
  "storage": {
    // JSON file holding every daily entry. Empty = ~/.punchclock/timesheet.json
    "path": ""
  },

  // ── Preview ──────────────────────────────────────────────────────────────
  "preview": {
    // Number of most recent days returned by /api/preview.
    "recent_days": 7
  },

  // ── Logging ──────────────────────────────────────────────────────────────
  "log": {
    // debug, info, warn or error.
    "level": "info",
    // Append JSON log lines to this file instead of writing text to stderr.
    "file": ""
  },

  // ── OneDrive upload (punchclock export --upload) ─────────────────────────
  "onedrive": {
    // Azure AD tenant ID; "common" covers personal and most work accounts.
    "tenant_id": "common",
    // Azure application (client) ID for the device code flow.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",
    // Destination folder in your OneDrive.
    "folder": "Timesheets"
  }
}
`

// BaseDir returns the data directory: $PUNCHCLOCK_HOME if set, otherwise
// ~/.punchclock.
func BaseDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv("PUNCHCLOCK_HOME")); override != "" {
		return expandHome(override)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// FilePath returns the config file location: $PUNCHCLOCK_CONFIG if set,
// otherwise config.json in the base directory.
func FilePath() (string, error) {
	if override := strings.TrimSpace(os.Getenv("PUNCHCLOCK_CONFIG")); override != "" {
		return expandHome(override)
	}
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config from FilePath, creating it with annotated defaults
// on first run.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing JSON config is created from
// the annotated template. Zero-value fields are filled with defaults and
// environment overrides are applied last.
func LoadFile(path string) (Config, error) {
	base, err := BaseDir()
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if !isYAML(path) {
			// First run: write the annotated template so users can discover options.
			if writeErr := writeDefault(path); writeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
			}
		}
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	case isYAML(path):
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	applyDefaults(&cfg, base)
	applyEnv(&cfg)
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// applyDefaults fills zero-value fields so callers always get a usable Config
// even if the user only partially fills in the file.
func applyDefaults(cfg *Config, base string) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(base, DefaultStoreFile)
	} else if p, err := expandHome(cfg.Storage.Path); err == nil {
		cfg.Storage.Path = p
	}
	if cfg.Preview.RecentDays <= 0 {
		cfg.Preview.RecentDays = DefaultRecentDays
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.OneDrive.TenantID == "" {
		cfg.OneDrive.TenantID = DefaultTenantID
	}
	if cfg.OneDrive.ClientID == "" {
		cfg.OneDrive.ClientID = DefaultClientID
	}
	if cfg.OneDrive.Folder == "" {
		cfg.OneDrive.Folder = DefaultFolder
	}
}

func applyEnv(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Server.Addr = ":" + port
	}
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
