package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
)

type Config struct {
	// CurrentUser is the acting user id (e.g. "U-alice").
	CurrentUser string `json:"currentUser,omitempty"`

	// Enabled switches the "Show record" button on or off. Defaults to on.
	Enabled *bool `json:"enabled,omitempty"`

	// Backend selects the record store ("sqlite", "postgres", "http").
	Backend string `json:"backend,omitempty"`
	// DataDir holds the sqlite database for the sqlite backend.
	DataDir     string `json:"dataDir,omitempty"`
	PostgresURL string `json:"postgresUrl,omitempty"`
	RemoteURL   string `json:"remoteUrl,omitempty"`

	AssetsBaseURL string `json:"assetsBaseUrl,omitempty"`
	WebBaseURL    string `json:"webBaseUrl,omitempty"`

	Log LogConfig `json:"log,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
	// Path overrides the log file used by the interactive browser.
	Path string `json:"path,omitempty"`
}

func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.resdb).
	if v := strings.TrimSpace(os.Getenv("RESDB_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".resdb"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads config.json (missing file = zero config), applies RESDB_* env
// overrides and fills defaults.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads config.json as written, without env overrides or defaults.
func LoadFile() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(k string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			*dst = v
		}
	}
	str("RESDB_USER", &cfg.CurrentUser)
	str("RESDB_BACKEND", &cfg.Backend)
	str("RESDB_DIR", &cfg.DataDir)
	str("RESDB_POSTGRES_URL", &cfg.PostgresURL)
	str("RESDB_REMOTE_URL", &cfg.RemoteURL)
	str("RESDB_ASSETS_URL", &cfg.AssetsBaseURL)
	str("RESDB_WEB_URL", &cfg.WebBaseURL)
	str("RESDB_LOG_LEVEL", &cfg.Log.Level)
	str("RESDB_LOG_FORMAT", &cfg.Log.Format)
	if v := strings.TrimSpace(os.Getenv("RESDB_ENABLED")); v != "" {
		on := v != "0" && !strings.EqualFold(v, "false") && !strings.EqualFold(v, "off")
		cfg.Enabled = &on
	}
}

func fillDefaults(cfg *Config) error {
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if cfg.CurrentUser == "" {
		cfg.CurrentUser = "U-local"
	}
	if cfg.AssetsBaseURL == "" {
		cfg.AssetsBaseURL = "https://assets.resonite.com"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.DataDir == "" || cfg.Log.Path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if cfg.DataDir == "" {
			cfg.DataDir = filepath.Join(dir, "data")
		}
		if cfg.Log.Path == "" {
			cfg.Log.Path = filepath.Join(dir, "resdb.log")
		}
	}
	return nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// Save writes cfg to config.json atomically.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
