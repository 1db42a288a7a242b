// Package config owns the two pieces of process-wide mutable state spec §9
// calls out as singletons: the data-directory override and the parsed
// config.json. Both follow the teacher's viper-backed, lazily-initialized
// singleton shape (see the original internal/config/config.go this was
// adapted from), pointed at config.json instead of config.yaml per spec §6.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/andynu/outline/internal/outline"
)

const defaultDirName = ".outline-data"

// Inbox names the node that inbox drain creates child nodes under.
type Inbox struct {
	DocumentID string `mapstructure:"document_id" json:"document_id"`
	NodeID     string `mapstructure:"node_id" json:"node_id"`
}

// Config is the parsed shape of config.json. Both fields are optional;
// absent or unparseable on disk falls back to defaults, per spec §6.
type Config struct {
	DataDirectory string `mapstructure:"data_directory" json:"data_directory,omitempty"`
	Inbox         *Inbox `mapstructure:"inbox" json:"inbox,omitempty"`
}

var (
	mu              sync.Mutex
	v               *viper.Viper
	dataDirOverride string
)

// Load reads <user-config-dir>/outline/config.json, or returns zero-value
// defaults if the file is absent or fails to parse (spec §6: "Absent or
// unparseable → defaults").
func Load() *Config {
	mu.Lock()
	defer mu.Unlock()

	v = viper.New()
	v.SetConfigType("json")
	v.SetConfigName("config")

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "outline"))
	}

	cfg := &Config{}
	if err := v.ReadInConfig(); err != nil {
		return cfg
	}
	if err := v.Unmarshal(cfg); err != nil {
		return &Config{}
	}
	return cfg
}

// ConfigPath returns the path Load reads from, for callers that want to
// write a new config.json (e.g. `outline inbox set-target`).
func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", outline.NewError(outline.ErrIO, "user config dir", err)
	}
	return filepath.Join(dir, "outline", "config.json"), nil
}

// SetDataDirectory installs a process-wide data-directory override,
// superseding both config.json's data_directory and the ~/.outline-data
// default. Used by tests and a `--data-dir` CLI flag.
func SetDataDirectory(dir string) {
	mu.Lock()
	defer mu.Unlock()
	dataDirOverride = dir
}

// ClearDataDirectory removes any override installed by SetDataDirectory.
func ClearDataDirectory() {
	mu.Lock()
	defer mu.Unlock()
	dataDirOverride = ""
}

// DataDirectory resolves the effective data directory: explicit override >
// config.json's data_directory > ~/.outline-data.
func DataDirectory() (string, error) {
	mu.Lock()
	override := dataDirOverride
	mu.Unlock()
	if override != "" {
		return override, nil
	}

	cfg := Load()
	if cfg.DataDirectory != "" {
		return cfg.DataDirectory, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", outline.NewError(outline.ErrIO, "user home dir", err)
	}
	return filepath.Join(home, defaultDirName), nil
}
