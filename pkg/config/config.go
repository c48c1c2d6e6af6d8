// Package config holds the persistent application configuration: the
// watched folders with their rules, and the engine settings. It is
// stored as TOML in the XDG config directory and may be overridden
// through FILEBUTLER_ environment variables.
package config

import (
	"strings"

	"github.com/acrellin/filebutler/pkg/errors"
	"github.com/acrellin/filebutler/pkg/rules"
)

// Settings are the engine knobs.
type Settings struct {
	// ScanIntervalMinutes is how often the maintenance loop rescans
	// watched folders. Values below 1 are clamped to 1.
	ScanIntervalMinutes int `koanf:"scan_interval_minutes" toml:"scan_interval_minutes" yaml:"scan_interval_minutes"`

	// LogRetentionDays is how long activity log rows are kept.
	LogRetentionDays int `koanf:"log_retention_days" toml:"log_retention_days" yaml:"log_retention_days"`

	// MaxStorageMB caps the database file size. 0 means unlimited.
	MaxStorageMB int64 `koanf:"max_storage_mb" toml:"max_storage_mb" yaml:"max_storage_mb"`

	// DeletionTimeHour is the local hour (0-23) at or after which the
	// daily deletion pass runs.
	DeletionTimeHour int `koanf:"deletion_time_hour" toml:"deletion_time_hour" yaml:"deletion_time_hour"`

	// DefaultSortRoot is the directory offered as the default base for
	// new move destinations.
	DefaultSortRoot string `koanf:"default_sort_root" toml:"default_sort_root,omitempty" yaml:"default_sort_root,omitempty"`

	Notifications bool `koanf:"notifications" toml:"notifications" yaml:"notifications"`
}

// Config is the full persisted configuration.
type Config struct {
	Folders  []rules.WatchedFolder `koanf:"folders" toml:"folders,omitempty" yaml:"folders,omitempty"`
	Settings Settings              `koanf:"settings" toml:"settings" yaml:"settings"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ScanIntervalMinutes: 5,
		LogRetentionDays:    30,
		MaxStorageMB:        2048,
		DeletionTimeHour:    3,
		Notifications:       true,
	}
}

// Validate checks folders, rules, and settings ranges.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Folders))
	for i := range c.Folders {
		f := &c.Folders[i]
		if strings.TrimSpace(f.Path) == "" {
			return errors.New(errors.ErrConfigValid, "watched folder has no path")
		}
		if f.ID != "" && seen[f.ID] {
			return errors.Newf(errors.ErrConfigValid, "duplicate folder id %q", f.ID)
		}
		seen[f.ID] = true
		for j := range f.Rules {
			if err := f.Rules[j].Validate(); err != nil {
				return errors.Wrapf(err, errors.ErrConfigValid, "folder %s", f.Path)
			}
		}
	}
	if c.Settings.DeletionTimeHour < 0 || c.Settings.DeletionTimeHour > 23 {
		return errors.Newf(errors.ErrConfigValid,
			"deletion_time_hour %d out of range 0-23", c.Settings.DeletionTimeHour)
	}
	if c.Settings.LogRetentionDays < 0 {
		return errors.New(errors.ErrConfigValid, "log_retention_days cannot be negative")
	}
	if c.Settings.MaxStorageMB < 0 {
		return errors.New(errors.ErrConfigValid, "max_storage_mb cannot be negative")
	}
	return nil
}

// FindFolder returns the folder with the given id, or nil.
func (c *Config) FindFolder(id string) *rules.WatchedFolder {
	for i := range c.Folders {
		if c.Folders[i].ID == id {
			return &c.Folders[i]
		}
	}
	return nil
}

// EnabledFolders returns the folders currently under management.
func (c *Config) EnabledFolders() []rules.WatchedFolder {
	out := make([]rules.WatchedFolder, 0, len(c.Folders))
	for _, f := range c.Folders {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy safe to hand out across goroutines.
func (c *Config) Clone() Config {
	out := Config{Settings: c.Settings}
	out.Folders = make([]rules.WatchedFolder, len(c.Folders))
	for i, f := range c.Folders {
		nf := f
		nf.Whitelist = append([]string(nil), f.Whitelist...)
		nf.Rules = make([]rules.Rule, len(f.Rules))
		for j, r := range f.Rules {
			nr := r
			nr.Whitelist = append([]string(nil), r.Whitelist...)
			nr.Condition = nil
			nf.Rules[j] = nr
		}
		out.Folders[i] = nf
	}
	return out
}
