package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/acrellin/filebutler/pkg/errors"
)

// Load reads the configuration from the given TOML file. Precedence,
// lowest to highest: built-in defaults, the file, FILEBUTLER_*
// environment variables (double underscore separates key segments,
// e.g. FILEBUTLER_SETTINGS__SCAN_INTERVAL_MINUTES). A missing file is
// not an error; defaults apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultSettings()
	err := k.Load(confmap.Provider(map[string]interface{}{
		"settings.scan_interval_minutes": defaults.ScanIntervalMinutes,
		"settings.log_retention_days":    defaults.LogRetentionDays,
		"settings.max_storage_mb":        defaults.MaxStorageMB,
		"settings.deletion_time_hour":    defaults.DeletionTimeHour,
		"settings.notifications":         defaults.Notifications,
	}, "."), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if _, statErr := os.Stat(path); statErr == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
		}
	}

	err = k.Load(env.Provider("FILEBUTLER_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "FILEBUTLER_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}

	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration as TOML, atomically replacing the
// previous file.
func Save(cfg *Config, path string) error {
	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := gotoml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigSave, "failed to marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrConfigSave, "failed to create config directory")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to replace %s", path)
	}
	return nil
}

// normalize fills in missing ids, mirrors parsed conditions back into
// their text form, and clamps out-of-range settings.
func normalize(cfg *Config) {
	for i := range cfg.Folders {
		f := &cfg.Folders[i]
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		for j := range f.Rules {
			r := &f.Rules[j]
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			r.SyncText()
		}
	}
	if cfg.Settings.ScanIntervalMinutes < 1 {
		cfg.Settings.ScanIntervalMinutes = 1
	}
}
