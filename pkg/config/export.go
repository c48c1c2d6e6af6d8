package config

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/acrellin/filebutler/pkg/errors"
)

// ExportYAML writes the current configuration as YAML, a portable
// format for backing rules up or moving them between machines.
func (s *Service) ExportYAML(w io.Writer) error {
	cfg := s.Snapshot()
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return errors.Wrap(err, errors.ErrConfigSave, "failed to encode config as yaml")
	}
	return enc.Close()
}

// ImportYAML replaces the whole configuration with the YAML document
// read from r. The import is rejected wholesale when anything in it
// fails validation.
func (s *Service) ImportYAML(r io.Reader) error {
	var incoming Config
	if err := yaml.NewDecoder(r).Decode(&incoming); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "failed to decode yaml config")
	}
	return s.Update(func(cfg *Config) error {
		cfg.Folders = incoming.Folders
		cfg.Settings = incoming.Settings
		normalize(cfg)
		return cfg.Validate()
	})
}
