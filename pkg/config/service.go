package config

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acrellin/filebutler/pkg/errors"
	"github.com/acrellin/filebutler/pkg/logging"
	"github.com/acrellin/filebutler/pkg/rules"
)

// Service is the shared, mutation-safe view of the configuration. The
// scanner, watcher, and CLI all read through Snapshot; every change
// goes through Update, which validates and persists before it becomes
// visible.
type Service struct {
	mu     sync.RWMutex
	path   string
	cfg    Config
	logger zerolog.Logger
}

// NewService loads the configuration from path and wraps it.
func NewService(path string) (*Service, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Service{
		path:   path,
		cfg:    *cfg,
		logger: logging.GetLogger("config"),
	}, nil
}

// Path returns the backing config file path.
func (s *Service) Path() string {
	return s.path
}

// Snapshot returns a deep copy of the current configuration.
func (s *Service) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Settings returns the current engine settings.
func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Settings
}

// Update applies fn to a working copy, validates it, persists it, and
// swaps it in. On any error the previous configuration stays active.
func (s *Service) Update(fn func(*Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := Save(&next, s.path); err != nil {
		return err
	}
	s.cfg = next
	s.logger.Debug().Str("path", s.path).Msg("configuration saved")
	return nil
}

// AddFolder registers a new watched folder and returns its id.
func (s *Service) AddFolder(folder rules.WatchedFolder) (string, error) {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	err := s.Update(func(cfg *Config) error {
		for i := range cfg.Folders {
			if cfg.Folders[i].Path == folder.Path {
				return errors.Newf(errors.ErrAlreadyExists, "folder %s is already watched", folder.Path)
			}
		}
		cfg.Folders = append(cfg.Folders, folder)
		return nil
	})
	if err != nil {
		return "", err
	}
	return folder.ID, nil
}

// RemoveFolder deletes a watched folder and its rules.
func (s *Service) RemoveFolder(folderID string) error {
	return s.Update(func(cfg *Config) error {
		for i := range cfg.Folders {
			if cfg.Folders[i].ID == folderID {
				cfg.Folders = append(cfg.Folders[:i], cfg.Folders[i+1:]...)
				return nil
			}
		}
		return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", folderID)
	})
}

// SetFolderEnabled toggles a folder on or off.
func (s *Service) SetFolderEnabled(folderID string, enabled bool) error {
	return s.Update(func(cfg *Config) error {
		f := cfg.FindFolder(folderID)
		if f == nil {
			return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", folderID)
		}
		f.Enabled = enabled
		return nil
	})
}

// AddRule appends a rule to a folder and returns the rule id.
func (s *Service) AddRule(folderID string, rule rules.Rule) (string, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	err := s.Update(func(cfg *Config) error {
		f := cfg.FindFolder(folderID)
		if f == nil {
			return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", folderID)
		}
		if err := rule.Validate(); err != nil {
			return err
		}
		f.Rules = append(f.Rules, rule)
		return nil
	})
	if err != nil {
		return "", err
	}
	return rule.ID, nil
}

// UpdateRule replaces a rule in place, keeping its position.
func (s *Service) UpdateRule(folderID string, rule rules.Rule) error {
	return s.Update(func(cfg *Config) error {
		f := cfg.FindFolder(folderID)
		if f == nil {
			return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", folderID)
		}
		if err := rule.Validate(); err != nil {
			return err
		}
		for i := range f.Rules {
			if f.Rules[i].ID == rule.ID {
				f.Rules[i] = rule
				return nil
			}
		}
		return errors.Newf(errors.ErrRuleNotFound, "rule %s not found in folder %s", rule.ID, folderID)
	})
}

// RemoveRule deletes a rule from a folder.
func (s *Service) RemoveRule(folderID, ruleID string) error {
	return s.Update(func(cfg *Config) error {
		f := cfg.FindFolder(folderID)
		if f == nil {
			return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", folderID)
		}
		for i := range f.Rules {
			if f.Rules[i].ID == ruleID {
				f.Rules = append(f.Rules[:i], f.Rules[i+1:]...)
				return nil
			}
		}
		return errors.Newf(errors.ErrRuleNotFound, "rule %s not found in folder %s", ruleID, folderID)
	})
}

// SetRuleEnabled toggles a rule on or off without changing its
// position.
func (s *Service) SetRuleEnabled(folderID, ruleID string, enabled bool) error {
	return s.Update(func(cfg *Config) error {
		f := cfg.FindFolder(folderID)
		if f == nil {
			return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", folderID)
		}
		for i := range f.Rules {
			if f.Rules[i].ID == ruleID {
				f.Rules[i].Enabled = enabled
				return nil
			}
		}
		return errors.Newf(errors.ErrRuleNotFound, "rule %s not found in folder %s", ruleID, folderID)
	})
}

// ReorderRules rearranges a folder's rules to the given id order. Rule
// order is priority: earlier rules win. Every existing rule id must
// appear exactly once.
func (s *Service) ReorderRules(folderID string, ruleIDs []string) error {
	return s.Update(func(cfg *Config) error {
		f := cfg.FindFolder(folderID)
		if f == nil {
			return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", folderID)
		}
		if len(ruleIDs) != len(f.Rules) {
			return errors.Newf(errors.ErrInvalidInput,
				"got %d rule ids, folder has %d rules", len(ruleIDs), len(f.Rules))
		}
		byID := make(map[string]rules.Rule, len(f.Rules))
		for _, r := range f.Rules {
			byID[r.ID] = r
		}
		reordered := make([]rules.Rule, 0, len(ruleIDs))
		for _, id := range ruleIDs {
			r, ok := byID[id]
			if !ok {
				return errors.Newf(errors.ErrRuleNotFound, "rule %s not found in folder %s", id, folderID)
			}
			delete(byID, id)
			reordered = append(reordered, r)
		}
		f.Rules = reordered
		return nil
	})
}

// SetSettings replaces the engine settings.
func (s *Service) SetSettings(settings Settings) error {
	return s.Update(func(cfg *Config) error {
		cfg.Settings = settings
		return nil
	})
}
