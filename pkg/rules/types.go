// Package rules defines the organization rule model (watched folders,
// ordered rules, and their actions) and the matcher that picks the
// winning rule for a candidate file.
package rules

import (
	"strings"

	"github.com/acrellin/filebutler/pkg/condition"
	"github.com/acrellin/filebutler/pkg/errors"
)

// ActionType discriminates what a rule does with a matched file.
type ActionType string

const (
	// ActionMove moves the file to a destination directory.
	ActionMove ActionType = "move"
	// ActionDelete schedules the file for deletion after N days.
	ActionDelete ActionType = "delete"
)

// Action is what happens when a rule's condition matches.
type Action struct {
	Type ActionType `koanf:"type" toml:"type" yaml:"type"`

	// Destination is the target directory for move actions.
	Destination string `koanf:"destination" toml:"destination,omitempty" yaml:"destination,omitempty"`

	// AfterDays delays delete actions: the file is scheduled for
	// deletion after this many days (0 = due on the next pass).
	AfterDays int `koanf:"after_days" toml:"after_days,omitempty" yaml:"after_days,omitempty"`
}

// Rule combines a condition tree with an action. Rules within a folder
// form an ordered sequence; order is priority and the first match wins.
type Rule struct {
	ID          string `koanf:"id" toml:"id" yaml:"id"`
	Name        string `koanf:"name" toml:"name" yaml:"name"`
	Description string `koanf:"description" toml:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool   `koanf:"enabled" toml:"enabled" yaml:"enabled"`

	// ConditionText is the human-readable mirror of Condition, e.g.
	// `*.pdf AND *invoice*`. Either field may be the edit source; they
	// are re-synchronized on save.
	ConditionText string `koanf:"condition" toml:"condition" yaml:"condition"`

	Action Action `koanf:"action" toml:"action" yaml:"action"`

	// Whitelist holds glob patterns for files this rule must skip.
	Whitelist []string `koanf:"whitelist" toml:"whitelist,omitempty" yaml:"whitelist,omitempty"`

	// MatchSubdirectories switches the match target from the base name
	// to the path relative to the watched folder root.
	MatchSubdirectories bool `koanf:"match_subdirectories" toml:"match_subdirectories,omitempty" yaml:"match_subdirectories,omitempty"`

	// Condition is the parsed tree. Not serialized; rebuilt from
	// ConditionText by Compile.
	Condition *condition.Condition `koanf:"-" toml:"-" yaml:"-"`
}

// Compile parses ConditionText into the Condition tree. It is a no-op
// when the tree is already present.
func (r *Rule) Compile() error {
	if r.Condition != nil {
		return nil
	}
	c, err := condition.Parse(r.ConditionText)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRuleInvalid, "rule %q has a bad condition", r.Name)
	}
	r.Condition = c
	return nil
}

// SyncText regenerates ConditionText from the parsed tree, keeping the
// two representations equivalent before persisting.
func (r *Rule) SyncText() {
	if r.Condition != nil {
		r.ConditionText = r.Condition.Text()
	}
}

// Validate checks that the rule is well formed: a name, a parseable
// condition with valid regexes, and a usable action.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New(errors.ErrRuleInvalid, "rule has no name")
	}
	if err := condition.ValidateText(r.ConditionText); err != nil {
		return errors.Wrapf(err, errors.ErrRuleInvalid, "rule %q", r.Name)
	}
	switch r.Action.Type {
	case ActionMove:
		if strings.TrimSpace(r.Action.Destination) == "" {
			return errors.Newf(errors.ErrRuleInvalid, "rule %q: move action needs a destination", r.Name)
		}
	case ActionDelete:
		if r.Action.AfterDays < 0 {
			return errors.Newf(errors.ErrRuleInvalid, "rule %q: delete after_days cannot be negative", r.Name)
		}
	default:
		return errors.Newf(errors.ErrRuleInvalid, "rule %q: unknown action type %q", r.Name, r.Action.Type)
	}
	return nil
}

// WatchedFolder is a directory under management with its ordered rules.
type WatchedFolder struct {
	ID      string `koanf:"id" toml:"id" yaml:"id"`
	Path    string `koanf:"path" toml:"path" yaml:"path"`
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled"`

	Rules []Rule `koanf:"rules" toml:"rules,omitempty" yaml:"rules,omitempty"`

	// Whitelist holds glob patterns for files never processed in this
	// folder, regardless of rules.
	Whitelist []string `koanf:"whitelist" toml:"whitelist,omitempty" yaml:"whitelist,omitempty"`

	// WatchSubdirectories extends matching and scanning to the whole
	// folder tree instead of just the top level.
	WatchSubdirectories bool `koanf:"watch_subdirectories" toml:"watch_subdirectories,omitempty" yaml:"watch_subdirectories,omitempty"`
}

// Compile parses the condition of every rule in the folder.
func (f *WatchedFolder) Compile() error {
	for i := range f.Rules {
		if err := f.Rules[i].Compile(); err != nil {
			return err
		}
	}
	return nil
}

// NeedsRecursion reports whether scanning or watching this folder must
// descend into subdirectories: either the folder opts in, or any
// enabled rule does.
func (f *WatchedFolder) NeedsRecursion() bool {
	if f.WatchSubdirectories {
		return true
	}
	for i := range f.Rules {
		if f.Rules[i].Enabled && f.Rules[i].MatchSubdirectories {
			return true
		}
	}
	return false
}
