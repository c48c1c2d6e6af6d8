package rules

import (
	"path/filepath"
	"strings"

	"github.com/acrellin/filebutler/pkg/condition"
	"github.com/acrellin/filebutler/pkg/logging"
)

// Match is the outcome of matching one file against a folder: the
// winning rule and the string its condition matched against.
type Match struct {
	Rule   *Rule
	Target string
}

// MatchFile picks at most one winning rule for the candidate file.
//
// Order of checks:
//  1. the folder-level whitelist excludes the file outright,
//  2. disabled rules are skipped,
//  3. a rule-level whitelist skips that rule,
//  4. move rules auto-whitelist files already inside their destination,
//  5. the condition is evaluated against the base name, or against the
//     folder-relative path when subdirectory matching is on,
//  6. the first rule whose condition matches wins.
//
// Returns false when no rule matches and the file is left untouched.
func MatchFile(path string, folder *WatchedFolder) (*Match, bool) {
	fileName := filepath.Base(path)

	if isWhitelisted(fileName, folder.Whitelist) {
		return nil, false
	}

	for i := range folder.Rules {
		rule := &folder.Rules[i]
		if !rule.Enabled {
			continue
		}

		if isWhitelisted(fileName, rule.Whitelist) {
			continue
		}

		// Auto-whitelist: a move rule must not re-match files it has
		// already placed into its destination.
		if rule.Action.Type == ActionMove && fileInDir(path, rule.Action.Destination) {
			continue
		}

		target := fileName
		if rule.MatchSubdirectories || folder.WatchSubdirectories {
			target = relativeTarget(path, folder.Path)
		}

		if rule.Condition == nil {
			if err := rule.Compile(); err != nil {
				logger := logging.GetLogger("rules.matcher")
				logger.Error().Err(err).Str("rule", rule.Name).Msg("skipping rule with bad condition")
				continue
			}
		}

		if rule.Condition.Evaluate(target) {
			return &Match{Rule: rule, Target: target}, true
		}
	}

	return nil, false
}

// isWhitelisted reports whether the file name matches any of the glob
// patterns. Matching is case-insensitive, like condition globs.
func isWhitelisted(fileName string, whitelist []string) bool {
	for _, pattern := range whitelist {
		if condition.GlobMatch(pattern, fileName) {
			return true
		}
	}
	return false
}

// fileInDir reports whether path resides inside dir. Both sides are
// canonicalized first; when that fails (e.g. the destination does not
// exist yet) a plain cleaned-prefix check is used instead.
func fileInDir(path, dir string) bool {
	fileCanon, ferr := filepath.EvalSymlinks(path)
	dirCanon, derr := filepath.EvalSymlinks(dir)
	if ferr == nil && derr == nil {
		return hasPathPrefix(fileCanon, dirCanon)
	}
	return hasPathPrefix(filepath.Clean(path), filepath.Clean(dir))
}

func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// relativeTarget computes the match target for subdirectory matching:
// the path relative to the watched folder root with separators
// normalized to forward slashes.
func relativeTarget(path, root string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
