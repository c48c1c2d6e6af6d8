// Package condition implements the composable pattern language used by
// rules to select files: glob and regex primitives combined with
// AND/OR/NOT, plus a text syntax that parses to and serializes from
// the condition tree.
//
// Text syntax (case-insensitive keywords, whitespace-separated):
//
//	*.pdf                              glob
//	invoice*                           glob, prefix
//	/^IMG_\d+\.jpg$/                   regex (delimited by /)
//	*.pdf AND *invoice*                conjunction
//	*.jpg OR *.png OR *.gif            disjunction
//	NOT *.tmp                          negation
//	(*.pdf OR *.docx) AND *report*     grouping
//	*                                  matches everything
package condition

import (
	"regexp"
	"strings"
)

// Kind discriminates the node types of a condition tree.
type Kind string

const (
	KindGlob   Kind = "glob"
	KindRegex  Kind = "regex"
	KindAnd    Kind = "and"
	KindOr     Kind = "or"
	KindNot    Kind = "not"
	KindAlways Kind = "always"
)

// Condition is a node in an immutable condition tree. Pattern is set
// for glob and regex nodes, Children for and/or nodes, and Child for
// not nodes.
type Condition struct {
	Kind     Kind
	Pattern  string
	Children []*Condition
	Child    *Condition
}

// Glob returns a glob condition. `*` matches any run of characters
// (including none), `?` matches exactly one. Matching is
// case-insensitive.
func Glob(pattern string) *Condition {
	return &Condition{Kind: KindGlob, Pattern: pattern}
}

// Regex returns a regex condition. The pattern is an unanchored
// substring search against the match target.
func Regex(pattern string) *Condition {
	return &Condition{Kind: KindRegex, Pattern: pattern}
}

// And returns a conjunction of the given conditions.
func And(children ...*Condition) *Condition {
	return &Condition{Kind: KindAnd, Children: children}
}

// Or returns a disjunction of the given conditions.
func Or(children ...*Condition) *Condition {
	return &Condition{Kind: KindOr, Children: children}
}

// Not returns the negation of the given condition.
func Not(child *Condition) *Condition {
	return &Condition{Kind: KindNot, Child: child}
}

// Always returns the catch-all condition.
func Always() *Condition {
	return &Condition{Kind: KindAlways}
}

// Evaluate tests a match target (filename or relative path) against
// the condition tree. It never fails: an invalid regex pattern simply
// evaluates to false. Strict checking is Validate's job.
func (c *Condition) Evaluate(target string) bool {
	if c == nil {
		return false
	}
	switch c.Kind {
	case KindGlob:
		return GlobMatch(c.Pattern, target)
	case KindRegex:
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(target)
	case KindAnd:
		// An empty And is vacuously true; the parser never produces one.
		for _, child := range c.Children {
			if !child.Evaluate(target) {
				return false
			}
		}
		return true
	case KindOr:
		for _, child := range c.Children {
			if child.Evaluate(target) {
				return true
			}
		}
		return false
	case KindNot:
		return !c.Child.Evaluate(target)
	case KindAlways:
		return true
	}
	return false
}

// GlobMatch reports whether text matches the glob pattern. `*` matches
// any run of characters, `?` exactly one; matching is case-insensitive.
//
// The scan is the iterative greedy-backtrack wildcard algorithm: a
// bookmark remembers the most recent `*` and the text offset it was
// tried at; on mismatch the scan rewinds to just past that star and
// advances the retry offset by one. First successful alignment wins.
func GlobMatch(pattern, text string) bool {
	pat := []byte(strings.ToLower(pattern))
	txt := []byte(strings.ToLower(text))

	px, tx := 0, 0
	starPx := -1
	starTx := 0

	for tx < len(txt) {
		switch {
		case px < len(pat) && (pat[px] == '?' || pat[px] == txt[tx]):
			px++
			tx++
		case px < len(pat) && pat[px] == '*':
			starPx = px
			starTx = tx
			px++
		case starPx >= 0:
			px = starPx + 1
			starTx++
			tx = starTx
		default:
			return false
		}
	}

	for px < len(pat) && pat[px] == '*' {
		px++
	}

	return px == len(pat)
}
