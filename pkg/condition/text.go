package condition

import "strings"

// Text serializes the condition tree back to the text syntax. It is
// the structural inverse of Parse: parentheses are inserted exactly
// where omitting them would change meaning: an Or nested in an And's
// children is wrapped, and a Not's child is wrapped only when it is
// itself an And or Or.
func (c *Condition) Text() string {
	if c == nil {
		return ""
	}
	switch c.Kind {
	case KindAlways:
		return "*"
	case KindGlob:
		return c.Pattern
	case KindRegex:
		return "/" + c.Pattern + "/"
	case KindNot:
		inner := c.Child.Text()
		if needsParens(c.Child) {
			return "NOT (" + inner + ")"
		}
		return "NOT " + inner
	case KindAnd:
		parts := make([]string, 0, len(c.Children))
		for _, child := range c.Children {
			if child.Kind == KindOr {
				parts = append(parts, "("+child.Text()+")")
			} else {
				parts = append(parts, child.Text())
			}
		}
		return strings.Join(parts, " AND ")
	case KindOr:
		parts := make([]string, 0, len(c.Children))
		for _, child := range c.Children {
			parts = append(parts, child.Text())
		}
		return strings.Join(parts, " OR ")
	}
	return ""
}

func needsParens(c *Condition) bool {
	return c != nil && (c.Kind == KindAnd || c.Kind == KindOr)
}
