package condition

import (
	"regexp"

	"github.com/acrellin/filebutler/pkg/errors"
)

// Validate checks the condition tree strictly: every regex node must
// compile. It fails with a descriptive message on the first invalid
// pattern. Trees built only from glob/and/or/not/always nodes always
// pass. This is the strict counterpart to Evaluate, which degrades an
// invalid regex to false instead of failing.
func Validate(c *Condition) error {
	if c == nil {
		return errors.New(errors.ErrConditionSyntax, "nil condition")
	}
	switch c.Kind {
	case KindRegex:
		if _, err := regexp.Compile(c.Pattern); err != nil {
			return errors.Wrapf(err, errors.ErrConditionRegex, "invalid regex %q", c.Pattern)
		}
		return nil
	case KindAnd, KindOr:
		for _, child := range c.Children {
			if err := Validate(child); err != nil {
				return err
			}
		}
		return nil
	case KindNot:
		return Validate(c.Child)
	default:
		return nil
	}
}

// ValidateText parses and validates a condition text string in one
// step, the strict check used when rules are authored or edited.
func ValidateText(input string) error {
	c, err := Parse(input)
	if err != nil {
		return err
	}
	return Validate(c)
}
