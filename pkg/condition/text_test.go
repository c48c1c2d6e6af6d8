package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLeaves(t *testing.T) {
	assert.Equal(t, "*", Always().Text())
	assert.Equal(t, "*.pdf", Glob("*.pdf").Text())
	assert.Equal(t, `/^IMG_\d+/`, Regex(`^IMG_\d+`).Text())
}

func TestTextParenthesization(t *testing.T) {
	tests := []struct {
		name string
		cond *Condition
		want string
	}{
		{
			"or inside and is wrapped",
			And(Or(Glob("*.pdf"), Glob("*.docx")), Glob("*report*")),
			"(*.pdf OR *.docx) AND *report*",
		},
		{
			"and inside or needs no wrapping",
			Or(And(Glob("*.pdf"), Glob("*invoice*")), Glob("*.docx")),
			"*.pdf AND *invoice* OR *.docx",
		},
		{
			"not of leaf is bare",
			Not(Glob("*.tmp")),
			"NOT *.tmp",
		},
		{
			"not of or is wrapped",
			Not(Or(Glob("*.tmp"), Glob("*.bak"))),
			"NOT (*.tmp OR *.bak)",
		},
		{
			"not of and is wrapped",
			Not(And(Glob("*a*"), Glob("*b*"))),
			"NOT (*a* AND *b*)",
		},
		{
			"not of not is bare",
			Not(Not(Glob("*.pdf"))),
			"NOT NOT *.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Text())
		})
	}
}

// Round-trip property: parsing the serialized text yields a tree that
// evaluates identically to the original for representative inputs.
func TestRoundTrip(t *testing.T) {
	conds := []*Condition{
		Glob("*.pdf"),
		Regex(`^IMG_\d+\.jpg$`),
		Always(),
		And(Glob("*.pdf"), Glob("*invoice*")),
		Or(Glob("*.jpg"), Glob("*.png"), Glob("*.gif")),
		Not(Glob("*.tmp")),
		Not(Or(Glob("*.tmp"), Glob("*.bak"))),
		And(Or(Glob("*.pdf"), Glob("*.docx")), Glob("*report*")),
		Or(And(Glob("*.pdf"), Not(Glob("*draft*"))), Regex(`\d{4}`)),
		And(Not(And(Glob("*a*"), Glob("*b*"))), Or(Always(), Glob("?.txt"))),
	}
	inputs := []string{
		"invoice_2026.pdf",
		"report.pdf",
		"annual_report.docx",
		"IMG_1234.jpg",
		"photo.jpg",
		"cache.tmp",
		"backup.bak",
		"draft_report.pdf",
		"a.txt",
		"xaybz",
		"",
	}

	for _, c := range conds {
		text := c.Text()
		reparsed, err := Parse(text)
		require.NoError(t, err, "serialized text %q must reparse", text)
		for _, in := range inputs {
			assert.Equal(t, c.Evaluate(in), reparsed.Evaluate(in),
				"condition %q differs on input %q after round-trip", text, in)
		}
	}
}

// Text round-trips from text too: parse(text).Text() reparses to an
// equivalent tree even when whitespace or casing normalizes.
func TestRoundTripFromText(t *testing.T) {
	cases := []string{
		"*.pdf",
		"*.pdf AND *invoice*",
		"*.jpg OR *.png",
		"NOT *.tmp",
		"(*.pdf OR *.docx) AND *report*",
		"not (*.a and *.b)",
		`/^IMG_\d+\.jpg$/ OR *.png`,
	}

	for _, input := range cases {
		c, err := Parse(input)
		require.NoError(t, err)
		again, err := Parse(c.Text())
		require.NoError(t, err)
		for _, in := range []string{"invoice_x.pdf", "a.png", "t.tmp", "IMG_9.jpg", "q.docx_report"} {
			assert.Equal(t, c.Evaluate(in), again.Evaluate(in),
				"input %q, probe %q", input, in)
		}
	}
}
