package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrellin/filebutler/pkg/condition"
	"github.com/acrellin/filebutler/pkg/errors"
)

func TestRuleCompileAndSync(t *testing.T) {
	r := Rule{Name: "pdfs", ConditionText: "*.pdf AND *invoice*"}
	require.NoError(t, r.Compile())
	require.NotNil(t, r.Condition)
	assert.True(t, r.Condition.Evaluate("invoice_2026.pdf"))

	// Editing the tree and syncing updates the text mirror.
	r.Condition = condition.Or(condition.Glob("*.jpg"), condition.Glob("*.png"))
	r.SyncText()
	assert.Equal(t, "*.jpg OR *.png", r.ConditionText)
}

func TestRuleCompileBadCondition(t *testing.T) {
	r := Rule{Name: "broken", ConditionText: "(*.pdf"}
	err := r.Compile()
	require.Error(t, err)
	assert.Equal(t, errors.ErrRuleInvalid, errors.GetCode(err))
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{
			"valid move rule",
			Rule{Name: "docs", ConditionText: "*.pdf", Action: Action{Type: ActionMove, Destination: "/tmp/docs"}},
			false,
		},
		{
			"valid delete rule",
			Rule{Name: "temps", ConditionText: "*.tmp", Action: Action{Type: ActionDelete, AfterDays: 7}},
			false,
		},
		{
			"immediate delete is valid",
			Rule{Name: "now", ConditionText: "*.part", Action: Action{Type: ActionDelete}},
			false,
		},
		{
			"missing name",
			Rule{ConditionText: "*.pdf", Action: Action{Type: ActionMove, Destination: "/tmp"}},
			true,
		},
		{
			"move without destination",
			Rule{Name: "x", ConditionText: "*.pdf", Action: Action{Type: ActionMove}},
			true,
		},
		{
			"negative delete days",
			Rule{Name: "x", ConditionText: "*.pdf", Action: Action{Type: ActionDelete, AfterDays: -1}},
			true,
		},
		{
			"unknown action",
			Rule{Name: "x", ConditionText: "*.pdf", Action: Action{Type: "copy"}},
			true,
		},
		{
			"invalid regex in condition",
			Rule{Name: "x", ConditionText: "/[unclosed/", Action: Action{Type: ActionMove, Destination: "/tmp"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFolderNeedsRecursion(t *testing.T) {
	f := WatchedFolder{Path: "/watch"}
	assert.False(t, f.NeedsRecursion())

	f.Rules = []Rule{{Name: "r", Enabled: false, MatchSubdirectories: true}}
	assert.False(t, f.NeedsRecursion(), "disabled rules do not force recursion")

	f.Rules[0].Enabled = true
	assert.True(t, f.NeedsRecursion())

	f.Rules[0].MatchSubdirectories = false
	f.WatchSubdirectories = true
	assert.True(t, f.NeedsRecursion())
}

func TestFolderCompile(t *testing.T) {
	f := WatchedFolder{
		Path: "/watch",
		Rules: []Rule{
			{Name: "a", ConditionText: "*.pdf"},
			{Name: "b", ConditionText: "*.jpg OR *.png"},
		},
	}
	require.NoError(t, f.Compile())
	assert.NotNil(t, f.Rules[0].Condition)
	assert.NotNil(t, f.Rules[1].Condition)
}
