package store

// ScheduledDeletion is a deferred deletion keyed by absolute file
// path. Re-matching an already scheduled path never resets the
// original delete_after.
type ScheduledDeletion struct {
	ID          string
	FilePath    string
	FolderID    string
	RuleName    string
	FileName    string
	Extension   string
	SizeBytes   int64
	ScheduledAt string
	DeleteAfter string
}

// Activity log action and result values.
const (
	ActionMoved     = "moved"
	ActionScheduled = "scheduled_deletion"
	ActionDeleted   = "deleted"
	ActionRestored  = "restored"

	ResultSuccess = "success"
	ResultError   = "error"
)

// ActivityEntry is one row of the activity log.
type ActivityEntry struct {
	ID        string
	FilePath  string
	FileName  string
	Action    string
	RuleName  string
	FolderID  string
	Timestamp string
	Result    string
	Details   string
}

// UndoEntry records a recoverable action (a staged deletion) until it
// is restored or expires.
type UndoEntry struct {
	ID           string
	OriginalPath string
	CurrentPath  string
	Action       string
	Timestamp    string
	ExpiresAt    string
	Restored     bool
}

// TableStat is a row count for one table.
type TableStat struct {
	TableName string
	RowCount  int64
}

// RuleStats summarizes recent activity for one rule: when it last ran
// successfully and how many times in the stats window.
type RuleStats struct {
	RuleName     string
	LastExecuted string
	Executions   int64
}
