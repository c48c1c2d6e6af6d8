package filebutler

// User-facing command descriptions, collected here so the command
// definitions stay readable.
const (
	MsgRootShort = "A rule-driven file organizer"
	MsgRootLong = `filebutler keeps your folders tidy: it watches directories you choose,
matches incoming files against your rules, and moves them where they
belong or schedules them for deletion after a grace period.

Rules use a small pattern language: globs (*.pdf, report-??.txt),
regexes (/^inv-\d+/), and AND, OR, NOT with parentheses.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"

	MsgScanShort         = "Scan watched folders and apply rules once"
	MsgWatchShort        = "Watch folders live and apply rules as files settle"
	MsgRunDeletionsShort = "Process due scheduled deletions now"
	MsgSchedulesShort    = "Inspect and cancel pending scheduled deletions"
	MsgUndoShort         = "List and restore recently deleted files"
	MsgActivityShort     = "Show the activity log"
	MsgFoldersShort      = "Manage watched folders"
	MsgRulesShort        = "Manage rules in a watched folder"
	MsgConfigShort       = "Show, export, and import the configuration"
	MsgStatsShort        = "Show database and rule execution statistics"
	MsgCleanupShort      = "Run the maintenance pass (prune logs, expired undo, size cap)"
)
