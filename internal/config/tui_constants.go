package config

// Layout constants.
const (
	// MinColumnWidth is the minimum width for the schedule column.
	MinColumnWidth = 24

	// CompactModeThreshold triggers compact rendering below this width.
	CompactModeThreshold = 60

	// TargetTitleWidth is the preferred width for block titles.
	TargetTitleWidth = 36
)

// Display limits.
const (
	// MaxVisibleBlocks limits blocks shown per day before scrolling.
	MaxVisibleBlocks = 20

	// MaxVisibleAssignments limits the assignment sidebar.
	MaxVisibleAssignments = 12

	// TruncationSuffix appended to truncated strings.
	TruncationSuffix = "..."
)

// Input constraints.
const (
	// MaxTitleLength is the maximum assignment or block title length.
	MaxTitleLength = 100

	// MoveStepMinutes is how far one keypress nudges a block.
	MoveStepMinutes = 15
)
