package tui

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration for display (e.g., "2h 15m", "45m").
func FormatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

// FormatRange renders a block or event span as "09:00-10:30".
func FormatRange(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format("15:04") + "-" + end.In(loc).Format("15:04")
}

// FormatDue describes how far away a due date is.
func FormatDue(due, now time.Time) string {
	left := due.Sub(now)
	if left <= 0 {
		return "overdue"
	}
	if left < 24*time.Hour {
		return "due in " + FormatDuration(left.Truncate(time.Minute))
	}
	days := int(left / (24 * time.Hour))
	hours := int((left % (24 * time.Hour)) / time.Hour)
	if hours == 0 {
		return fmt.Sprintf("due in %dd", days)
	}
	return fmt.Sprintf("due in %dd %dh", days, hours)
}
