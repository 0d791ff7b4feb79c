package models

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies an assignment and selects its decomposition rule.
type Category string

const (
	CategoryExam             Category = "exam"
	CategoryQuiz             Category = "quiz"
	CategoryHomework         Category = "homework"
	CategoryPracticeHomework Category = "practiceHomework"
	CategoryReading          Category = "reading"
	CategoryReview           Category = "review"
	CategoryProject          Category = "project"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryExam,
	CategoryQuiz,
	CategoryHomework,
	CategoryPracticeHomework,
	CategoryReading,
	CategoryReview,
	CategoryProject,
}

// ParseCategory maps user input onto a Category. Snake and kebab spellings are accepted.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "exam", "test", "midterm", "final":
		return CategoryExam, nil
	case "quiz":
		return CategoryQuiz, nil
	case "homework", "hw":
		return CategoryHomework, nil
	case "practicehomework", "practice":
		return CategoryPracticeHomework, nil
	case "reading":
		return CategoryReading, nil
	case "review":
		return CategoryReview, nil
	case "project":
		return CategoryProject, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// BlockStatus enumerates the lifecycle states of a scheduled block.
type BlockStatus string

const (
	BlockPending   BlockStatus = "pending"
	BlockCompleted BlockStatus = "completed"
	BlockArchived  BlockStatus = "archived"
)

// Assignment is the read-only snapshot of a task handed to the planner core.
type Assignment struct {
	ID               string
	Title            string
	Category         Category
	Due              time.Time
	EstimatedMinutes int
	Locked           bool // plan is frozen once generated
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PlanKey fingerprints the fields that influence decomposition.
// A plan generated under a different key is stale.
func (a Assignment) PlanKey() string {
	return fmt.Sprintf("%s|%d|%d", a.Category, a.Due.UTC().Unix(), a.EstimatedMinutes)
}

// Step is one unit of planned work produced by decomposing an assignment.
type Step struct {
	ID           string
	AssignmentID string
	Index        int // 1-based
	Count        int
	Title        string
	Minutes      int
	Category     Category
	PlannedAt    time.Time
	Due          time.Time
	PlanKey      string
}

// Duration returns the step length.
func (s Step) Duration() time.Duration {
	return time.Duration(s.Minutes) * time.Minute
}

// StepID builds the deterministic identifier of the index-th step of an assignment.
func StepID(assignmentID string, index int) string {
	return fmt.Sprintf("%s#%d", assignmentID, index)
}

// ScheduledBlock is a concrete, time-placed unit of work on the schedule.
type ScheduledBlock struct {
	ID           string
	AssignmentID string // empty for manual blocks
	StepID       string
	StepIndex    int
	StepCount    int
	Title        string
	Category     Category
	Start        time.Time
	End          time.Time
	Status       BlockStatus
	Locked       bool
	UserEdited   bool
	PlanKey      string
	CompletedAt  *time.Time
	ArchivedAt   *time.Time
}

// Duration returns End - Start.
func (b ScheduledBlock) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// IsManual reports whether the block was created by hand rather than from a step.
func (b ScheduledBlock) IsManual() bool {
	return b.StepID == ""
}

// IsActive reports whether the block still occupies time on the schedule.
func (b ScheduledBlock) IsActive() bool {
	return b.Status != BlockArchived
}

// Replaceable reports whether automatic regeneration may move or drop the block.
func (b ScheduledBlock) Replaceable() bool {
	return b.Status == BlockPending && !b.UserEdited && !b.Locked && !b.IsManual()
}

// Interval returns the half-open time range covered by the block.
func (b ScheduledBlock) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// CalendarEvent is external busy time imported from the user's calendar.
type CalendarEvent struct {
	ID        string
	Title     string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}

// Interval returns the busy range covered by the event.
func (e CalendarEvent) Interval() Interval {
	return Interval{Start: e.Start, End: e.End}
}

// ReasonCode classifies why a placement was rejected.
type ReasonCode string

const (
	ReasonConflict     ReasonCode = "conflict"
	ReasonOutsideHours ReasonCode = "outside_hours"
	ReasonPastDue      ReasonCode = "past_due"
)

// Rejection pairs a refused placement with the constraint it violated.
type Rejection struct {
	StepID       string
	BlockID      string
	AssignmentID string
	Title        string
	Reason       ReasonCode
	Detail       string
	Start        time.Time
	End          time.Time
}

// Message returns a short, user-facing description suitable for a toast.
func (r Rejection) Message() string {
	var base string
	switch r.Reason {
	case ReasonConflict:
		base = "time conflict"
	case ReasonOutsideHours:
		base = "outside working hours"
	case ReasonPastDue:
		base = "no time left before due date"
	default:
		base = string(r.Reason)
	}
	if r.Title != "" {
		base = fmt.Sprintf("%s: %s", r.Title, base)
	}
	if r.Detail != "" {
		base = fmt.Sprintf("%s (%s)", base, r.Detail)
	}
	return base
}

// AttemptType describes what triggered a reschedule.
type AttemptType string

const (
	AttemptManual       AttemptType = "manual"
	AttemptAutoConflict AttemptType = "auto-conflict"
	AttemptRegenerate   AttemptType = "regenerate"
)

// RescheduleAttempt is the audit record of one attempt to move a block.
type RescheduleAttempt struct {
	ID            string
	BlockID       string
	AttemptType   AttemptType
	AttemptedAt   time.Time
	OldStart      time.Time
	OldEnd        time.Time
	NewStart      *time.Time
	NewEnd        *time.Time
	Success       bool
	FailureReason string
}
