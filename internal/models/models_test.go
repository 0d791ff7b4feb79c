package models

import (
	"testing"
	"time"
)

func TestBlockStatusConstants(t *testing.T) {
	if BlockPending != "pending" {
		t.Fatalf("BlockPending = %q", BlockPending)
	}
	if BlockCompleted != "completed" {
		t.Fatalf("BlockCompleted = %q", BlockCompleted)
	}
	if BlockArchived != "archived" {
		t.Fatalf("BlockArchived = %q", BlockArchived)
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"exam":              CategoryExam,
		"Quiz":              CategoryQuiz,
		"hw":                CategoryHomework,
		"practice_homework": CategoryPracticeHomework,
		"practice-homework": CategoryPracticeHomework,
		"practiceHomework":  CategoryPracticeHomework,
		" reading ":         CategoryReading,
		"review":            CategoryReview,
		"PROJECT":           CategoryProject,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		if err != nil {
			t.Fatalf("ParseCategory(%q) failed: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseCategory(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseCategory("lab"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestIntervalOverlapIsHalfOpen(t *testing.T) {
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	a := Interval{Start: base, End: base.Add(time.Hour)}
	adjacent := Interval{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)}
	inside := Interval{Start: base.Add(15 * time.Minute), End: base.Add(30 * time.Minute)}
	if a.Overlaps(adjacent) || adjacent.Overlaps(a) {
		t.Fatalf("touching intervals must not overlap")
	}
	if !a.Overlaps(inside) || !inside.Overlaps(a) {
		t.Fatalf("nested intervals must overlap")
	}
	if !a.Overlaps(a) {
		t.Fatalf("interval must overlap itself")
	}
}

func TestPlanKeyTracksDecompositionInputs(t *testing.T) {
	due := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)
	a := Assignment{ID: "a1", Title: "Essay", Category: CategoryHomework, Due: due, EstimatedMinutes: 120}
	renamed := a
	renamed.Title = "Essay draft"
	if a.PlanKey() != renamed.PlanKey() {
		t.Fatalf("title change must not invalidate plan")
	}
	longer := a
	longer.EstimatedMinutes = 150
	if a.PlanKey() == longer.PlanKey() {
		t.Fatalf("effort change must invalidate plan")
	}
	moved := a
	moved.Due = due.Add(24 * time.Hour)
	if a.PlanKey() == moved.PlanKey() {
		t.Fatalf("due change must invalidate plan")
	}
}

func TestReplaceable(t *testing.T) {
	b := ScheduledBlock{StepID: "a#1", Status: BlockPending}
	if !b.Replaceable() {
		t.Fatalf("machine pending block should be replaceable")
	}
	edited := b
	edited.UserEdited = true
	locked := b
	locked.Locked = true
	done := b
	done.Status = BlockCompleted
	manual := b
	manual.StepID = ""
	for name, blk := range map[string]ScheduledBlock{"edited": edited, "locked": locked, "done": done, "manual": manual} {
		if blk.Replaceable() {
			t.Fatalf("%s block must not be replaceable", name)
		}
	}
}

func TestRejectionMessage(t *testing.T) {
	r := Rejection{Title: "Study Session 1/3", Reason: ReasonConflict, Detail: "overlaps Chem lab"}
	if got, want := r.Message(), "Study Session 1/3: time conflict (overlaps Chem lab)"; got != want {
		t.Fatalf("Message() = %q, want %q", got, want)
	}
}
