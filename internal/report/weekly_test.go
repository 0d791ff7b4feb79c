package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/testutil"
)

func sampleWeek() Week {
	at := testutil.At
	done := testutil.NewBlock("b2").At(at(1, 9, 0), 45*time.Minute).WithStatus(models.BlockCompleted).Build()
	return Week{
		Start:    at(2, 15, 0),
		Location: time.UTC,
		Blocks: []models.ScheduledBlock{
			testutil.NewBlock("b1").WithTitle("Homework 1/2").At(at(1, 14, 0), time.Hour).Build(),
			done,
			testutil.NewBlock("old").At(at(-1, 9, 0), time.Hour).Build(),
			testutil.NewBlock("gone").At(at(3, 9, 0), time.Hour).WithStatus(models.BlockArchived).Build(),
		},
		Events: []models.CalendarEvent{
			{ID: "e1", Title: "Lab", Start: at(4, 13, 0), End: at(4, 15, 0)},
		},
		Assignments: []models.Assignment{
			testutil.NewAssignment().WithTitle("Problem Set – Résumé").WithDue(at(4, 12, 0)).Build(),
			testutil.NewAssignment().WithID("later").WithDue(at(9, 12, 0)).Build(),
		},
	}
}

func TestWeekStart(t *testing.T) {
	got := WeekStart(testutil.At(3, 22, 15), time.UTC)
	if !got.Equal(testutil.Monday) {
		t.Fatalf("WeekStart = %v, want %v", got, testutil.Monday)
	}
	if got := WeekStart(testutil.At(6, 10, 0), time.UTC); !got.Equal(testutil.Monday) {
		t.Fatalf("Sunday should map back to Monday, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	w := sampleWeek()
	w.Start = WeekStart(w.Start, time.UTC)
	s := Summarize(w)
	if len(s.Days) != 7 || !s.From.Equal(testutil.Monday) {
		t.Fatalf("unexpected range %v (%d days)", s.From, len(s.Days))
	}
	tue := s.Days[1]
	if len(tue.Blocks) != 2 || tue.Blocks[0].ID != "b2" || tue.Blocks[1].ID != "b1" {
		t.Fatalf("tuesday blocks out of order: %+v", tue.Blocks)
	}
	if len(s.Days[3].Blocks) != 0 {
		t.Fatalf("archived block should be omitted")
	}
	if len(s.Days[4].Events) != 1 {
		t.Fatalf("expected the lab on friday")
	}
	if s.PlannedMinutes != 105 || s.CompletedMinutes != 45 {
		t.Fatalf("minutes = %d/%d, want 105/45", s.PlannedMinutes, s.CompletedMinutes)
	}
	if len(s.Due) != 1 || s.Due[0].ID != "asg-1" {
		t.Fatalf("unexpected due list %+v", s.Due)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleWeek()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := sampleWeek()
	w.Start = WeekStart(w.Start, time.UTC)
	path, err := WriteFile(dir, w)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if filepath.Base(path) != "studyplan_week_2026-03-02.pdf" {
		t.Fatalf("unexpected file name %s", path)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("report not written: %v", err)
	}
}
