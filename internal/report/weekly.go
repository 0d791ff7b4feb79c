// Package report renders printable schedule summaries.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/util"
	"github.com/go-pdf/fpdf"
)

// Week is the input of a weekly report.
type Week struct {
	// Start is any instant in the first day; it is truncated to local midnight.
	Start       time.Time
	Location    *time.Location
	Blocks      []models.ScheduledBlock
	Events      []models.CalendarEvent
	Assignments []models.Assignment
}

// Day groups one local day of the report.
type Day struct {
	Date   time.Time
	Blocks []models.ScheduledBlock
	Events []models.CalendarEvent
}

// Summary is the computed content of a report, independent of layout.
type Summary struct {
	From, To         time.Time
	Days             []Day
	PlannedMinutes   int
	CompletedMinutes int
	Due              []models.Assignment
}

// WeekStart returns local midnight of the Monday on or before t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
}

// Summarize buckets the week's active blocks and events by local day.
func Summarize(w Week) Summary {
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	st := w.Start.In(loc)
	y, m, d := st.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 7)

	s := Summary{From: from, To: to, Days: make([]Day, 7)}
	for i := range s.Days {
		s.Days[i].Date = from.AddDate(0, 0, i)
	}
	dayIndex := func(t time.Time) int {
		t = t.In(loc)
		for i := len(s.Days) - 1; i >= 0; i-- {
			if !t.Before(s.Days[i].Date) {
				return i
			}
		}
		return -1
	}

	for _, b := range w.Blocks {
		if !b.IsActive() || b.Start.Before(from) || !b.Start.Before(to) {
			continue
		}
		i := dayIndex(b.Start)
		s.Days[i].Blocks = append(s.Days[i].Blocks, b)
		mins := int(b.Duration().Minutes())
		s.PlannedMinutes += mins
		if b.Status == models.BlockCompleted {
			s.CompletedMinutes += mins
		}
	}
	for _, e := range w.Events {
		if e.Start.Before(from) || !e.Start.Before(to) {
			continue
		}
		i := dayIndex(e.Start)
		s.Days[i].Events = append(s.Days[i].Events, e)
	}
	for i := range s.Days {
		sort.SliceStable(s.Days[i].Blocks, func(a, b int) bool {
			return s.Days[i].Blocks[a].Start.Before(s.Days[i].Blocks[b].Start)
		})
		sort.SliceStable(s.Days[i].Events, func(a, b int) bool {
			return s.Days[i].Events[a].Start.Before(s.Days[i].Events[b].Start)
		})
	}
	for _, a := range w.Assignments {
		if !a.Due.Before(from) && a.Due.Before(to) {
			s.Due = append(s.Due, a)
		}
	}
	sort.SliceStable(s.Due, func(i, j int) bool { return s.Due[i].Due.Before(s.Due[j].Due) })
	return s
}

// Render writes the weekly PDF to out.
func Render(out io.Writer, w Week) error {
	pdf := build(w)
	return pdf.Output(out)
}

// WriteFile renders the report into dir and returns the file path.
func WriteFile(dir string, w Week) (string, error) {
	if err := util.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	s := Summarize(w)
	path := filepath.Join(dir, fmt.Sprintf("studyplan_week_%s.pdf", s.From.Format("2006-01-02")))
	pdf := build(w)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func build(w Week) *fpdf.Fpdf {
	s := Summarize(w)
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Study Plan", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Study Plan: %s - %s",
		s.From.Format("Jan 2"), s.To.AddDate(0, 0, -1).Format("Jan 2, 2006")))
	pdf.Ln(12)

	for _, day := range s.Days {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 9, day.Date.Format("Monday, Jan 2"))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 11)
		if len(day.Blocks) == 0 && len(day.Events) == 0 {
			pdf.Cell(0, 7, "  - Nothing scheduled.")
			pdf.Ln(7)
		}
		for _, e := range day.Events {
			pdf.SetTextColor(120, 120, 120)
			pdf.Cell(0, 7, tr(fmt.Sprintf("  %s  busy: %s", span(e.Start, e.End, w.Location), e.Title)))
			pdf.Ln(6)
		}
		pdf.SetTextColor(0, 0, 0)
		for _, b := range day.Blocks {
			mark := "[ ]"
			if b.Status == models.BlockCompleted {
				mark = "[x]"
			}
			line := fmt.Sprintf("  %s %s  %s", mark, span(b.Start, b.End, w.Location), b.Title)
			if b.Locked {
				line += " (locked)"
			}
			pdf.Cell(0, 7, tr(line))
			pdf.Ln(6)
		}
		pdf.Ln(3)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Planned: %s   Completed: %s",
		minutesLabel(s.PlannedMinutes), minutesLabel(s.CompletedMinutes)))
	pdf.Ln(10)

	if len(s.Due) > 0 {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 9, "Due this week")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		for _, a := range s.Due {
			text := fmt.Sprintf("%s  %s (%s, %s)", a.Due.In(loc(w)).Format("Mon 15:04"),
				a.Title, a.Category, minutesLabel(a.EstimatedMinutes))
			pdf.MultiCell(0, 7, tr(text), "", "", false)
		}
	}
	return pdf
}

func loc(w Week) *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}

func span(start, end time.Time, l *time.Location) string {
	if l == nil {
		l = time.Local
	}
	return start.In(l).Format("15:04") + "-" + end.In(l).Format("15:04")
}

func minutesLabel(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}
