package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/service"
)

const rule = "─"

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat(rule, 50))
}

func formatSpan(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format("Mon Jan 2 15:04") + "-" + end.In(loc).Format("15:04")
}

func printBlock(w io.Writer, b models.ScheduledBlock, loc *time.Location) {
	var flags []string
	if b.Status != models.BlockPending {
		flags = append(flags, string(b.Status))
	}
	if b.Locked {
		flags = append(flags, "locked")
	}
	if b.UserEdited {
		flags = append(flags, "edited")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " (" + strings.Join(flags, ", ") + ")"
	}
	fmt.Fprintf(w, "%s  %s%s  [%s]\n", formatSpan(b.Start, b.End, loc), b.Title, suffix, b.ID)
}

// printOutcome reports placements and every rejection. It returns the
// number of rejections.
func printOutcome(w io.Writer, out service.Outcome, loc *time.Location) int {
	for _, b := range out.Accepted {
		fmt.Fprint(w, "placed    ")
		printBlock(w, b, loc)
	}
	for _, r := range out.Rejected {
		fmt.Fprintf(w, "rejected  %s  %s [%s]\n", formatSpan(r.Start, r.End, loc), r.Message(), r.Reason)
	}
	if len(out.Accepted) == 0 && len(out.Rejected) == 0 {
		fmt.Fprintln(w, "nothing to schedule")
	}
	return len(out.Rejected)
}
