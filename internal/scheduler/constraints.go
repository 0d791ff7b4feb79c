package scheduler

import (
	"fmt"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
)

// Constraints is the parameter object for one scheduling pass.
type Constraints struct {
	// WorkdayStart and WorkdayEnd are wall clock offsets from local midnight.
	WorkdayStart time.Duration
	WorkdayEnd   time.Duration
	// Granularity is the snap grid, measured from local midnight.
	Granularity time.Duration
	// Location defines local days. Nil means time.Local.
	Location *time.Location
	// NotBefore is the earliest start for automatic placement, usually now.
	NotBefore time.Time
	// Busy holds external calendar events that blocks may not overlap.
	Busy []models.CalendarEvent
}

// Default constraint values.
const (
	DefaultWorkdayStart = 7 * time.Hour
	DefaultWorkdayEnd   = 23 * time.Hour
	DefaultGranularity  = 15 * time.Minute
)

// DefaultConstraints returns a 07:00-23:00 workday on a 15 minute grid.
func DefaultConstraints() Constraints {
	return Constraints{
		WorkdayStart: DefaultWorkdayStart,
		WorkdayEnd:   DefaultWorkdayEnd,
		Granularity:  DefaultGranularity,
		Location:     time.Local,
	}
}

// Validate rejects windows and grids the scheduler cannot reason about.
func (c Constraints) Validate() error {
	switch {
	case c.Granularity <= 0:
		return fmt.Errorf("%w: granularity must be positive", ErrInvalidConstraints)
	case (24*time.Hour)%c.Granularity != 0:
		return fmt.Errorf("%w: granularity %v does not divide a day", ErrInvalidConstraints, c.Granularity)
	case c.WorkdayStart < 0 || c.WorkdayEnd > 24*time.Hour:
		return fmt.Errorf("%w: workday must lie within one day", ErrInvalidConstraints)
	case c.WorkdayEnd <= c.WorkdayStart:
		return fmt.Errorf("%w: workday end %v not after start %v", ErrInvalidConstraints, c.WorkdayEnd, c.WorkdayStart)
	}
	for _, e := range c.Busy {
		if !e.Interval().Valid() {
			return fmt.Errorf("%w: calendar event %q", ErrInvalidInterval, e.ID)
		}
	}
	return nil
}

// WorkdayLength is the longest block that fits in one day.
func (c Constraints) WorkdayLength() time.Duration {
	return c.WorkdayEnd - c.WorkdayStart
}

func (c Constraints) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// wallClock returns the instant offset past local midnight of t's day.
func (c Constraints) wallClock(t time.Time, offset time.Duration) time.Time {
	t = t.In(c.loc())
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, int(offset), c.loc())
}

func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// Snap rounds t to the nearest grid point. A time exactly halfway between
// two grid points rounds up to the later one.
func (c Constraints) Snap(t time.Time) time.Time {
	t = t.In(c.loc())
	off := sinceMidnight(t)
	q, r := off/c.Granularity, off%c.Granularity
	if 2*r >= c.Granularity {
		q++
	}
	return c.wallClock(t, q*c.Granularity)
}

// snapUp rounds t up to the next grid point, leaving aligned times alone.
func (c Constraints) snapUp(t time.Time) time.Time {
	t = t.In(c.loc())
	off := sinceMidnight(t)
	q, r := off/c.Granularity, off%c.Granularity
	if r != 0 {
		q++
	}
	return c.wallClock(t, q*c.Granularity)
}

// Workday returns the working window of the local day containing t.
func (c Constraints) Workday(t time.Time) (time.Time, time.Time) {
	return c.wallClock(t, c.WorkdayStart), c.wallClock(t, c.WorkdayEnd)
}

// WithinHours reports whether [start, end) lies inside the workday of start.
func (c Constraints) WithinHours(start, end time.Time) bool {
	ws, we := c.Workday(start)
	return !start.Before(ws) && !end.After(we)
}

func (c Constraints) hoursLabel() string {
	return fmt.Sprintf("%s-%s", clockLabel(c.WorkdayStart), clockLabel(c.WorkdayEnd))
}

func clockLabel(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
