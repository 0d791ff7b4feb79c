package planner

import (
	"fmt"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
)

const day = 24 * time.Hour

// Planner turns assignments into ordered steps.
type Planner struct {
	rules Rules
}

// New returns a planner bound to rules. Missing floor or fallback values
// take the defaults.
func New(rules Rules) Planner {
	rules = rules.Clone()
	if rules.MinimumFloor <= 0 {
		rules.MinimumFloor = DefaultMinimumFloor
	}
	if rules.FallbackMinutes <= 0 {
		rules.FallbackMinutes = DefaultFallbackMinutes
	}
	return Planner{rules: rules}
}

// Rules returns a copy of the planner's rule table.
func (p Planner) Rules() Rules {
	return p.rules.Clone()
}

// Generate decomposes a into at least one step. A non-positive estimate
// yields a single fallback step instead of an error.
func (p Planner) Generate(a models.Assignment) []models.Step {
	rule := p.rules.Rule(a.Category)
	var durations []int
	if a.EstimatedMinutes <= 0 {
		durations = []int{p.rules.FallbackMinutes}
	} else {
		durations = p.durations(rule, a.EstimatedMinutes)
	}
	return layout(a, rule, durations)
}

// GenerateAll decomposes each assignment in order.
func (p Planner) GenerateAll(assignments []models.Assignment) map[string][]models.Step {
	out := make(map[string][]models.Step, len(assignments))
	for _, a := range assignments {
		out[a.ID] = p.Generate(a)
	}
	return out
}

func (p Planner) durations(rule CategoryRule, total int) []int {
	if rule.SingleSessionMax > 0 && total <= rule.SingleSessionMax {
		return []int{total}
	}
	natural := ceilDiv(total, rule.SessionMinutes)
	count := natural
	if rule.MinSessions > 0 && count < rule.MinSessions {
		count = rule.MinSessions
	}
	if rule.MaxSessions > 0 && count > rule.MaxSessions {
		count = rule.MaxSessions
	}
	if count == natural {
		// Folding a short tail can drop below the category minimum.
		out := split(total, rule.SessionMinutes, p.rules.MinimumFloor)
		if rule.MinSessions == 0 || len(out) >= rule.MinSessions {
			return out
		}
	}
	// A forced minimum never produces sessions shorter than the floor.
	if limit := total / p.rules.MinimumFloor; count > limit {
		count = max(1, limit)
	}
	return spread(total, count)
}

// split fills full-length sessions and lets the last absorb the remainder.
// A remainder below floor is merged into the previous session.
func split(total, target, floor int) []int {
	n := ceilDiv(total, target)
	if n <= 1 {
		return []int{total}
	}
	out := make([]int, n-1, n)
	for i := range out {
		out[i] = target
	}
	last := total - target*(n-1)
	if last < floor {
		out[n-2] += last
		return out
	}
	return append(out, last)
}

// spread divides total evenly over count sessions; earlier sessions take
// the leftover minutes.
func spread(total, count int) []int {
	out := make([]int, count)
	base, rem := total/count, total%count
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

func layout(a models.Assignment, rule CategoryRule, durations []int) []models.Step {
	count := len(durations)
	spanDays := rule.SpanDays
	if spanDays <= 0 {
		spanDays = count
	}
	span := time.Duration(spanDays) * day
	gap := span / time.Duration(count)
	first := a.Due.Add(-span)
	key := a.PlanKey()

	steps := make([]models.Step, count)
	for i, minutes := range durations {
		planned := first.Add(time.Duration(i) * gap)
		if !planned.Before(a.Due) {
			planned = a.Due.Add(-time.Duration(minutes) * time.Minute)
		}
		steps[i] = models.Step{
			ID:           models.StepID(a.ID, i+1),
			AssignmentID: a.ID,
			Index:        i + 1,
			Count:        count,
			Title:        stepTitle(rule, i+1, count),
			Minutes:      minutes,
			Category:     a.Category,
			PlannedAt:    planned,
			Due:          a.Due,
			PlanKey:      key,
		}
	}
	return steps
}

func stepTitle(rule CategoryRule, index, count int) string {
	if len(rule.Phases) > 0 {
		phase := rule.Phases[(index-1)*len(rule.Phases)/count]
		return fmt.Sprintf("%s (%d/%d)", phase, index, count)
	}
	if count == 1 {
		return rule.Label
	}
	return fmt.Sprintf("%s %d/%d", rule.Label, index, count)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
