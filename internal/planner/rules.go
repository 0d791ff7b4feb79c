// Package planner decomposes assignments into ordered study steps using
// fixed per-category rules. Output depends only on the assignment and the
// rule table, so identical input always yields identical plans.
package planner

import "github.com/akyairhashvil/studyplan/internal/models"

// CategoryRule describes how one category is broken into sessions.
type CategoryRule struct {
	// SessionMinutes is the target length of each session.
	SessionMinutes int
	// SpanDays is how far before the due date the first session is planned.
	// Zero means one day per session.
	SpanDays int
	// MinSessions and MaxSessions clamp the session count. Zero disables a bound.
	MinSessions int
	MaxSessions int
	// SingleSessionMax collapses the plan to one session when the estimate is
	// at or below it. Zero disables the shortcut.
	SingleSessionMax int
	// Label prefixes generated step titles.
	Label string
	// Phases, when set, replaces Label with a phase name per session.
	Phases []string
}

// Rules is the parameter object handed to the planner at call time.
type Rules struct {
	Categories map[models.Category]CategoryRule
	// MinimumFloor is the shortest final session a split may produce; smaller
	// remainders are folded into the preceding session.
	MinimumFloor int
	// FallbackMinutes sizes the single step emitted for a non-positive estimate.
	FallbackMinutes int
}

// Default rule values.
const (
	DefaultMinimumFloor    = 15
	DefaultFallbackMinutes = 15
)

var genericRule = CategoryRule{SessionMinutes: 45, Label: "Study Session"}

// DefaultRules returns the built-in category table.
func DefaultRules() Rules {
	return Rules{
		Categories: map[models.Category]CategoryRule{
			models.CategoryExam: {
				SessionMinutes: 60, SpanDays: 7, MinSessions: 3, MaxSessions: 6,
				Label: "Study Session",
			},
			models.CategoryQuiz: {
				SessionMinutes: 45, SpanDays: 3, MinSessions: 1, MaxSessions: 3,
				Label: "Quiz Prep",
			},
			models.CategoryHomework: {
				SessionMinutes: 45, SingleSessionMax: 60,
				Label: "Homework",
			},
			models.CategoryPracticeHomework: {
				SessionMinutes: 45, SingleSessionMax: 60,
				Label: "Practice Set",
			},
			models.CategoryReading: {
				SessionMinutes: 30, SingleSessionMax: 45,
				Label: "Reading Section",
			},
			models.CategoryReview: {
				SessionMinutes: 30, SpanDays: 3,
				Label: "Review",
			},
			models.CategoryProject: {
				SessionMinutes: 75, SpanDays: 14, MinSessions: 4,
				Label:  "Project",
				Phases: []string{"Research", "Draft", "Revise", "Finalize"},
			},
		},
		MinimumFloor:    DefaultMinimumFloor,
		FallbackMinutes: DefaultFallbackMinutes,
	}
}

// Rule returns the rule for c, falling back to a generic study rule.
func (r Rules) Rule(c models.Category) CategoryRule {
	if rule, ok := r.Categories[c]; ok && rule.SessionMinutes > 0 {
		return rule
	}
	return genericRule
}

// Clone returns a deep copy safe to mutate.
func (r Rules) Clone() Rules {
	out := Rules{
		Categories:      make(map[models.Category]CategoryRule, len(r.Categories)),
		MinimumFloor:    r.MinimumFloor,
		FallbackMinutes: r.FallbackMinutes,
	}
	for c, rule := range r.Categories {
		if rule.Phases != nil {
			rule.Phases = append([]string(nil), rule.Phases...)
		}
		out.Categories[c] = rule
	}
	return out
}
