package util

import (
	"regexp"
	"strings"
)

// FilterQuery represents the parsed components of a schedule filter string
// such as "category:exam status:pending chapter".
type FilterQuery struct {
	Category   []string
	Status     []string
	Assignment []string
	Text       []string
}

var (
	categoryRegex   = regexp.MustCompile(`category:([\w-]+)`)
	statusRegex     = regexp.MustCompile(`status:(\w+)`)
	assignmentRegex = regexp.MustCompile(`assignment:([\w-]+)`)
)

// ParseFilterQuery breaks down a raw query string into its structured components.
func ParseFilterQuery(query string) FilterQuery {
	fq := FilterQuery{}

	extract := func(re *regexp.Regexp) []string {
		matches := re.FindAllStringSubmatch(query, -1)
		if matches == nil {
			return nil
		}
		var values []string
		for _, match := range matches {
			if len(match) > 1 {
				values = append(values, strings.ToLower(match[1]))
			}
		}
		query = re.ReplaceAllString(query, "")
		return values
	}

	fq.Category = extract(categoryRegex)
	fq.Status = extract(statusRegex)
	fq.Assignment = extract(assignmentRegex)
	for _, word := range strings.Fields(query) {
		fq.Text = append(fq.Text, strings.ToLower(word))
	}
	return fq
}

// Empty reports whether the query filters nothing.
func (q FilterQuery) Empty() bool {
	return len(q.Category)+len(q.Status)+len(q.Assignment)+len(q.Text) == 0
}

// MatchAny reports whether value is one of options, or options is empty.
func MatchAny(options []string, value string) bool {
	if len(options) == 0 {
		return true
	}
	value = strings.ToLower(value)
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

// ContainsAll reports whether text contains every word, case-insensitively.
func ContainsAll(text string, words []string) bool {
	text = strings.ToLower(text)
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}
