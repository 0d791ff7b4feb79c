package tui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyHandler reacts to one key in the schedule view.
type KeyHandler func(m Model) (Model, tea.Cmd)

type KeyBinding struct {
	Keys        []string
	Handler     KeyHandler
	Description string
	Priority    int
}

type HandlerRegistry struct {
	bindings []KeyBinding
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

func (r *HandlerRegistry) Register(b KeyBinding) {
	r.bindings = append(r.bindings, b)
	sort.SliceStable(r.bindings, func(i, j int) bool {
		return r.bindings[i].Priority > r.bindings[j].Priority
	})
}

func (r *HandlerRegistry) Handle(m Model, key string) (Model, tea.Cmd, bool) {
	for _, b := range r.bindings {
		for _, k := range b.Keys {
			if k == key {
				next, cmd := b.Handler(m)
				return next, cmd, true
			}
		}
	}
	return m, nil, false
}

func (r *HandlerRegistry) Help() string {
	var parts []string
	for _, b := range r.bindings {
		if b.Description == "" || len(b.Keys) == 0 {
			continue
		}
		parts = append(parts, "["+b.Keys[0]+"]"+b.Description)
	}
	return strings.Join(parts, " ")
}
