package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/akyairhashvil/studyplan/internal/config"
	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func truncateLabel(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if ansi.StringWidth(text) <= max {
		return text
	}
	return ansi.Truncate(text, max, config.TruncationSuffix)
}

func (m Model) View() string {
	if !m.loaded {
		return "Loading schedule..."
	}
	width := m.width
	if width <= 0 {
		width = 80
	}

	header := CurrentTheme.Header.Render(m.day.Format("Monday, Jan 2 2006"))
	if m.day.Equal(m.midnight(m.now())) {
		header += CurrentTheme.Dim.Render("  (today)")
	}

	body := m.renderDay(width)
	if width >= config.CompactModeThreshold+config.MinColumnWidth {
		colWidth := width - config.MinColumnWidth - 6
		left := lipgloss.NewStyle().Width(colWidth).Render(m.renderDay(colWidth))
		right := lipgloss.NewStyle().
			Width(config.MinColumnWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(CurrentTheme.Border).
			PaddingLeft(1).
			Render(m.renderAssignments(config.MinColumnWidth - 2))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", m.renderFooter(width))
}

func (m Model) renderDay(width int) string {
	blocks := m.dayBlocks()
	events := m.dayEvents()
	if len(blocks) == 0 && len(events) == 0 {
		return CurrentTheme.Dim.Render("Nothing scheduled.")
	}

	type entry struct {
		start int64
		line  string
	}
	var entries []entry
	for _, e := range events {
		line := fmt.Sprintf("  %s  busy: %s", FormatRange(e.Start, e.End, m.loc), e.Title)
		entries = append(entries, entry{start: e.Start.UnixNano(), line: CurrentTheme.Event.Render(truncateLabel(line, width))})
	}
	for i, b := range blocks {
		if i >= config.MaxVisibleBlocks {
			break
		}
		entries = append(entries, entry{start: b.Start.UnixNano(), line: m.renderBlock(b, i == m.cursor, width)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].start < entries[j].start })

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.line
	}
	if extra := len(blocks) - config.MaxVisibleBlocks; extra > 0 {
		lines = append(lines, CurrentTheme.Dim.Render(fmt.Sprintf("  ... %d more", extra)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderBlock(b models.ScheduledBlock, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	mark := "[ ]"
	if b.Status == models.BlockCompleted {
		mark = "[x]"
	}
	var flags []string
	if b.Locked {
		flags = append(flags, "locked")
	}
	if b.UserEdited && !b.IsManual() {
		flags = append(flags, "edited")
	}
	if b.IsManual() {
		flags = append(flags, "manual")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " (" + strings.Join(flags, ", ") + ")"
	}

	lead := fmt.Sprintf("%s%s %s  ", cursor, mark, FormatRange(b.Start, b.End, m.loc))
	titleWidth := width - ansi.StringWidth(lead) - ansi.StringWidth(suffix)
	if titleWidth > config.TargetTitleWidth && width < config.CompactModeThreshold {
		titleWidth = config.TargetTitleWidth
	}
	line := lead + truncateLabel(b.Title, titleWidth) + suffix

	switch {
	case selected:
		return CurrentTheme.Selected.Render(line)
	case b.Status == models.BlockCompleted:
		return CurrentTheme.Completed.Render(line)
	case b.Locked:
		return CurrentTheme.Locked.Render(line)
	case b.UserEdited:
		return CurrentTheme.Edited.Render(line)
	default:
		return CurrentTheme.Block.Render(line)
	}
}

func (m Model) renderAssignments(width int) string {
	var b strings.Builder
	b.WriteString(CurrentTheme.Highlight.Render("Upcoming"))
	now := m.now()
	shown := 0
	for _, a := range m.assignments {
		if !a.Due.After(now) {
			continue
		}
		if shown >= config.MaxVisibleAssignments {
			break
		}
		shown++
		b.WriteString("\n")
		b.WriteString(CurrentTheme.Block.Render(truncateLabel(a.Title, width)))
		b.WriteString("\n")
		b.WriteString(CurrentTheme.Dim.Render(truncateLabel("  "+FormatDue(a.Due, now), width)))
	}
	if shown == 0 {
		b.WriteString("\n" + CurrentTheme.Dim.Render("Nothing due."))
	}
	return b.String()
}

func (m Model) renderFooter(width int) string {
	if m.adding {
		return CurrentTheme.Input.Render(m.input.View()) + "\n" +
			CurrentTheme.Dim.Render("[Enter] Add | [Esc] Cancel")
	}
	if m.toast != "" {
		style := CurrentTheme.Warning
		if m.toastIsError {
			style = CurrentTheme.Error
		}
		return style.Render(truncateLabel(m.toast, width))
	}
	return CurrentTheme.Dim.Render(ansi.Wrap(m.keys.Help(), width, " "))
}
