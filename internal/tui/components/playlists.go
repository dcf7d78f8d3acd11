package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/baton-remote/baton/internal/tui/styles"
)

// Playlists displays the library's playlists.
type Playlists struct {
	offset   int
	selected int
}

// NewPlaylists creates a new Playlists component
func NewPlaylists() *Playlists {
	return &Playlists{}
}

// SelectNext moves the cursor down.
func (p *Playlists) SelectNext(total int) {
	if p.selected < total-1 {
		p.selected++
	}
}

// SelectPrev moves the cursor up.
func (p *Playlists) SelectPrev() {
	if p.selected > 0 {
		p.selected--
	}
}

// Selected returns the selected index
func (p *Playlists) Selected() int {
	return p.selected
}

// Render renders the playlists panel
func (p *Playlists) Render(playlists []string, width, height int, focused bool) string {
	title := styles.PanelTitle("Playlists", focused)

	var content string
	if len(playlists) == 0 {
		content = styles.Muted.Render("No playlists")
	} else {
		content = p.renderList(playlists, width-4, height-4, focused)
	}

	panel := styles.Panel("", focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (p *Playlists) renderList(playlists []string, width, maxLines int, focused bool) string {
	if p.selected >= len(playlists) {
		p.selected = len(playlists) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}

	// Keep the cursor inside the visible window.
	visibleCount := maxLines - 1
	if visibleCount < 1 {
		visibleCount = 1
	}
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+visibleCount {
		p.offset = p.selected - visibleCount + 1
	}

	start := p.offset
	end := start + visibleCount
	if end > len(playlists) {
		end = len(playlists)
	}

	lines := make([]string, 0, end-start+1)

	for i := start; i < end; i++ {
		name := Truncate(playlists[i], width-6)

		selector := "  "
		if focused && i == p.selected {
			selector = "▸ "
			name = styles.Highlight.Render(name)
		}

		lines = append(lines, fmt.Sprintf("%s%s", selector, name))
	}

	if end < len(playlists) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(playlists)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Truncate shortens a string to max characters with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
