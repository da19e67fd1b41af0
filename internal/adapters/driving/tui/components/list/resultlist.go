// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// linesPerResult is the height of one rendered result (title, path, preview).
const linesPerResult = 3

// ResultList displays search results in a navigable list.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int

	markOpen  string
	markClose string
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles:    s,
		width:     80,
		height:    10,
		markOpen:  domain.DefaultHighlightOpen,
		markClose: domain.DefaultHighlightClose,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp, tea.KeyCtrlP:
			r.MoveUp()
		case tea.KeyDown, tea.KeyCtrlN:
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	visibleCount := r.height / linesPerResult
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.results))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}
	return strings.Join(lines, "\n")
}

// renderResult formats a single search result.
func (r *ResultList) renderResult(index int, result *domain.SearchResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := result.Title
	if title == "" {
		title = "(Untitled)"
	}
	maxTitleLen := max(r.width-20, 10)
	title = Truncate(title, maxTitleLen)

	meta := fmt.Sprintf("%.2f", result.Score)
	if result.UsageCount > 0 {
		meta += fmt.Sprintf(" · %d opens", result.UsageCount)
	}

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator+title) + "  " + r.styles.Muted.Render(meta)
	} else {
		titleLine = r.styles.Normal.Render(indicator+title) + "  " + r.styles.Muted.Render(meta)
	}

	maxLineLen := max(r.width-6, 20)
	pathLine := "    " + r.styles.Path.Render(Truncate(result.Path, maxLineLen))

	return titleLine + "\n" + pathLine + "\n    " + r.renderPreview(result.Preview, maxLineLen)
}

// renderPreview styles matched spans and truncates the visible text to width.
func (r *ResultList) renderPreview(preview string, width int) string {
	preview = strings.Join(strings.Fields(preview), " ")

	var b strings.Builder
	remaining := width
	for _, span := range domain.SplitPreview(preview, r.markOpen, r.markClose) {
		if remaining <= 0 {
			break
		}
		text := span.Text
		if n := len([]rune(text)); n > remaining {
			text = Truncate(text, remaining)
			remaining = 0
		} else {
			remaining -= n
		}
		if span.Match {
			b.WriteString(r.styles.Match.Render(text))
		} else {
			b.WriteString(r.styles.Muted.Render(text))
		}
	}
	return b.String()
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetMarkers sets the highlight markers used to find matched spans.
func (r *ResultList) SetMarkers(open, closing string) {
	r.markOpen = open
	r.markClose = closing
}

// SetResults replaces the listed results and resets the selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if len(r.results) == 0 || r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}
