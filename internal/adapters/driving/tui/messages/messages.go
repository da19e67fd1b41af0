// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// QueryChanged fires once typing has paused. Seq identifies the keystroke
// that scheduled it so that stale ticks can be dropped.
type QueryChanged struct {
	Query string
	Seq   int
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ResultOpened reports the outcome of opening a result.
type ResultOpened struct {
	Result domain.SearchResult
	Err    error
}

// ResultCopied reports the outcome of copying a result to the clipboard.
type ResultCopied struct {
	Result domain.SearchResult
	Err    error
}

// IndexCompleted reports the outcome of a re-index started from the HUD.
type IndexCompleted struct {
	Indexed int
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search input and results view.
	ViewSearch ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
