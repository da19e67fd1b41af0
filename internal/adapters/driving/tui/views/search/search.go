// Package search provides the search-as-you-type HUD view for the TUI.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
)

// DefaultDebounce is how long typing must pause before a search runs.
const DefaultDebounce = 120 * time.Millisecond

// Config configures the search view.
type Config struct {
	// Vault runs searches, re-indexes and access recording.
	Vault driving.VaultOperations

	// Actions opens and copies results. When nil, Enter only records access.
	Actions driving.ResultActionService

	// VaultPath is the root re-indexed by the reindex binding.
	VaultPath string

	// HighlightOpen and HighlightClose are the preview match markers.
	HighlightOpen  string
	HighlightClose string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
}

// View is the HUD: a query line, the live result list and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	vault     driving.VaultOperations
	actions   driving.ResultActionService
	vaultPath string
	debounce  time.Duration
	ctx       context.Context

	seq      int
	indexing bool
	width    int
	height   int
	ready    bool
	err      error
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, cfg Config) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	results := list.NewResultList(s)
	if cfg.HighlightOpen != "" || cfg.HighlightClose != "" {
		results.SetMarkers(cfg.HighlightOpen, cfg.HighlightClose)
	}

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewSearchInput(s),
		list:      results,
		statusbar: status.NewBar(s, km),
		vault:     cfg.Vault,
		actions:   cfg.Actions,
		vaultPath: cfg.VaultPath,
		debounce:  debounce,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QueryChanged:
		if msg.Seq != v.seq {
			return v, nil
		}
		return v, v.performSearch(msg.Query)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ResultOpened:
		v.handleActionDone(msg.Err, "Opened "+msg.Result.Title)
		return v, nil

	case messages.ResultCopied:
		v.handleActionDone(msg.Err, "Copied "+msg.Result.Title)
		return v, nil

	case messages.IndexCompleted:
		return v, v.handleIndexCompleted(msg)

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd, _ = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input. The query line always has focus;
// bindings use non-printable keys only.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Clear):
		if v.input.Value() == "" {
			return v, func() tea.Msg { return messages.Quit{} }
		}
		v.Reset()
		return v, nil

	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
		return v, nil

	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
		return v, nil

	case key.Matches(msg, v.keymap.Open):
		return v, v.openSelected()

	case key.Matches(msg, v.keymap.Copy):
		return v, v.copySelected()

	case key.Matches(msg, v.keymap.Reindex):
		return v, v.reindex()
	}

	var inputCmd tea.Cmd
	var changed bool
	v.input, inputCmd, changed = v.input.Update(msg)
	if !changed {
		return v, inputCmd
	}
	return v, tea.Batch(inputCmd, v.queryChanged())
}

// queryChanged schedules a search once typing pauses. Each keystroke bumps
// the sequence number so only the last scheduled tick searches.
func (v *View) queryChanged() tea.Cmd {
	v.seq++
	query := v.input.Query()
	if query == "" {
		v.list.SetResults(nil)
		v.err = nil
		v.statusbar.Clear()
		return nil
	}

	seq := v.seq
	return tea.Tick(v.debounce, func(time.Time) tea.Msg {
		return messages.QueryChanged{Query: query, Seq: seq}
	})
}

// performSearch runs query against the vault.
func (v *View) performSearch(query string) tea.Cmd {
	if v.vault == nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: ErrNoVault} }
	}
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("")

	vault, ctx := v.vault, v.ctx
	return func() tea.Msg {
		results, err := vault.SearchVault(ctx, query)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

// handleSearchCompleted applies results unless the query has moved on.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Query != v.input.Query() {
		return
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
}

// openSelected opens the selected result. Without an action service the
// access is still recorded so usage ranking learns from the HUD.
func (v *View) openSelected() tea.Cmd {
	result := v.list.SelectedResult()
	if result == nil {
		return nil
	}
	selected := *result
	actions, vault, ctx := v.actions, v.vault, v.ctx

	return func() tea.Msg {
		if actions != nil {
			return messages.ResultOpened{Result: selected, Err: actions.OpenDocument(ctx, &selected)}
		}
		if vault == nil {
			return messages.ResultOpened{Result: selected, Err: ErrNoVault}
		}
		vault.RecordAccess(ctx, selected.ID)
		return messages.ResultOpened{Result: selected}
	}
}

// copySelected copies the selected note to the clipboard.
func (v *View) copySelected() tea.Cmd {
	result := v.list.SelectedResult()
	if result == nil {
		return nil
	}
	if v.actions == nil {
		v.statusbar.SetMessage("Copy not available")
		return nil
	}
	selected := *result
	actions, ctx := v.actions, v.ctx

	return func() tea.Msg {
		return messages.ResultCopied{Result: selected, Err: actions.CopyToClipboard(ctx, &selected)}
	}
}

// reindex runs a full index pass over the configured vault.
func (v *View) reindex() tea.Cmd {
	if v.indexing {
		return nil
	}
	if v.vault == nil {
		v.setError(ErrNoVault)
		return nil
	}
	if v.vaultPath == "" {
		v.setError(ErrNoVaultPath)
		return nil
	}

	v.indexing = true
	v.statusbar.SetState(status.StateIndexing)
	v.statusbar.SetMessage("")

	vault, ctx, path := v.vault, v.ctx, v.vaultPath
	return func() tea.Msg {
		n, err := vault.IndexVault(ctx, path)
		return messages.IndexCompleted{Indexed: n, Err: err}
	}
}

// handleIndexCompleted reports the pass and refreshes the current query.
func (v *View) handleIndexCompleted(msg messages.IndexCompleted) tea.Cmd {
	v.indexing = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return nil
	}

	v.err = nil
	var cmd tea.Cmd
	if query := v.input.Query(); query != "" {
		cmd = v.performSearch(query)
	} else {
		v.statusbar.SetState(status.StateReady)
	}
	v.statusbar.SetMessage(indexedLabel(msg.Indexed))
	return cmd
}

func indexedLabel(n int) string {
	if n == 1 {
		return "Indexed 1 document"
	}
	return fmt.Sprintf("Indexed %d documents", n)
}

func (v *View) handleActionDone(err error, success string) {
	if err != nil {
		v.setError(err)
		return
	}
	if v.list.Count() > 0 {
		v.statusbar.SetState(status.StateResults)
	}
	v.statusbar.SetMessage(success)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 6)
	sections = append(sections, v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.input.Query() != "" {
		sections = append(sections, v.list.View(), "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	// Reserve the query line, its border, spacers and the status bar
	v.list.SetDimensions(width, max(height-8, 3))
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Query()
}

// SetQuery sets the query and schedules a search for it.
func (v *View) SetQuery(query string) tea.Cmd {
	v.input.SetValue(query)
	return v.queryChanged()
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Indexing returns whether a re-index is running.
func (v *View) Indexing() bool {
	return v.indexing
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset empties the query and results.
func (v *View) Reset() {
	v.seq++
	v.input.Reset()
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
}
