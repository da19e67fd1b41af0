package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	// searchView is the HUD and the only interactive view.
	searchView *search.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	cfg := search.Config{
		Vault:     ports.Vault,
		Actions:   ports.Actions,
		VaultPath: ports.VaultPath,
	}
	if ports.Settings != nil {
		settings, err := ports.Settings.Get()
		if err != nil {
			logger.Warn("Using default highlight markers: %v", err)
		} else {
			cfg.HighlightOpen = settings.Search.HighlightOpen
			cfg.HighlightClose = settings.Search.HighlightClose
			if cfg.VaultPath == "" {
				cfg.VaultPath = settings.Vault.Path
			}
		}
	}

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		searchView:  search.NewView(s, km, cfg),
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("pigpen"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keymap.Quit) {
			return a, tea.Quit
		}
		if key.Matches(msg, a.keymap.Help) {
			return a, a.toggleHelp()
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewSearch
			}
			return a, nil
		}
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Results and ticks go to the HUD even while help is shown
	a.searchView, cmd = a.searchView.Update(msg)
	return a, cmd
}

func (a *App) toggleHelp() tea.Cmd {
	next := messages.ViewHelp
	if a.currentView == messages.ViewHelp {
		next = messages.ViewSearch
	}
	return func() tea.Msg { return messages.ViewChanged{View: next} }
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}
	return a.searchView.View()
}

// viewHelp renders the key bindings grouped as in the full help.
func (a *App) viewHelp() string {
	lines := []string{a.styles.Title.Render("pigpen help"), ""}
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("  %-10s %s", h.Key, h.Desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines,
		a.styles.Muted.Render("Type to search. Terms shorter than three characters match nothing."),
		"",
		a.styles.Help.Render("[esc/f1] back to search"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines, "\n"))
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Query returns the current search query.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult {
	return a.searchView.Results()
}

// SelectedIndex returns the currently selected result index.
func (a *App) SelectedIndex() int {
	return a.searchView.SelectedIndex()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error shown in the HUD.
func (a *App) Err() error {
	return a.searchView.Err()
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
}
