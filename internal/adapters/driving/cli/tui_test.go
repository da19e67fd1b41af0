package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui"
)

func stubProgram(t *testing.T, run func(app *tui.App) error) {
	t.Helper()
	original := runProgram
	runProgram = run
	t.Cleanup(func() { runProgram = original })
}

func TestTUICmd_Metadata(t *testing.T) {
	assert.Equal(t, "tui [path]", tuiCmd.Use)
	assert.Contains(t, tuiCmd.Long, "ctrl+r")
}

func TestTUICmd_RunsApp(t *testing.T) {
	env := indexedEnv(t)

	var got *tui.App
	stubProgram(t, func(app *tui.App) error {
		got = app
		return nil
	})

	_, err := execute("tui", env.vault)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "", got.Query())
}

func TestTUICmd_WithoutVaultPath(t *testing.T) {
	setupTestServices(t)
	stubProgram(t, func(*tui.App) error { return nil })

	_, err := execute("tui")

	assert.NoError(t, err)
}

func TestTUICmd_ProgramError(t *testing.T) {
	setupTestServices(t)
	stubProgram(t, func(*tui.App) error { return errors.New("no tty") })

	_, err := execute("tui")

	assert.EqualError(t, err, "TUI error: no tty")
}

func TestTUICmd_RecoversPanic(t *testing.T) {
	setupTestServices(t)
	stubProgram(t, func(*tui.App) error { panic("boom") })

	_, err := execute("tui")

	assert.ErrorContains(t, err, "TUI panic: boom")
}

func TestTUICmd_EngineNotConfigured(t *testing.T) {
	setupTestServices(t)
	SetServices(&Services{})

	_, err := execute("tui")

	assert.EqualError(t, err, "engine not configured")
}
