package services

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/pigpen/internal/connectors/filesystem"
	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

// ResultActionService provides actions on search results.
type ResultActionService struct {
	docStore driven.DocumentStore
	usage    driving.UsageService

	openFn func(path string) error
	copyFn func(text string) error
}

// NewResultActionService creates a new result action service.
// The usage parameter is optional (can be nil).
func NewResultActionService(docStore driven.DocumentStore, usage driving.UsageService) *ResultActionService {
	return &ResultActionService{
		docStore: docStore,
		usage:    usage,
		openFn:   openURL,
		copyFn:   copyToClipboard,
	}
}

// CopyToClipboard copies the result's document content to the system clipboard.
// The preview is copied when the document is no longer in the store.
func (s *ResultActionService) CopyToClipboard(ctx context.Context, result *domain.SearchResult) error {
	if result == nil {
		return fmt.Errorf("result is nil")
	}

	content := result.Preview
	if s.docStore != nil {
		doc, err := s.docStore.Get(ctx, result.ID)
		switch {
		case err == nil:
			content = doc.Content
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("load document: %w", err)
		}
	}

	return s.copyFn(content)
}

// OpenDocument opens the result's document in the default application and
// records the access.
func (s *ResultActionService) OpenDocument(ctx context.Context, result *domain.SearchResult) error {
	if result == nil {
		return fmt.Errorf("result is nil")
	}

	path := result.Path
	if path == "" {
		path = result.ID
	}

	if err := s.openFn(filesystem.ResolveOpenPath(path)); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if s.usage != nil {
		s.usage.RecordAccess(ctx, result.ID)
	}
	return nil
}

// openURL opens a path or URL with the OS default handler.
func openURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", url)
	case osLinux:
		cmd = exec.Command("xdg-open", url)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// copyToClipboard copies text to the system clipboard using OS-specific commands.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("pbcopy")
	case osLinux:
		// Try xclip first, fall back to xsel
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else {
			return fmt.Errorf("no clipboard utility found (install xclip or xsel)")
		}
	case osWindows:
		cmd = exec.Command("cmd", "/c", "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
