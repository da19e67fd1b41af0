package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func collect(t *testing.T, s *Scanner, root string) []domain.ScanItem {
	t.Helper()
	ch, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	var items []domain.ScanItem
	for item := range ch {
		items = append(items, item)
	}
	return items
}

func documents(items []domain.ScanItem) map[string]*domain.Document {
	docs := make(map[string]*domain.Document)
	for _, item := range items {
		if item.HasDocument() {
			docs[item.Document.Title] = item.Document
		}
	}
	return docs
}

func reasons(items []domain.ScanItem) map[string]domain.SkipReason {
	out := make(map[string]domain.SkipReason)
	for _, item := range items {
		if item.Reason != domain.SkipNone {
			out[filepath.Base(item.Path)] = item.Reason
		}
	}
	return out
}

func TestNewScanner(t *testing.T) {
	t.Run("defaults to markdown", func(t *testing.T) {
		s := NewScanner(ScanOptions{})
		assert.Equal(t, []string{".md"}, s.Extensions())
		assert.Equal(t, int64(domain.DefaultMaxFileBytes), s.maxFileBytes)
	})

	t.Run("normalises extensions", func(t *testing.T) {
		s := NewScanner(ScanOptions{Extensions: []string{"MD", ".Txt", " "}})
		assert.Equal(t, []string{".md", ".txt"}, s.Extensions())
	})
}

func TestScanner_Scan(t *testing.T) {
	t.Run("emits qualifying documents", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "plan.md"), "Q1 rollout")
		writeFile(t, filepath.Join(root, "daily", "monday.md"), "standup")
		writeFile(t, filepath.Join(root, "image.png"), "binary")

		items := collect(t, NewScanner(ScanOptions{}), root)
		docs := documents(items)

		require.Len(t, docs, 2)
		plan := docs["plan"]
		require.NotNil(t, plan)
		assert.Equal(t, "Q1 rollout", plan.Content)
		assert.True(t, filepath.IsAbs(plan.ID))
		assert.Equal(t, plan.ID, plan.Path)
		assert.Equal(t, filepath.Join(root, "daily", "monday.md"), docs["monday"].Path)

		assert.Equal(t, domain.SkipExtension, reasons(items)["image.png"])
	})

	t.Run("extension match is case-insensitive", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "Upper.MD"), "shouting")

		docs := documents(collect(t, NewScanner(ScanOptions{}), root))
		require.Contains(t, docs, "Upper")
		assert.Equal(t, "shouting", docs["Upper"].Content)
	})

	t.Run("skips hidden entries", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "visible.md"), "seen")
		writeFile(t, filepath.Join(root, ".draft.md"), "hidden file")
		writeFile(t, filepath.Join(root, ".obsidian", "workspace.md"), "hidden dir")

		items := collect(t, NewScanner(ScanOptions{}), root)
		docs := documents(items)

		assert.Len(t, docs, 1)
		assert.Contains(t, docs, "visible")
		assert.Equal(t, domain.SkipHidden, reasons(items)[".draft.md"])
		assert.NotContains(t, reasons(items), "workspace.md")
	})

	t.Run("includes hidden entries when asked", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, ".obsidian", "workspace.md"), "hidden dir")

		docs := documents(collect(t, NewScanner(ScanOptions{IncludeHidden: true}), root))
		assert.Contains(t, docs, "workspace")
	})

	t.Run("invalid UTF-8 yields empty content", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "broken.md"), string([]byte{0xff, 0xfe, 0xfd}))

		items := collect(t, NewScanner(ScanOptions{}), root)
		require.Len(t, items, 1)
		assert.Equal(t, domain.ScanReadFailed, items[0].Outcome)
		assert.Equal(t, domain.SkipInvalidUTF8, items[0].Reason)
		require.True(t, items[0].HasDocument())
		assert.Empty(t, items[0].Document.Content)
		assert.Equal(t, "broken", items[0].Document.Title)
	})

	t.Run("oversized file yields empty content", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "big.md"), "0123456789")

		items := collect(t, NewScanner(ScanOptions{MaxFileBytes: 4}), root)
		require.Len(t, items, 1)
		assert.Equal(t, domain.SkipTooLarge, items[0].Reason)
		assert.Empty(t, items[0].Document.Content)
	})

	t.Run("unreadable file yields empty content", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}
		root := t.TempDir()
		path := filepath.Join(root, "locked.md")
		writeFile(t, path, "secret")
		require.NoError(t, os.Chmod(path, 0000))
		defer os.Chmod(path, 0644) //nolint:errcheck

		items := collect(t, NewScanner(ScanOptions{}), root)
		require.Len(t, items, 1)
		assert.Equal(t, domain.SkipUnreadable, items[0].Reason)
		require.NotNil(t, items[0].Document)
		assert.Empty(t, items[0].Document.Content)
	})

	t.Run("directory named like a note is skipped", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "folder.md"), 0755))
		writeFile(t, filepath.Join(root, "folder.md", "inner.md"), "inside")

		items := collect(t, NewScanner(ScanOptions{}), root)
		assert.Equal(t, domain.SkipDirectory, reasons(items)["folder.md"])
		assert.Contains(t, documents(items), "inner")
	})

	t.Run("non-existent root yields nothing", func(t *testing.T) {
		items := collect(t, NewScanner(ScanOptions{}), filepath.Join(t.TempDir(), "missing"))
		assert.Empty(t, items)
	})

	t.Run("root that is a file yields nothing", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "plan.md")
		writeFile(t, file, "x")

		assert.Empty(t, collect(t, NewScanner(ScanOptions{}), file))
	})

	t.Run("empty directory yields nothing", func(t *testing.T) {
		assert.Empty(t, collect(t, NewScanner(ScanOptions{}), t.TempDir()))
	})

	t.Run("symlinked root is walked at its target", func(t *testing.T) {
		tmp, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		target := filepath.Join(tmp, "real")
		writeFile(t, filepath.Join(target, "a.md"), "Q1 rollout")
		link := filepath.Join(tmp, "vault")
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}

		items := collect(t, NewScanner(ScanOptions{}), link)

		require.Len(t, items, 1)
		assert.Equal(t, domain.ScanIndexed, items[0].Outcome)
		assert.Equal(t, filepath.Join(target, "a.md"), items[0].Document.ID)
	})

	t.Run("root named like a note is not an item", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault.md")
		writeFile(t, filepath.Join(root, "a.md"), "a")

		items := collect(t, NewScanner(ScanOptions{}), root)

		require.Len(t, items, 1)
		assert.Equal(t, "a", items[0].Document.Title)
	})

	t.Run("symlinked note takes the target's id", func(t *testing.T) {
		root, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		outside, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		writeFile(t, filepath.Join(outside, "shared.md"), "shared")
		if err := os.Symlink(filepath.Join(outside, "shared.md"), filepath.Join(root, "link.md")); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}

		docs := documents(collect(t, NewScanner(ScanOptions{}), root))

		require.Contains(t, docs, "link")
		assert.Equal(t, filepath.Join(outside, "shared.md"), docs["link"].ID)
		assert.Equal(t, "shared", docs["link"].Content)
	})

	t.Run("rescan restarts the walk", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a.md"), "a")
		s := NewScanner(ScanOptions{})

		first := collect(t, s, root)
		second := collect(t, s, root)
		assert.Equal(t, first, second)
	})
}

func TestScanner_Scan_Cancelled(t *testing.T) {
	root := t.TempDir()
	for i := range scanBuffer * 3 {
		writeFile(t, filepath.Join(root, fmt.Sprintf("note-%03d.md", i)), "x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := NewScanner(ScanOptions{}).Scan(ctx, root)
	require.NoError(t, err)

	<-ch
	cancel()

	count := 1
	for range ch {
		count++
	}
	assert.Less(t, count, scanBuffer*3)
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "plan", domain.TitleFromPath("/vault/plan.md", ".md"))
	assert.Equal(t, "Plan", domain.TitleFromPath("/vault/Plan.MD", ".md"))
	assert.Equal(t, "archive.2024", domain.TitleFromPath("/vault/archive.2024.md", ".md"))
}
