package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOpenPath(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "file:// URI is converted to local path", ref: "file:///Users/test/notes/plan.md", want: "/Users/test/notes/plan.md"},
		{name: "percent escapes are decoded", ref: "file:///Users/test/my%20notes/plan.md", want: "/Users/test/my notes/plan.md"},
		{name: "bare path passes through", ref: "/Users/test/notes/plan.md", want: "/Users/test/notes/plan.md"},
		{name: "path is cleaned", ref: "/vault/./daily/../plan.md", want: "/vault/plan.md"},
		{name: "relative path stays relative", ref: "notes/plan.md", want: "notes/plan.md"},
		{name: "empty string", ref: "", want: ""},
		{name: "file:// prefix only", ref: "file://", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveOpenPath(tt.ref))
		})
	}
}

func TestResolveOpenPath_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "vault", "plan.md"), ResolveOpenPath("~/vault/plan.md"))
}
