package filesystem

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ResolveOpenPath converts a document reference to a local path for opening.
// Handles file:// URIs (percent-escapes are decoded), a leading "~/" and
// bare paths. Empty input yields an empty path.
func ResolveOpenPath(ref string) string {
	if strings.HasPrefix(ref, "file://") {
		ref = strings.TrimPrefix(ref, "file://")
		if decoded, err := url.PathUnescape(ref); err == nil {
			ref = decoded
		}
	}
	if ref == "" {
		return ""
	}

	if ref == "~" || strings.HasPrefix(ref, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			ref = filepath.Join(home, strings.TrimPrefix(ref, "~"))
		}
	}

	return filepath.Clean(ref)
}
