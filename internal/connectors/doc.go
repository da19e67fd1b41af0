// Package connectors holds the document sources that feed the index.
// The filesystem connector walks a vault directory and watches it for
// changes.
package connectors
