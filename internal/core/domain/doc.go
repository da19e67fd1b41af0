// Package domain defines the core business entities for pigpen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: One indexed note derived from a single vault file
//   - UsageRecord: Access statistics for a document
//   - SearchResult: A ranked hit with a highlighted preview
//   - ScanItem: The per-file outcome of walking a vault
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
