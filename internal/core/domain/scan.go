package domain

// ScanOutcome classifies what the scanner did with a visited path.
type ScanOutcome int

const (
	// ScanIndexed means the file qualified and its content was read.
	ScanIndexed ScanOutcome = iota

	// ScanSkipped means the path was not turned into a document.
	ScanSkipped

	// ScanReadFailed means the file qualified but its body could not be
	// used. A document with empty content is still produced.
	ScanReadFailed
)

// String returns the string representation of the outcome.
func (o ScanOutcome) String() string {
	switch o {
	case ScanIndexed:
		return "indexed"
	case ScanSkipped:
		return "skipped"
	case ScanReadFailed:
		return "read_failed"
	default:
		return "unknown"
	}
}

// SkipReason explains a skipped or degraded scan item.
type SkipReason string

// Skip reasons reported by the vault scanner.
const (
	SkipNone        SkipReason = ""
	SkipDirectory   SkipReason = "directory"
	SkipExtension   SkipReason = "extension"
	SkipHidden      SkipReason = "hidden"
	SkipNotRegular  SkipReason = "not_regular"
	SkipWalkError   SkipReason = "walk_error"
	SkipUnreadable  SkipReason = "unreadable"
	SkipInvalidUTF8 SkipReason = "invalid_utf8"
	SkipTooLarge    SkipReason = "too_large"
	SkipDuplicate   SkipReason = "duplicate"
)

// ScanItem is the per-path result of a vault scan.
type ScanItem struct {
	// Path is the visited filesystem path.
	Path string

	// Outcome classifies the item.
	Outcome ScanOutcome

	// Reason is set for skipped and read-failed items.
	Reason SkipReason

	// Err carries the underlying error, if any.
	Err error

	// Document is the candidate document. Nil when Outcome is ScanSkipped.
	Document *Document
}

// HasDocument returns true if the item should be written to the store.
func (i *ScanItem) HasDocument() bool {
	return i.Document != nil && i.Outcome != ScanSkipped
}
