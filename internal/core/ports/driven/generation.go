package driven

import "context"

// GenerationSource reports a counter that changes whenever stored documents
// or usage change, including writes made by another process sharing the
// store. Equal values mean nothing was written in between.
type GenerationSource interface {
	Generation(ctx context.Context) (int64, error)
}
