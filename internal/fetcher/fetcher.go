package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for reading a remote or local dataset.
type Fetcher interface {
	// Download opens the source and returns its body. Sources are http(s) URLs,
	// file:// URLs or plain filesystem paths.
	Download(ctx context.Context, source string) (io.ReadCloser, error)
}
