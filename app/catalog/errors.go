package catalog

import (
	"context"
	"errors"
	"fmt"
)

var ErrInvalidPage = errors.New("page index must be non-negative")

type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindTimeout ErrorKind = "timeout"
	KindStorage ErrorKind = "storage"
)

// FetchError reports a page that could not be read. It is never used for an
// exhausted corpus, which is signalled by an empty page.
type FetchError struct {
	Page int
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch page %d (%s): %v", e.Page, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Timeout() bool {
	return e.Kind == KindTimeout
}

// contextError converts a cancelled or expired context into a FetchError.
func contextError(page int, err error) error {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &FetchError{Page: page, Kind: kind, Err: err}
}
