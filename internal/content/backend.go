// Package content implements fae's pluggable content-search backends
// (spec.md §4.4): ripgrep and ag subprocess wrappers sharing the
// internal/command runtime, and an always-available native Go walker, all
// behind one Backend contract, plus the content search actor that drives
// whichever backend was selected at construction.
package content

import (
	"context"

	"github.com/ktnyt/fae-sub001/internal/message"
)

// OnResult delivers one match to the caller. Returning false means the
// consumer has gone away (a closed result channel); backends must treat
// that the same as cancellation and stop promptly (spec.md §5).
type OnResult func(message.SearchResult) bool

// Backend is the shared contract every content-search implementation
// satisfies. Search blocks until the search is exhausted or ctx is
// cancelled, and returns the number of results emitted via onResult.
type Backend interface {
	Name() string
	Search(ctx context.Context, params message.SearchParams, root string, onResult OnResult) (int, error)
}
