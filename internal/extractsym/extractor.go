// Package extractsym defines the SymbolExtractor capability fae's symbol
// index pipeline consumes, plus one bundled default implementation for Go
// source (github.com/tree-sitter/go-tree-sitter +
// github.com/tree-sitter/tree-sitter-go). Per spec.md §1 the extractor is an
// external collaborator: fae's core only depends on the interface below,
// never on a specific grammar. The Go implementation exists to exercise the
// capability boundary in tests and the CLI demo, grounded on the teacher's
// internal/parser/parser_language_setup.go (setupGo) and
// internal/parser/parser.go's query-cursor extraction loop.
package extractsym

import "github.com/ktnyt/fae-sub001/internal/message"

// SymbolExtractor is given a file path and returns the symbols found in it.
// Implementations must not retain the returned slice's backing array beyond
// the call (callers may mutate it).
type SymbolExtractor interface {
	Extract(path string) ([]message.SymbolRecord, error)
}
