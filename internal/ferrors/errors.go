// Package ferrors defines fae's error taxonomy, mirroring the teacher
// repo's internal/errors package: a small set of ErrorType kinds and a
// wrapping struct per kind that implements Unwrap for errors.Is/As. Per
// spec.md §7, none of these ever cross an actor boundary as a message; they
// are constructed, logged, and absorbed by whichever actor observed them.
package ferrors

import (
	"fmt"
	"time"
)

// ErrorType names a kind of failure without being a concrete error type.
type ErrorType string

const (
	ErrorTypeIndexing    ErrorType = "indexing"
	ErrorTypeExtract     ErrorType = "extract"
	ErrorTypeSearch      ErrorType = "search"
	ErrorTypeSubprocess  ErrorType = "subprocess"
	ErrorTypeFilesystem  ErrorType = "filesystem"
	ErrorTypeInvalidArgs ErrorType = "invalid_args"
)

// IndexingError wraps a failure encountered while maintaining the symbol
// index for one file.
type IndexingError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
	Recoverable bool
}

// NewIndexingError constructs an IndexingError for op applied to path.
func NewIndexingError(op, path string, err error) *IndexingError {
	return &IndexingError{
		Type:        ErrorTypeIndexing,
		FilePath:    path,
		Operation:   op,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
}

func (e *IndexingError) Unwrap() error { return e.Underlying }

// SearchError wraps a failure during a content or symbol search.
type SearchError struct {
	Type       ErrorType
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError constructs a SearchError for pattern.
func NewSearchError(pattern string, err error) *SearchError {
	return &SearchError{Type: ErrorTypeSearch, Pattern: pattern, Underlying: err, Timestamp: time.Now()}
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for pattern %q: %v", e.Pattern, e.Underlying)
}

func (e *SearchError) Unwrap() error { return e.Underlying }

// SubprocessError wraps a failure spawning or communicating with a child
// process (ripgrep, ag).
type SubprocessError struct {
	Type       ErrorType
	Command    string
	Underlying error
	Timestamp  time.Time
}

// NewSubprocessError constructs a SubprocessError for command.
func NewSubprocessError(command string, err error) *SubprocessError {
	return &SubprocessError{Type: ErrorTypeSubprocess, Command: command, Underlying: err, Timestamp: time.Now()}
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("subprocess %q failed: %v", e.Command, e.Underlying)
}

func (e *SubprocessError) Unwrap() error { return e.Underlying }
