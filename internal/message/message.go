// Package message defines the wire types that flow across fae's actor bus:
// the tagged Message envelope, the closed set of payload variants, and the
// domain records (search results, symbol records, file operations) they
// carry. Payloads are plain structs passed by value; Go strings are already
// cheap to share so no reference-counted string wrapper is required.
package message

import "fmt"

// Method identifies which FaeMessage variant a Message carries. Actors
// dispatch on Method rather than using a type switch so that unknown
// methods from future producers are trivially ignorable.
type Method string

const (
	MethodUpdateSearchParams    Method = "updateSearchParams"
	MethodClearResults          Method = "clearResults"
	MethodPushSearchResult      Method = "pushSearchResult"
	MethodCompleteSearch        Method = "completeSearch"
	MethodInitialize            Method = "initialize"
	MethodDetectFileCreate      Method = "detectFileCreate"
	MethodDetectFileUpdate      Method = "detectFileUpdate"
	MethodDetectFileDelete      Method = "detectFileDelete"
	MethodClearSymbolIndex      Method = "clearSymbolIndex"
	MethodPushSymbolIndex       Method = "pushSymbolIndex"
	MethodCompleteSymbolIndex   Method = "completeSymbolIndex"
	MethodReportSymbolIndex     Method = "reportSymbolIndex"
	MethodCompleteInitialIndex  Method = "completeInitialIndexing"
)

// SearchMode selects which producer actor services a query.
type SearchMode int

const (
	ModeLiteral SearchMode = iota
	ModeRegexp
	ModeSymbol
	ModeVariable
	ModeFilepath
)

func (m SearchMode) String() string {
	switch m {
	case ModeLiteral:
		return "literal"
	case ModeRegexp:
		return "regexp"
	case ModeSymbol:
		return "symbol"
	case ModeVariable:
		return "variable"
	case ModeFilepath:
		return "filepath"
	default:
		return "unknown"
	}
}

// IsSymbolFamily reports whether mode is serviced by the symbol search actor.
func (m SearchMode) IsSymbolFamily() bool {
	return m == ModeSymbol || m == ModeVariable
}

// SearchParams is the payload of an UpdateSearchParams control message.
type SearchParams struct {
	Query string
	Mode  SearchMode
}

// SearchResult is one match emitted by any producer actor.
//
// Score is an Open Question resolution (see DESIGN.md): it is a first-class
// optional field rather than overloading Offset. Content/regex backends
// leave Score nil; symbol and filepath modes always set it.
type SearchResult struct {
	Filename string
	Line     uint32
	Offset   uint32
	Content  string
	Score    *float64
}

// SymbolType enumerates the symbol kinds an extractor can report. It is
// deliberately smaller than a full language-server symbol kind table; fae's
// core only needs enough granularity to support Variable-mode filtering.
type SymbolType int

const (
	SymbolUnknown SymbolType = iota
	SymbolFunction
	SymbolClass
	SymbolStruct
	SymbolInterface
	SymbolEnum
	SymbolVariable
	SymbolConstant
	SymbolMethod
	SymbolField
)

func (t SymbolType) String() string {
	switch t {
	case SymbolFunction:
		return "function"
	case SymbolClass:
		return "class"
	case SymbolStruct:
		return "struct"
	case SymbolInterface:
		return "interface"
	case SymbolEnum:
		return "enum"
	case SymbolVariable:
		return "variable"
	case SymbolConstant:
		return "constant"
	case SymbolMethod:
		return "method"
	case SymbolField:
		return "field"
	default:
		return "unknown"
	}
}

// IsVariableFamily implements the Variable-mode filter Open Question
// decision: strict subset {Variable, Constant, Field}.
func (t SymbolType) IsVariableFamily() bool {
	return t == SymbolVariable || t == SymbolConstant || t == SymbolField
}

// SymbolRecord is one indexed symbol, as emitted by a SymbolExtractor.
type SymbolRecord struct {
	Filepath   string
	Line       uint32
	Column     uint32
	Name       string
	Content    string
	SymbolType SymbolType
}

// FileOpKind distinguishes the three filesystem operations the indexer
// tracks.
type FileOpKind int

const (
	FileOpCreate FileOpKind = iota
	FileOpUpdate
	FileOpDelete
)

func (k FileOpKind) String() string {
	switch k {
	case FileOpCreate:
		return "create"
	case FileOpUpdate:
		return "update"
	case FileOpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FileOperation is one element of the indexer's pending queue.
type FileOperation struct {
	Kind FileOpKind
	Path string
}

// IndexingStats tracks the builder's progress. All fields are monotonically
// non-decreasing within a single run (spec.md §3).
type IndexingStats struct {
	QueuedFiles  int
	IndexedFiles int
	SymbolsFound int
}

// FaeMessage is the closed sum of every inter-actor payload. Exactly one
// field is meaningful per Method; this mirrors a tagged union without
// resorting to interface{} or reflection at the dispatch hot path (DESIGN
// NOTES §9: "tagged variants over dynamic dispatch").
type FaeMessage struct {
	SearchParams      *SearchParams
	SearchResult      *SearchResult
	FileOperation     *FileOperation
	SymbolIndexPath   string
	SymbolRecord      *SymbolRecord
	IndexingStats     *IndexingStats
}

// Message is the tagged record routed across the bus.
type Message struct {
	Method  Method
	Payload FaeMessage
}

func (m Message) String() string {
	return fmt.Sprintf("Message{%s}", m.Method)
}

// NewUpdateSearchParams builds the control message that starts a new query.
func NewUpdateSearchParams(query string, mode SearchMode) Message {
	return Message{
		Method:  MethodUpdateSearchParams,
		Payload: FaeMessage{SearchParams: &SearchParams{Query: query, Mode: mode}},
	}
}

// NewClearResults builds the ClearResults control/event message.
func NewClearResults() Message {
	return Message{Method: MethodClearResults}
}

// NewPushSearchResult builds a PushSearchResult event.
func NewPushSearchResult(r SearchResult) Message {
	return Message{Method: MethodPushSearchResult, Payload: FaeMessage{SearchResult: &r}}
}

// NewCompleteSearch builds the end-of-stream marker for a query.
func NewCompleteSearch() Message {
	return Message{Method: MethodCompleteSearch}
}

// NewInitialize builds the control message that starts the initial scan.
func NewInitialize() Message {
	return Message{Method: MethodInitialize}
}

// NewDetectFile builds a DetectFile{Create,Update,Delete} message for path.
func NewDetectFile(kind FileOpKind, path string) Message {
	method := MethodDetectFileUpdate
	switch kind {
	case FileOpCreate:
		method = MethodDetectFileCreate
	case FileOpDelete:
		method = MethodDetectFileDelete
	}
	return Message{
		Method:  method,
		Payload: FaeMessage{FileOperation: &FileOperation{Kind: kind, Path: path}},
	}
}

// NewClearSymbolIndex builds a ClearSymbolIndex(path) event.
func NewClearSymbolIndex(path string) Message {
	return Message{Method: MethodClearSymbolIndex, Payload: FaeMessage{SymbolIndexPath: path}}
}

// NewPushSymbolIndex builds a PushSymbolIndex event for one record.
func NewPushSymbolIndex(r SymbolRecord) Message {
	return Message{Method: MethodPushSymbolIndex, Payload: FaeMessage{SymbolRecord: &r}}
}

// NewCompleteSymbolIndex builds a CompleteSymbolIndex(path) event.
func NewCompleteSymbolIndex(path string) Message {
	return Message{Method: MethodCompleteSymbolIndex, Payload: FaeMessage{SymbolIndexPath: path}}
}

// NewReportSymbolIndex builds a progress report event.
func NewReportSymbolIndex(stats IndexingStats) Message {
	return Message{Method: MethodReportSymbolIndex, Payload: FaeMessage{IndexingStats: &stats}}
}

// NewCompleteInitialIndexing builds the initial-scan-drained marker.
func NewCompleteInitialIndexing() Message {
	return Message{Method: MethodCompleteInitialIndex}
}

// DetectFileKind maps a DetectFile* method back to its FileOpKind. Ok is
// false for non-DetectFile methods.
func DetectFileKind(method Method) (FileOpKind, bool) {
	switch method {
	case MethodDetectFileCreate:
		return FileOpCreate, true
	case MethodDetectFileUpdate:
		return FileOpUpdate, true
	case MethodDetectFileDelete:
		return FileOpDelete, true
	default:
		return 0, false
	}
}
