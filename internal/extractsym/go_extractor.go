package extractsym

import (
	"fmt"
	"os"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/ktnyt/fae-sub001/internal/message"
)

// goQuery mirrors the teacher's setupGo query (internal/parser/parser_language_setup.go),
// trimmed to the declaration kinds fae's symbol kinds cover.
const goQuery = `
(function_declaration name: (identifier) @function.name) @function
(method_declaration
    name: (field_identifier) @method.name) @method
(type_spec
    name: (type_identifier) @type.name
    type: (struct_type)) @struct
(type_spec
    name: (type_identifier) @type.name
    type: (interface_type)) @interface
(type_spec name: (type_identifier) @type.name) @type
(const_spec name: (identifier) @const.name) @const
(var_spec name: (identifier) @var.name) @var
`

// GoExtractor extracts top-level Go symbols using tree-sitter. A
// tree-sitter Parser is not safe for concurrent use (teacher
// internal/parser/parser_pool_test.go), so calls are serialized with a
// mutex; fae's builder pipeline bounds concurrency per file anyway via its
// worker pool, so this is not a bottleneck in practice.
type GoExtractor struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
	lang   *tree_sitter.Language
}

// NewGoExtractor builds the extractor, compiling the tree-sitter-go grammar
// and the capture query once.
func NewGoExtractor() (*GoExtractor, error) {
	lang := tree_sitter.NewLanguage(tree_sitter_go.Language())
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("extractsym: set language: %w", err)
	}
	query, qerr := tree_sitter.NewQuery(lang, goQuery)
	if query == nil {
		return nil, fmt.Errorf("extractsym: compile query: %w", qerr)
	}
	return &GoExtractor{parser: parser, query: query, lang: lang}, nil
}

// Extract implements SymbolExtractor for Go source files.
func (g *GoExtractor) Extract(path string) ([]message.SymbolRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extractsym: read %s: %w", path, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	tree := g.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("extractsym: parse %s failed", path)
	}
	defer tree.Close()

	lines := strings.Split(string(content), "\n")

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()
	matches := cursor.Matches(g.query, tree.RootNode(), content)

	captureNames := g.query.CaptureNames()

	// The fallback `@type` pattern has no constraint on the type_spec's
	// underlying type, so it fires for every type_spec, including the ones
	// the @struct/@interface patterns already matched. Buffer every match
	// as a candidate first and drop the fallback's SymbolClass candidate
	// wherever a struct/interface candidate covers the same type_spec node,
	// so each type_spec yields exactly one record.
	type candidate struct {
		name   string
		kind   message.SymbolType
		anchor *tree_sitter.Node
	}
	var candidates []candidate

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var name string
		var kind message.SymbolType
		var anchor *tree_sitter.Node

		for _, c := range match.Captures {
			captureName := captureNames[c.Index]
			node := c.Node
			switch captureName {
			case "function.name", "method.name", "type.name", "const.name", "var.name":
				name = string(content[node.StartByte():node.EndByte()])
			case "function":
				kind, anchor = message.SymbolFunction, &node
			case "method":
				kind, anchor = message.SymbolMethod, &node
			case "struct":
				kind, anchor = message.SymbolStruct, &node
			case "interface":
				kind, anchor = message.SymbolInterface, &node
			case "type":
				if kind == message.SymbolUnknown {
					kind, anchor = message.SymbolClass, &node
				}
			case "const":
				kind, anchor = message.SymbolConstant, &node
			case "var":
				kind, anchor = message.SymbolVariable, &node
			}
		}

		if name == "" || anchor == nil {
			continue
		}

		candidates = append(candidates, candidate{name: name, kind: kind, anchor: anchor})
	}

	type byteRange struct{ start, end uint }
	typedSpecs := make(map[byteRange]bool, len(candidates))
	for _, c := range candidates {
		if c.kind == message.SymbolStruct || c.kind == message.SymbolInterface {
			typedSpecs[byteRange{uint(c.anchor.StartByte()), uint(c.anchor.EndByte())}] = true
		}
	}

	var records []message.SymbolRecord
	for _, c := range candidates {
		if c.kind == message.SymbolClass && typedSpecs[byteRange{uint(c.anchor.StartByte()), uint(c.anchor.EndByte())}] {
			continue
		}

		start := c.anchor.StartPosition()
		lineIdx := int(start.Row)
		lineContent := ""
		if lineIdx >= 0 && lineIdx < len(lines) {
			lineContent = lines[lineIdx]
		}

		records = append(records, message.SymbolRecord{
			Filepath:   path,
			Line:       uint32(lineIdx + 1),
			Column:     uint32(start.Column) + 1,
			Name:       c.name,
			Content:    lineContent,
			SymbolType: c.kind,
		})
	}

	return records, nil
}

// Close releases the underlying tree-sitter resources.
func (g *GoExtractor) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.query != nil {
		g.query.Close()
	}
	if g.parser != nil {
		g.parser.Close()
	}
}
