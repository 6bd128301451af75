package content

import (
	"strconv"
	"strings"

	"github.com/ktnyt/fae-sub001/internal/message"
)

// parseGrepLine parses one line of `filename:line:column:content` output
// (spec.md §4.4's common output format), splitting on the first three
// colons; the content field retains any remaining colons verbatim.
func parseGrepLine(line string) (message.SearchResult, bool) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 4 {
		return message.SearchResult{}, false
	}
	lineNum, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return message.SearchResult{}, false
	}
	column, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return message.SearchResult{}, false
	}
	return message.SearchResult{
		Filename: parts[0],
		Line:     uint32(lineNum),
		Offset:   uint32(column),
		Content:  parts[3],
	}, true
}
